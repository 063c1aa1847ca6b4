package diag

import (
	"fmt"
	"sort"
)

// Bag stores diagnostics of one run and remembers the worst severity reported,
// including diagnostics dropped because the bag is full.
type Bag struct {
	items []Diagnostic
	max   uint16
	worst Severity
	seen  bool
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 100
	}
	if max > 0xFFFF {
		max = 0xFFFF
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 64)),
		max:   uint16(max),
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	b.note(d.Severity)
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) note(sev Severity) {
	if !b.seen || sev > b.worst {
		b.worst = sev
	}
	b.seen = true
}

// Worst returns the maximum severity reported so far and whether anything was reported.
func (b *Bag) Worst() (Severity, bool) {
	return b.worst, b.seen
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors reports whether the run reached Error or above.
func (b *Bag) HasErrors() bool {
	return b.seen && b.worst.Failing()
}

// HasWarnings reports whether anything at Warning or above was reported.
func (b *Bag) HasWarnings() bool {
	return b.seen && b.worst >= SevWarning
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the stored diagnostics. The slice aliases the bag; do not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag.
// Увеличивает max, если нужно вместить все элементы.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := len(b.items) + len(other.items)
	if newTotal > int(b.max) && newTotal <= 0xFFFF {
		b.max = uint16(newTotal)
	}
	b.items = append(b.items, other.items...)
	if other.seen {
		b.note(other.worst)
	}
}

// Sort orders diagnostics by file, position, severity (desc) and code.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary != dj.Primary {
			return di.Primary.Before(dj.Primary)
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// простая дедупликация (по Code+Primary+Message)
func (b *Bag) Dedup() {
	seen := make(map[string]bool)
	newitems := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%d:%s:%s", d.Code, d.Primary.String(), d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, d)
	}
	b.items = newitems
}
