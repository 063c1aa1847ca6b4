package symbols

import (
	"fmt"

	"fortio.org/safecast"
)

// arena is a slice with slot 0 reserved so that the zero ID means "none".
type arena[T any] struct {
	data []T
	what string
}

func newArena[T any](what string, capacity uint32) *arena[T] {
	if capacity == 0 {
		capacity = 32
	}
	return &arena[T]{data: make([]T, 1, capacity+1), what: what}
}

func (a *arena[T]) push(v T) uint32 {
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("%s arena overflow: %w", a.what, err))
	}
	a.data = append(a.data, v)
	return n
}

func (a *arena[T]) get(id uint32) *T {
	if id == 0 || int(id) >= len(a.data) {
		return nil
	}
	return &a.data[id]
}

// Len reports total number of entries excluding the sentinel.
func (a *arena[T]) Len() int { return len(a.data) - 1 }
