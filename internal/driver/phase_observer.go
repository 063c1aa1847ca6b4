package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a checking phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// Phase names in the order a run goes through them. Check alone skips load.
const (
	PhaseLoad    = "load"
	PhaseDeclare = "declare"
	PhaseLink    = "link"
	PhaseSema    = "sema"
)

// Phases lists every phase RunUnits reports.
var Phases = []string{PhaseLoad, PhaseDeclare, PhaseLink, PhaseSema}

// PhaseEvent describes a phase boundary. Diagnostics is the size of the bag
// when the phase ended; Failed marks a load that returned an error or a
// phase cut short by an abort.
type PhaseEvent struct {
	Name        string
	Status      PhaseStatus
	Elapsed     time.Duration
	Diagnostics int
	Failed      bool
}

// PhaseObserver receives phase events emitted during a run.
type PhaseObserver func(PhaseEvent)
