package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"keel/internal/driver"
)

func TestProgressFollowsPhases(t *testing.T) {
	events := make(chan driver.PhaseEvent)
	m := NewProgressModel("check", driver.Phases, events).(*progressModel)
	be.Equal(t, m.fraction(), 0.0)

	m.Update(eventMsg{Name: driver.PhaseLoad, Status: driver.PhaseStart})
	be.Equal(t, m.items[0].state, stateRunning)
	be.Equal(t, m.fraction(), 0.125)

	m.Update(eventMsg{Name: driver.PhaseLoad, Status: driver.PhaseEnd, Elapsed: time.Millisecond})
	m.Update(eventMsg{Name: driver.PhaseDeclare, Status: driver.PhaseEnd, Diagnostics: 2, Failed: true})
	be.Equal(t, m.items[0].state, stateDone)
	be.Equal(t, m.items[1].state, stateFailed)
	be.Equal(t, m.items[1].diags, 2)
	be.Equal(t, m.fraction(), 0.5)

	// чужие фазы игнорируются
	m.Update(eventMsg{Name: "emit", Status: driver.PhaseStart})
	be.Equal(t, m.fraction(), 0.5)

	view := m.View()
	be.True(t, strings.Contains(view, "failed"))
	be.True(t, strings.Contains(view, "2 diag"))
	be.True(t, strings.Contains(view, "queued"))
}

func TestProgressQuitsWhenEventsClose(t *testing.T) {
	events := make(chan driver.PhaseEvent)
	close(events)
	m := NewProgressModel("check", driver.Phases, events).(*progressModel)
	msg := m.listenForEvent()()
	_, ok := msg.(doneMsg)
	be.True(t, ok)

	_, cmd := m.Update(msg)
	be.True(t, m.done)
	be.True(t, cmd != nil)
	be.True(t, strings.Contains(m.View(), "done: check"))
}

func TestTruncate(t *testing.T) {
	be.Equal(t, truncate("validate", 0), "validate")
	be.Equal(t, truncate("validate", 6), "val...")
	be.Equal(t, truncate("validate", 3), "val")
}
