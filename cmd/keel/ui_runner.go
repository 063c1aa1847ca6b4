package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"keel/internal/driver"
	"keel/internal/ui"
)

type runOutcome struct {
	run *driver.Run
	err error
}

// runWithUI checks on a separate goroutine while the progress screen reads
// its phase events. The caller's observer still sees every event.
func runWithUI(ctx context.Context, title string, opts driver.RunOptions) (*driver.Run, error) {
	events := make(chan driver.PhaseEvent, 16)
	outcomeCh := make(chan runOutcome, 1)

	next := opts.Check.Observer
	opts.Check.Observer = func(ev driver.PhaseEvent) {
		if next != nil {
			next(ev)
		}
		events <- ev
	}
	go func() {
		defer close(events)
		run, err := driver.RunUnits(ctx, opts)
		outcomeCh <- runOutcome{run: run, err: err}
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, driver.Phases, events), tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// экран мог закрыться раньше (Ctrl+C): дочитываем события, чтобы проверка не встала
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.run, uiErr
	}
	return outcome.run, outcome.err
}
