package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"keel/internal/diag"
	"keel/internal/driver"
	"keel/internal/observ"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [unit.kast...]",
	Short: "Resolve and validate translation units",
	Long: `Run the semantic front end over the listed units, or over [build].units of keel.toml.
The process exits with status 1 when any error was reported.`,
	RunE: runCheck,
}

func init() {
	addRunFlags(checkCmd)
	checkCmd.Flags().String("format", "pretty", "diagnostics format (pretty|short|json)")
	checkCmd.Flags().String("emit", "", "write the resolved program (msgpack) to this file")
	checkCmd.Flags().Bool("timings", false, "print phase timings to stderr")
	checkCmd.Flags().String("ui", "auto", "progress screen (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	emit, err := cmd.Flags().GetString("emit")
	if err != nil {
		return fmt.Errorf("failed to get emit flag: %w", err)
	}
	timings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	opts, err := runOptions(cmd, args)
	if err != nil {
		return err
	}

	var timer *observ.Timer
	if timings {
		timer = observ.NewTimer()
		opts.Check.Observer = timingObserver(timer)
	}
	var (
		run    *driver.Run
		runErr error
	)
	if shouldUseTUI(mode, format) && !quiet(cmd) {
		run, runErr = runWithUI(cmd.Context(), "keel check", opts)
	} else {
		run, runErr = driver.RunUnits(cmd.Context(), opts)
	}
	if timer != nil {
		if err := timer.WriteSummary(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	var abort *diag.Abort
	if runErr != nil && !errors.As(runErr, &abort) {
		return runErr
	}
	if run.Result != nil {
		if err := printDiagnostics(cmd, run.Result.Bag, run.FileSet, format); err != nil {
			return err
		}
	}
	if abort != nil {
		return runErr
	}
	if run.Result.Failed() {
		return exitError{code: 1}
	}
	if emit != "" {
		if err := writeExport(run, emit); err != nil {
			return err
		}
		if !quiet(cmd) {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", emit)
		}
	}
	return nil
}

func timingObserver(timer *observ.Timer) driver.PhaseObserver {
	return func(ev driver.PhaseEvent) {
		if ev.Status != driver.PhaseEnd {
			return
		}
		var note string
		switch {
		case ev.Failed:
			note = "failed"
		case ev.Diagnostics > 0:
			note = fmt.Sprintf("%d diagnostics", ev.Diagnostics)
		}
		timer.Record(ev.Name, ev.Elapsed, note)
	}
}

func writeExport(run *driver.Run, path string) (err error) {
	doc, err := run.Export()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return driver.WriteExport(f, doc)
}
