package main

import (
	"os"

	"github.com/spf13/cobra"

	"keel/internal/prof"
	"keel/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "keel",
	Short:         "Semantic checker for keel translation units",
	Long:          `keel resolves, type-checks and lowers translation units produced by the keel parser`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		stopProf, err := startProfiling(cmd)
		if err != nil {
			cleanup()
			return err
		}
		traceCleanup = func() {
			if err := stopProf(); err != nil {
				cmd.PrintErrln("profile:", err)
			}
			cleanup()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if traceCleanup != nil {
			traceCleanup()
			traceCleanup = nil
		}
	},
}

var traceCleanup func()

func startProfiling(cmd *cobra.Command) (func() error, error) {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return nil, err
	}
	if opts.Mem, err = flags.GetString("memprofile"); err != nil {
		return nil, err
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, err
	}
	if !opts.Enabled() {
		return func() error { return nil }, nil
	}
	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return session.Stop, nil
}

// exitError carries a process status without printing anything more.
type exitError struct{ code int }

func (e exitError) Error() string { return "exit" }

func main() {
	rootCmd.Version = version.Current()

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics to keep (0 = manifest or default)")
	flags.String("config", "", "path to keel.toml (default: search upwards from the working directory)")
	flags.String("trace", "", "trace output file (- for stderr, *.ndjson for NDJSON)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.String("cpuprofile", "", "write a CPU profile to this file")
	flags.String("memprofile", "", "write a heap profile to this file")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")

	if err := rootCmd.Execute(); err != nil {
		// PersistentPostRun не вызывается, если RunE вернул ошибку
		if traceCleanup != nil {
			traceCleanup()
		}
		if ee, ok := err.(exitError); ok {
			os.Exit(ee.code)
		}
		rootCmd.PrintErrln(errorColor(os.Stderr).Sprint("error:"), err)
		os.Exit(1)
	}
}
