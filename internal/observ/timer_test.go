package observ

import (
	"bytes"
	"testing"
	"time"

	"github.com/nalgeon/be"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	be.Equal(t, tm.Report(), Report{})

	tm.Record("load", 2*time.Millisecond, "")
	tm.Record("sema", 500*time.Microsecond, "3 diagnostics")
	r := tm.Report()
	be.Equal(t, len(r.Phases), 2)
	be.Equal(t, r.Phases[1], PhaseReport{Name: "sema", DurationMS: 0.5, Note: "3 diagnostics"})
	be.Equal(t, r.TotalMS, 2.5)
}

func TestTimerSummary(t *testing.T) {
	tm := NewTimer()
	tm.Record("declare", time.Millisecond, "")
	tm.Record("link", 250*time.Microsecond, "failed")
	var buf bytes.Buffer
	be.Err(t, tm.WriteSummary(&buf), nil)
	be.Equal(t, buf.String(), "timings:\n"+
		"  declare          1.000 ms\n"+
		"  link             0.250 ms  // failed\n"+
		"  total            1.250 ms\n")
}
