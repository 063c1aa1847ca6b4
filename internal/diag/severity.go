package diag

// Severity defines the importance of a diagnostic. The order is total and the
// Bag tracks the maximum value seen during a run.
type Severity uint8

const (
	// SevOutput is plain informational output.
	SevOutput Severity = iota
	// SevDebug is compiler debugging output.
	SevDebug
	SevWarning
	SevError
	// SevFailure marks a broken compiler invariant; it aborts the run.
	SevFailure
	// SevUnimplemented marks a construct the compiler accepts syntactically but cannot handle yet.
	SevUnimplemented
	// SevFatal aborts the run immediately.
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevOutput:
		return "OUTPUT"
	case SevDebug:
		return "DEBUG"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevFailure:
		return "FAILURE"
	case SevUnimplemented:
		return "UNIMPLEMENTED"
	case SevFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// Aborts reports whether a diagnostic of this severity stops the run.
func (s Severity) Aborts() bool {
	return s == SevFailure || s == SevFatal
}

// Failing reports whether the severity makes the process exit non-zero.
func (s Severity) Failing() bool {
	return s >= SevError
}
