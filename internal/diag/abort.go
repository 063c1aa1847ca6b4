package diag

import "fmt"

// Abort is the panic payload raised when a Failure or Fatal diagnostic is reported.
// Only the driver recovers it; continuing would walk inconsistent compiler state.
type Abort struct {
	Diagnostic Diagnostic
}

func (a *Abort) Error() string {
	if a == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s at %s: %s", a.Diagnostic.Severity, a.Diagnostic.Code.ID(), a.Diagnostic.Primary, a.Diagnostic.Message)
}

// Recover converts a recovered *Abort into an error and re-panics on anything else.
// Use it as: defer func() { err = diag.Recover(recover(), err) }().
func Recover(r any, prev error) error {
	if r == nil {
		return prev
	}
	if a, ok := r.(*Abort); ok {
		return a
	}
	panic(r)
}
