package fuzztests

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/driver"
)

// checkTimeout bounds a single decode and check; longer runs mean a loop.
const checkTimeout = 5 * time.Second

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}

// FuzzDecodeUnit feeds arbitrary bytes to the unit decoder. Accepted units
// must survive re-encoding.
func FuzzDecodeUnit(f *testing.F) {
	addUnitSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		u, err := ast.DecodeUnit(bytes.NewReader(clampInput(input)))
		if err != nil {
			return
		}
		var buf bytes.Buffer
		if err := ast.EncodeUnit(&buf, u); err != nil {
			t.Fatalf("re-encode accepted unit: %v", err)
		}
		if _, err := ast.DecodeUnit(&buf); err != nil {
			t.Fatalf("re-decode accepted unit: %v", err)
		}
	})
}

// FuzzCheckDecodedUnit runs the whole front end over every unit the decoder
// accepts. Diagnostics are fine; panics and hangs are not.
func FuzzCheckDecodedUnit(f *testing.F) {
	addUnitSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		u, err := ast.DecodeUnit(bytes.NewReader(input))
		if err != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			_, err := driver.Check(ctx, []*ast.Unit{u}, driver.CheckOptions{MaxDiagnostics: 128})
			done <- err
		}()

		select {
		case err := <-done:
			var abort *diag.Abort
			if err != nil && !errors.As(err, &abort) {
				t.Fatalf("check failed outside the diagnostic path: %v", err)
			}
		case <-ctx.Done():
			t.Fatalf("check hang detected: took longer than %v\ninput (%d bytes): %q",
				checkTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
