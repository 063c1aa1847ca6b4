package version

import (
	"strings"
	"testing"
)

func TestCurrentFallsBackToDev(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "  "
	if got := Current(); got != "dev" {
		t.Errorf("Current() = %q, want dev", got)
	}
	Version = " 1.2.3 "
	if got := Current(); got != "1.2.3" {
		t.Errorf("Current() = %q, want 1.2.3", got)
	}
}

func TestColored(t *testing.T) {
	if got := Colored("0.1.0-dev", false); got != "0.1.0-dev" {
		t.Errorf("plain = %q", got)
	}
	got := Colored("0.1.0-dev", true)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected escape codes, got %q", got)
	}
	if !strings.HasSuffix(got, "-dev") {
		t.Errorf("suffix lost: %q", got)
	}
	// не semver: оставляем как есть
	if got := Colored("nightly", true); got != "nightly" {
		t.Errorf("non-semver = %q", got)
	}
}
