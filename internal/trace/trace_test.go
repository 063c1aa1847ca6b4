package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestStreamTracerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	pass := Begin(tr, ScopePass, "validate", 0)
	node := Begin(tr, ScopeNode, "overload", pass.ID())
	node.End("")
	pass.WithExtra("decls", "3").End("ok")

	out := buf.String()
	if !strings.Contains(out, "validate") || !strings.Contains(out, "decls=3") {
		t.Fatalf("missing pass events: %q", out)
	}
	if strings.Contains(out, "overload") {
		t.Fatalf("node events must be filtered at phase level: %q", out)
	}
}

func TestRingTracerKeepsLastEvents(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeNode, name, "", 0)
	}
	got := ring.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", got)
	}
}

func TestParseLevelAndContext(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	if err != nil || lvl != LevelDebug {
		t.Fatalf("ParseLevel: %v %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatal("expected Nop tracer in empty context")
	}
	ring := NewRingTracer(4, LevelPhase)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer not propagated through context")
	}
}
