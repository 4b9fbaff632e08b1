package postgres

import (
	"strings"
	"testing"
)

func TestULIDGeneratorGenerate(t *testing.T) {
	g := NewULIDGenerator()

	a := g.Generate()
	b := g.Generate()

	if len(a) != 26 {
		t.Fatalf("expected 26-char ULID, got %q", a)
	}
	if a == b {
		t.Fatal("expected unique IDs")
	}
}

func TestULIDGeneratorNewReference(t *testing.T) {
	g := NewULIDGenerator()

	ref := g.NewReference("BKASH")
	if !strings.HasPrefix(ref, "BKASH-") {
		t.Fatalf("expected BKASH- prefix, got %q", ref)
	}
	if len(ref) != len("BKASH-")+26 {
		t.Fatalf("unexpected reference length: %q", ref)
	}
}
