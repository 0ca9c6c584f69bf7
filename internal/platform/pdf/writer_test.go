package pdf

import (
	"bytes"
	"testing"
)

func TestBuildProducesWellFormedSingleObjectStructure(t *testing.T) {
	b := NewBuilder(842, 595)
	b.AddPage([]byte("BT /F1 12 Tf 25 570 Td (hello) Tj ET"))
	b.AddPage([]byte("BT /F1 12 Tf 25 570 Td (page two) Tj ET"))

	out := b.Build()

	if !bytes.HasPrefix(out, []byte("%PDF-1.5")) {
		t.Fatalf("expected a PDF header, got %q", out[:20])
	}
	if !bytes.Contains(out, []byte("/Count 2")) {
		t.Fatalf("expected a two-page Pages tree, got:\n%s", out)
	}
	if !bytes.Contains(out, []byte("trailer")) || !bytes.Contains(out, []byte("startxref")) {
		t.Fatalf("expected a trailer and startxref marker, got:\n%s", out)
	}
	if !bytes.Contains(out, []byte("%%EOF")) {
		t.Fatalf("expected an %%%%EOF marker, got:\n%s", out)
	}
}

func TestEscapeTextHandlesParensBackslashesAndAccents(t *testing.T) {
	got := EscapeText(`Sécurité (test) \ end`)
	want := `S\351curit\351 \(test\) \\ end`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
