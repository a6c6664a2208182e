package geoops

import "testing"

func TestDefaultBufferParams(t *testing.T) {
	p := DefaultBufferParams()
	if p.Segments != 5 {
		t.Fatalf("segments = %d, want 5", p.Segments)
	}
	if p.Join != JoinRound {
		t.Fatalf("join = %v, want round", p.Join)
	}
	if p.Cap != CapFlat {
		t.Fatalf("cap = %v, want flat", p.Cap)
	}
	if p.MiterLimit != 2 {
		t.Fatalf("miter limit = %g, want 2", p.MiterLimit)
	}
	if p.Dissolve {
		t.Fatal("dissolve enabled by default")
	}
}
