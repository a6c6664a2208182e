package geoops

import (
	"testing"

	"fieldsampler/pkg/geom"
)

func TestPointLatticeCellCenters(t *testing.T) {
	ext := geom.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 2}
	g, err := PointLattice(ext, 1, 1, geom.EPSG(32632))
	if err != nil {
		t.Fatalf("lattice: %v", err)
	}
	if g.Len() != 6 {
		t.Fatalf("len = %d, want 6", g.Len())
	}
	// row-major from the top-left corner
	if p := g.Point(0); p.X != 0.5 || p.Y != 1.5 {
		t.Fatalf("first point = %+v, want (0.5, 1.5)", p)
	}
	if p := g.Point(5); p.X != 2.5 || p.Y != 0.5 {
		t.Fatalf("last point = %+v, want (2.5, 0.5)", p)
	}
	if g.CRS() != geom.EPSG(32632) {
		t.Fatalf("crs = %q", g.CRS())
	}
}

func TestPointLatticeRejectsBadInput(t *testing.T) {
	ext := geom.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 2}
	if _, err := PointLattice(ext, 0, 1, ""); err == nil {
		t.Fatal("zero spacing accepted")
	}
	if _, err := PointLattice(geom.Rect{}, 1, 1, ""); err == nil {
		t.Fatal("empty extent accepted")
	}
}

func TestGridExtent(t *testing.T) {
	got := GridExtent(-0.5, -0.5, 11, 11, 1, 1)
	want := geom.Rect{MinX: -0.5, MinY: -0.5, MaxX: 10.5, MaxY: 10.5}
	if got != want {
		t.Fatalf("extent = %+v, want %+v", got, want)
	}
}
