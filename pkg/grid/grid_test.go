package grid

import (
	"math"
	"testing"

	"fieldsampler/pkg/geom"
)

func testGrid(t *testing.T) *Grid {
	t.Helper()
	return New(geom.EPSG(32632), []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}})
}

func TestNewAssignsSequentialFIDs(t *testing.T) {
	g := testGrid(t)
	if g.Len() != 3 {
		t.Fatalf("len = %d, want 3", g.Len())
	}
	for i := 0; i < g.Len(); i++ {
		if g.FID(i) != int64(i+1) {
			t.Fatalf("fid(%d) = %d, want %d", i, g.FID(i), i+1)
		}
	}
	if g.CRS() != geom.EPSG(32632) {
		t.Fatalf("crs = %q", g.CRS())
	}
}

func TestAddColumn(t *testing.T) {
	g := testGrid(t)
	if err := g.AddColumn("elev", []float64{1, 2, 3}); err != nil {
		t.Fatalf("add column: %v", err)
	}
	if !g.HasColumn("elev") {
		t.Fatal("column missing after add")
	}
	if got := g.Value("elev", 1); got != 2 {
		t.Fatalf("value = %g, want 2", got)
	}
	if err := g.AddColumn("elev", []float64{4, 5, 6}); err == nil {
		t.Fatal("duplicate column accepted")
	}
	if err := g.AddColumn("short", []float64{1}); err == nil {
		t.Fatal("wrong-length column accepted")
	}
	if err := g.AddColumn("", []float64{1, 2, 3}); err == nil {
		t.Fatal("empty column name accepted")
	}
}

func TestValueMissingIsNaN(t *testing.T) {
	g := testGrid(t)
	if !math.IsNaN(g.Value("nope", 0)) {
		t.Fatal("missing column did not yield NaN")
	}
}

func TestColumnsSnapshotIsDetached(t *testing.T) {
	g := testGrid(t)
	if err := g.AddColumn("a", []float64{1, 2, 3}); err != nil {
		t.Fatalf("add column: %v", err)
	}
	cols := g.Columns()
	cols[0] = "mutated"
	if got := g.Columns()[0]; got != "a" {
		t.Fatalf("column name changed to %q through snapshot", got)
	}
}

func TestBounds(t *testing.T) {
	g := testGrid(t)
	want := geom.Rect{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}
	if got := g.Bounds(); got != want {
		t.Fatalf("bounds = %+v, want %+v", got, want)
	}
	empty := New(geom.EPSG(4326), nil)
	if !empty.Bounds().IsEmpty() {
		t.Fatal("empty grid bounds not empty")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := testGrid(t)
	if err := g.AddColumn("a", []float64{1, 2, 3}); err != nil {
		t.Fatalf("add column: %v", err)
	}
	c := g.Clone()
	if err := c.AddColumn("b", []float64{4, 5, 6}); err != nil {
		t.Fatalf("add column on clone: %v", err)
	}
	if g.HasColumn("b") {
		t.Fatal("clone mutation leaked into original")
	}
	if c.FID(2) != g.FID(2) {
		t.Fatal("clone lost feature ids")
	}
}

func TestFilterKeepsFIDsAndColumns(t *testing.T) {
	g := testGrid(t)
	if err := g.AddColumn("a", []float64{10, 20, 30}); err != nil {
		t.Fatalf("add column: %v", err)
	}
	f := g.Filter(func(_ int, p geom.Point) bool { return p.X == 0 })
	if f.Len() != 2 {
		t.Fatalf("filtered len = %d, want 2", f.Len())
	}
	if f.FID(0) != 1 || f.FID(1) != 3 {
		t.Fatalf("filtered fids = %d, %d, want 1, 3", f.FID(0), f.FID(1))
	}
	if f.Value("a", 1) != 30 {
		t.Fatalf("filtered value = %g, want 30", f.Value("a", 1))
	}
}
