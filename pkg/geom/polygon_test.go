package geom

import (
	"math"
	"testing"
)

func square(min, max float64) Ring {
	return Ring{{min, min}, {max, min}, {max, max}, {min, max}}
}

func TestPolygonIsValid(t *testing.T) {
	if !NewPolygon(square(0, 10)).IsValid() {
		t.Fatal("square reported invalid")
	}
	if NewPolygon(Ring{{0, 0}, {1, 1}}).IsValid() {
		t.Fatal("two-vertex ring reported valid")
	}
	if (Polygon{}).IsValid() {
		t.Fatal("empty polygon reported valid")
	}
}

func TestPolygonBounds(t *testing.T) {
	p := NewPolygon(Ring{{2, 3}, {8, 1}, {6, 9}})
	got := p.Bounds()
	want := Rect{MinX: 2, MinY: 1, MaxX: 8, MaxY: 9}
	if got != want {
		t.Fatalf("bounds = %+v, want %+v", got, want)
	}
}

func TestPolygonContains(t *testing.T) {
	p := NewPolygon(square(0, 10))
	cases := []struct {
		pt   Point
		want bool
	}{
		{Point{5, 5}, true},
		{Point{0.1, 0.1}, true},
		{Point{-1, 5}, false},
		{Point{11, 5}, false},
		{Point{5, -0.5}, false},
		// boundary points count as inside
		{Point{0, 5}, true},
		{Point{10, 10}, true},
	}
	for _, tc := range cases {
		if got := p.Contains(tc.pt); got != tc.want {
			t.Errorf("Contains(%+v) = %v, want %v", tc.pt, got, tc.want)
		}
	}
}

func TestPolygonContainsHole(t *testing.T) {
	p := NewPolygon(square(0, 10), square(4, 6))
	if p.Contains(Point{5, 5}) {
		t.Fatal("point inside hole reported contained")
	}
	if !p.Contains(Point{2, 2}) {
		t.Fatal("point between hole and boundary reported outside")
	}
}

func TestBoundaryDistance(t *testing.T) {
	p := NewPolygon(square(0, 10))
	cases := []struct {
		pt   Point
		want float64
	}{
		{Point{5, 5}, 5},
		{Point{1, 5}, 1},
		{Point{5, 9}, 1},
		{Point{0, 0}, 0},
		{Point{-3, 5}, 3},
	}
	for _, tc := range cases {
		got := p.BoundaryDistance(tc.pt)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("BoundaryDistance(%+v) = %g, want %g", tc.pt, got, tc.want)
		}
	}
}

func TestSegmentDistanceDegenerate(t *testing.T) {
	a := Point{3, 4}
	if got := segmentDistance(a, a, Point{0, 0}); math.Abs(got-5) > 1e-12 {
		t.Fatalf("distance to degenerate segment = %g, want 5", got)
	}
}
