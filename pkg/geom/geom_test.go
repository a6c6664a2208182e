package geom

import "testing"

func TestNewRectNormalizesCorners(t *testing.T) {
	r := NewRect(10, 20, 2, 4)
	if r.MinX != 2 || r.MinY != 4 || r.MaxX != 10 || r.MaxY != 20 {
		t.Fatalf("unexpected rect %+v", r)
	}
	if r.Width() != 8 || r.Height() != 16 {
		t.Fatalf("unexpected size %g x %g", r.Width(), r.Height())
	}
	c := r.Center()
	if c.X != 6 || c.Y != 12 {
		t.Fatalf("unexpected center %+v", c)
	}
}

func TestRectIsEmpty(t *testing.T) {
	if (Rect{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}).IsEmpty() {
		t.Fatal("unit rect reported empty")
	}
	if !(Rect{}).IsEmpty() {
		t.Fatal("zero rect reported non-empty")
	}
	if !(Rect{MinX: 5, MinY: 0, MaxX: 3, MaxY: 1}).IsEmpty() {
		t.Fatal("inverted rect reported non-empty")
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	cases := []struct {
		p    Point
		want bool
	}{
		{Point{5, 5}, true},
		{Point{0, 0}, true},
		{Point{10, 10}, true},
		{Point{10.001, 5}, false},
		{Point{-0.001, 5}, false},
	}
	for _, tc := range cases {
		if got := r.Contains(tc.p); got != tc.want {
			t.Errorf("Contains(%+v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestRectIntersect(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 20, 20)
	got := a.Intersect(b)
	want := Rect{MinX: 5, MinY: 5, MaxX: 10, MaxY: 10}
	if got != want {
		t.Fatalf("intersect = %+v, want %+v", got, want)
	}
	if !a.Intersect(NewRect(100, 100, 200, 200)).IsEmpty() {
		t.Fatal("disjoint intersect reported non-empty")
	}
}

func TestCRSSRID(t *testing.T) {
	cases := []struct {
		crs  CRS
		want int
	}{
		{"EPSG:32632", 32632},
		{"EPSG:4326", 4326},
		{"", 0},
		{"WGS84", 0},
		{"EPSG:abc", 0},
	}
	for _, tc := range cases {
		if got := tc.crs.SRID(); got != tc.want {
			t.Errorf("SRID(%q) = %d, want %d", tc.crs, got, tc.want)
		}
	}
}

func TestEPSG(t *testing.T) {
	if got := EPSG(25832); got != CRS("EPSG:25832") {
		t.Fatalf("EPSG(25832) = %q", got)
	}
	if EPSG(25832).SRID() != 25832 {
		t.Fatal("EPSG round trip lost the code")
	}
}
