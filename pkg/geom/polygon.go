package geom

import "math"

// Ring is a closed sequence of vertices. The closing edge from the last
// vertex back to the first is implicit; callers need not repeat the first
// vertex at the end.
type Ring []Point

// Polygon is a simple polygon with optional interior holes. The first ring
// is the exterior boundary; any further rings are holes.
type Polygon struct {
	Rings []Ring `json:"rings"`
}

// NewPolygon builds a polygon from an exterior ring and optional holes.
func NewPolygon(exterior Ring, holes ...Ring) Polygon {
	rings := make([]Ring, 0, 1+len(holes))
	rings = append(rings, exterior)
	rings = append(rings, holes...)
	return Polygon{Rings: rings}
}

// IsValid reports whether the polygon has an exterior ring with at least
// three vertices.
func (p Polygon) IsValid() bool {
	return len(p.Rings) > 0 && len(p.Rings[0]) >= 3
}

// Bounds returns the bounding rectangle of the exterior ring.
func (p Polygon) Bounds() Rect {
	if !p.IsValid() {
		return Rect{}
	}
	ext := p.Rings[0]
	r := Rect{MinX: ext[0].X, MinY: ext[0].Y, MaxX: ext[0].X, MaxY: ext[0].Y}
	for _, v := range ext[1:] {
		r.MinX = math.Min(r.MinX, v.X)
		r.MinY = math.Min(r.MinY, v.Y)
		r.MaxX = math.Max(r.MaxX, v.X)
		r.MaxY = math.Max(r.MaxY, v.Y)
	}
	return r
}

// Contains reports whether pt lies inside the polygon using even-odd ray
// casting across all rings, so points inside holes are excluded. Boundary
// points count as inside within floating point tolerance.
func (p Polygon) Contains(pt Point) bool {
	if !p.IsValid() {
		return false
	}
	if p.BoundaryDistance(pt) < boundaryEps {
		return true
	}
	inside := false
	for _, ring := range p.Rings {
		if ringCrossings(ring, pt)%2 == 1 {
			inside = !inside
		}
	}
	return inside
}

// BoundaryDistance returns the minimum distance from pt to any edge of the
// polygon, over all rings.
func (p Polygon) BoundaryDistance(pt Point) float64 {
	min := math.Inf(1)
	for _, ring := range p.Rings {
		n := len(ring)
		for i := 0; i < n; i++ {
			d := segmentDistance(ring[i], ring[(i+1)%n], pt)
			if d < min {
				min = d
			}
		}
	}
	return min
}

const boundaryEps = 1e-9

func ringCrossings(ring Ring, pt Point) int {
	n := len(ring)
	crossings := 0
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		if (a.Y > pt.Y) == (b.Y > pt.Y) {
			continue
		}
		x := a.X + (pt.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
		if x > pt.X {
			crossings++
		}
	}
	return crossings
}

// segmentDistance returns the distance from pt to the segment a-b.
func segmentDistance(a, b, pt Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(pt.X-a.X, pt.Y-a.Y)
	}
	t := ((pt.X-a.X)*dx + (pt.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(pt.X-(a.X+t*dx), pt.Y-(a.Y+t*dy))
}
