// Package grid implements the reference point grid: an ordered collection of
// sample points carrying a numeric attribute table. The grid is the single
// source of truth for sampling geometry; the pipeline owns exactly one grid
// per run and threads it through each sampling step.
package grid

import (
	"fmt"
	"math"

	"fieldsampler/pkg/geom"
)

// Grid is an ordered set of sample points with named numeric attribute
// columns. Column names are unique for the lifetime of the grid. Missing
// values are stored as NaN.
type Grid struct {
	crs    geom.CRS
	points []geom.Point
	fids   []int64
	cols   []string
	values map[string][]float64
}

// New constructs a grid over the given points, assigning feature IDs in
// order starting at 1.
func New(crs geom.CRS, points []geom.Point) *Grid {
	pts := make([]geom.Point, len(points))
	copy(pts, points)
	fids := make([]int64, len(points))
	for i := range fids {
		fids[i] = int64(i + 1)
	}
	return &Grid{crs: crs, points: pts, fids: fids, values: make(map[string][]float64)}
}

// CRS returns the coordinate reference system of the grid.
func (g *Grid) CRS() geom.CRS { return g.crs }

// Len returns the number of points.
func (g *Grid) Len() int { return len(g.points) }

// Point returns the i-th point.
func (g *Grid) Point(i int) geom.Point { return g.points[i] }

// FID returns the stable feature ID of the i-th point.
func (g *Grid) FID(i int) int64 { return g.fids[i] }

// Bounds returns the bounding rectangle of all points, or an empty rect for
// an empty grid.
func (g *Grid) Bounds() geom.Rect {
	if len(g.points) == 0 {
		return geom.Rect{}
	}
	r := geom.Rect{MinX: g.points[0].X, MinY: g.points[0].Y, MaxX: g.points[0].X, MaxY: g.points[0].Y}
	for _, p := range g.points[1:] {
		r.MinX = math.Min(r.MinX, p.X)
		r.MinY = math.Min(r.MinY, p.Y)
		r.MaxX = math.Max(r.MaxX, p.X)
		r.MaxY = math.Max(r.MaxY, p.Y)
	}
	return r
}

// Columns returns a snapshot of the attribute column names in insertion
// order. Mutating the returned slice does not affect the grid.
func (g *Grid) Columns() []string {
	out := make([]string, len(g.cols))
	copy(out, g.cols)
	return out
}

// HasColumn reports whether a column with the given name exists.
func (g *Grid) HasColumn(name string) bool {
	_, ok := g.values[name]
	return ok
}

// Column returns the values of the named column in point order.
func (g *Grid) Column(name string) ([]float64, bool) {
	vals, ok := g.values[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(vals))
	copy(out, vals)
	return out, true
}

// Value returns the attribute value of the named column at point i.
// Missing columns and missing samples both return NaN.
func (g *Grid) Value(name string, i int) float64 {
	vals, ok := g.values[name]
	if !ok || i >= len(vals) {
		return math.NaN()
	}
	return vals[i]
}

// AddColumn appends a new attribute column. The value slice must have one
// entry per point and the name must not collide with an existing column.
func (g *Grid) AddColumn(name string, vals []float64) error {
	if name == "" {
		return fmt.Errorf("grid: empty column name")
	}
	if _, exists := g.values[name]; exists {
		return fmt.Errorf("grid: column %q already exists", name)
	}
	if len(vals) != len(g.points) {
		return fmt.Errorf("grid: column %q has %d values for %d points", name, len(vals), len(g.points))
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	g.cols = append(g.cols, name)
	g.values[name] = cp
	return nil
}

// Clone returns a deep copy of the grid. Feature IDs are preserved.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		crs:    g.crs,
		points: append([]geom.Point(nil), g.points...),
		fids:   append([]int64(nil), g.fids...),
		cols:   append([]string(nil), g.cols...),
		values: make(map[string][]float64, len(g.values)),
	}
	for name, vals := range g.values {
		out.values[name] = append([]float64(nil), vals...)
	}
	return out
}

// Filter returns a new grid containing only the points for which keep
// returns true. Attribute columns and feature IDs are carried over.
func (g *Grid) Filter(keep func(i int, p geom.Point) bool) *Grid {
	out := &Grid{crs: g.crs, cols: append([]string(nil), g.cols...), values: make(map[string][]float64, len(g.values))}
	var kept []int
	for i, p := range g.points {
		if keep(i, p) {
			kept = append(kept, i)
			out.points = append(out.points, p)
			out.fids = append(out.fids, g.fids[i])
		}
	}
	for name, vals := range g.values {
		sub := make([]float64, 0, len(kept))
		for _, i := range kept {
			sub = append(sub, vals[i])
		}
		out.values[name] = sub
	}
	return out
}
