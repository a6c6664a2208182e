// Package geom provides the planar geometry primitives shared by the
// sampling pipeline: points, axis-aligned rectangles, polygons with holes,
// and coordinate reference system identifiers.
package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a position in the plane, in CRS units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle described by its min/max corners.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// NewRect returns the rectangle spanning the two corners regardless of order.
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{
		MinX: math.Min(x1, x2),
		MinY: math.Min(y1, y2),
		MaxX: math.Max(x1, x2),
		MaxY: math.Max(y1, y2),
	}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point { return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2} }

// IsEmpty reports whether the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool { return r.MaxX <= r.MinX || r.MaxY <= r.MinY }

// Contains reports whether p lies inside or on the boundary of r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Intersect returns the overlap of r and o. The result may be empty.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		MinX: math.Max(r.MinX, o.MinX),
		MinY: math.Max(r.MinY, o.MinY),
		MaxX: math.Min(r.MaxX, o.MaxX),
		MaxY: math.Min(r.MaxY, o.MaxY),
	}
}

// CRS identifies a coordinate reference system as an authority code,
// e.g. "EPSG:32632". The zero value means unknown.
type CRS string

// SRID returns the numeric spatial reference identifier of an EPSG-style
// code. Unknown or non-EPSG codes return 0.
func (c CRS) SRID() int {
	s := string(c)
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return 0
	}
	id, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return 0
	}
	return id
}

// EPSG builds a CRS from a numeric EPSG code.
func EPSG(code int) CRS { return CRS(fmt.Sprintf("EPSG:%d", code)) }
