// Package geoops defines the capability interfaces for the external
// geometric and raster primitives the pipeline delegates to: clipping,
// grid generation, buffering, overlay, and point sampling. Implementations
// live under internal/infra/geoops; the pipeline depends only on these
// interfaces so engines can be substituted with deterministic doubles.
package geoops

import (
	"context"

	"fieldsampler/pkg/geom"
	"fieldsampler/pkg/grid"
)

// Raster describes a raster source or product: where it lives and its
// spatial frame. Engines populate it from their own metadata readers.
type Raster struct {
	Path   string
	Extent geom.Rect
	ResX   float64
	ResY   float64
	CRS    geom.CRS
	Bands  int
}

// Mask is an engine-owned handle to a polygon sampling mask. Masks produced
// by one engine are only meaningful to that same engine.
type Mask interface {
	// CRS returns the mask's coordinate reference system.
	CRS() geom.CRS
}

// JoinStyle selects how buffer offsets join at vertices.
type JoinStyle int

// CapStyle selects how buffer offsets terminate open ends.
type CapStyle int

const (
	JoinRound JoinStyle = iota
	JoinMiter
	JoinBevel
)

const (
	CapFlat CapStyle = iota
	CapRound
	CapSquare
)

// BufferParams carries the geometric knobs of a polygon buffer operation.
type BufferParams struct {
	Segments   int
	Join       JoinStyle
	Cap        CapStyle
	MiterLimit float64
	Dissolve   bool
}

// DefaultBufferParams matches the boundary-shrink settings used by the
// pipeline: five-segment rounded joins, flat cap, mitre limit 2, no dissolve.
func DefaultBufferParams() BufferParams {
	return BufferParams{Segments: 5, Join: JoinRound, Cap: CapFlat, MiterLimit: 2}
}

// Clipper crops a raster to a polygon cutline, preserving resolution.
type Clipper interface {
	// ClipRaster writes the source raster cropped to the mask cutline to
	// outPath and returns the path of the product.
	ClipRaster(ctx context.Context, rasterPath string, mask Mask, outPath string) (string, error)
}

// GridGenerator builds a regular point grid over an extent.
type GridGenerator interface {
	// GenerateGrid returns a point grid with the given spacings covering the
	// extent, in the given CRS.
	GenerateGrid(ctx context.Context, extent geom.Rect, hSpacing, vSpacing float64, crs geom.CRS) (*grid.Grid, error)
}

// Buffer offsets a polygon mask by a signed distance; negative shrinks.
type Buffer interface {
	BufferPolygon(ctx context.Context, mask Mask, distance float64, params BufferParams) (Mask, error)
}

// Overlay clips a point grid to a polygon mask.
type Overlay interface {
	// ClipPoints returns a new grid holding only the points inside the mask.
	ClipPoints(ctx context.Context, g *grid.Grid, mask Mask) (*grid.Grid, error)
}

// Sampler joins grid points to raster values.
type Sampler interface {
	// SamplePoints returns a new grid carrying one additional column per
	// raster band, each named with the given column prefix followed by the
	// band ordinal. The input grid is not modified.
	SamplePoints(ctx context.Context, g *grid.Grid, rasterPath, columnPrefix string) (*grid.Grid, error)
}

// Engine bundles the full capability surface the pipeline needs, including
// opening the input layers it was handed by reference.
type Engine interface {
	// OpenPolygon loads a polygon vector source as a sampling mask.
	OpenPolygon(ctx context.Context, path string) (Mask, error)
	// OpenRaster reads the spatial frame of a raster without its pixels.
	OpenRaster(ctx context.Context, path string) (Raster, error)

	Clipper
	GridGenerator
	Buffer
	Overlay
	Sampler
}
