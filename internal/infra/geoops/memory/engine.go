// Package memory implements the geoops capability surface against in-memory
// rasters and polygons. It backs deterministic pipeline tests and synthetic
// data runs: clipping, masking and sampling use real planar math, and every
// operation supports per-source failure injection.
package memory

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	"fieldsampler/internal/geoops"
	"fieldsampler/pkg/geom"
	"fieldsampler/pkg/grid"
)

// Compile-time contract assertion.
var _ geoops.Engine = (*Engine)(nil)

// Raster holds dense in-memory pixel data. Bands are row-major from the
// top-left cell. NaN cells are treated as nodata.
type Raster struct {
	Extent geom.Rect
	ResX   float64
	ResY   float64
	CRS    geom.CRS
	Bands  [][]float64

	cols int
	rows int
}

// NewRaster validates and freezes a raster definition. Each band must have
// exactly cols*rows values where cols and rows derive from extent and
// resolution.
func NewRaster(extent geom.Rect, resX, resY float64, crs geom.CRS, bands ...[]float64) (*Raster, error) {
	if resX <= 0 || resY <= 0 {
		return nil, fmt.Errorf("memory raster: non-positive resolution %g x %g", resX, resY)
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("memory raster: at least one band required")
	}
	cols := int(math.Round(extent.Width() / resX))
	rows := int(math.Round(extent.Height() / resY))
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("memory raster: empty extent")
	}
	for i, b := range bands {
		if len(b) != cols*rows {
			return nil, fmt.Errorf("memory raster: band %d has %d cells, want %d", i+1, len(b), cols*rows)
		}
	}
	return &Raster{Extent: extent, ResX: resX, ResY: resY, CRS: crs, Bands: bands, cols: cols, rows: rows}, nil
}

// ConstantRaster builds a raster whose bands each hold a single constant
// value. Convenient for tests.
func ConstantRaster(extent geom.Rect, resX, resY float64, crs geom.CRS, bandValues ...float64) (*Raster, error) {
	cols := int(math.Round(extent.Width() / resX))
	rows := int(math.Round(extent.Height() / resY))
	bands := make([][]float64, len(bandValues))
	for i, v := range bandValues {
		cells := make([]float64, cols*rows)
		for j := range cells {
			cells[j] = v
		}
		bands[i] = cells
	}
	return NewRaster(extent, resX, resY, crs, bands...)
}

// Sample returns the value of band (1-based) at the pixel containing pt, or
// NaN when pt falls outside the raster.
func (r *Raster) Sample(band int, pt geom.Point) float64 {
	if band < 1 || band > len(r.Bands) {
		return math.NaN()
	}
	col := int(math.Floor((pt.X - r.Extent.MinX) / r.ResX))
	row := int(math.Floor((r.Extent.MaxY - pt.Y) / r.ResY))
	if col < 0 || col >= r.cols || row < 0 || row >= r.rows {
		return math.NaN()
	}
	return r.Bands[band-1][row*r.cols+col]
}

// mask implements geoops.Mask as a polygon plus an accumulated inward inset.
// Point membership means inside the polygon and at least inset away from its
// boundary, which is exact erosion semantics for point-in-mask tests.
type mask struct {
	polygon geom.Polygon
	crs     geom.CRS
	inset   float64
}

func (m *mask) CRS() geom.CRS { return m.crs }

func (m *mask) contains(p geom.Point) bool {
	if !m.polygon.Contains(p) {
		return false
	}
	return m.inset <= 0 || m.polygon.BoundaryDistance(p) >= m.inset
}

// Engine is an in-memory geoops.Engine. Sources are registered by path-like
// keys before use.
type Engine struct {
	mu       sync.Mutex
	rasters  map[string]*Raster
	polygons map[string]*mask

	failClip   map[string]error
	failSample map[string]error
	failBuffer error
	failGrid   error
	failClipPt error
}

// NewEngine returns an engine with no registered sources.
func NewEngine() *Engine {
	return &Engine{
		rasters:    make(map[string]*Raster),
		polygons:   make(map[string]*mask),
		failClip:   make(map[string]error),
		failSample: make(map[string]error),
	}
}

// AddRaster registers a raster under a path-like key.
func (e *Engine) AddRaster(path string, r *Raster) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rasters[path] = r
}

// AddPolygon registers a polygon vector source under a path-like key.
func (e *Engine) AddPolygon(path string, p geom.Polygon, crs geom.CRS) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.polygons[path] = &mask{polygon: p, crs: crs}
}

// FailClip makes ClipRaster fail for the given source path.
func (e *Engine) FailClip(path string, err error) { e.failClip[path] = err }

// FailSample makes SamplePoints fail for the given raster path.
func (e *Engine) FailSample(path string, err error) { e.failSample[path] = err }

// FailBuffer makes the next BufferPolygon calls fail.
func (e *Engine) FailBuffer(err error) { e.failBuffer = err }

// FailGrid makes GenerateGrid fail.
func (e *Engine) FailGrid(err error) { e.failGrid = err }

// FailClipPoints makes ClipPoints fail.
func (e *Engine) FailClipPoints(err error) { e.failClipPt = err }

// OpenPolygon returns the registered polygon as a sampling mask.
func (e *Engine) OpenPolygon(_ context.Context, path string) (geoops.Mask, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.polygons[path]
	if !ok {
		return nil, fmt.Errorf("memory engine: no polygon registered at %s", path)
	}
	if !m.polygon.IsValid() {
		return nil, fmt.Errorf("memory engine: polygon at %s is invalid", path)
	}
	return &mask{polygon: m.polygon, crs: m.crs}, nil
}

// OpenRaster returns the spatial frame of a registered raster.
func (e *Engine) OpenRaster(_ context.Context, path string) (geoops.Raster, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.rasters[path]
	if !ok {
		return geoops.Raster{}, fmt.Errorf("memory engine: no raster registered at %s", path)
	}
	return geoops.Raster{Path: path, Extent: r.Extent, ResX: r.ResX, ResY: r.ResY, CRS: r.CRS, Bands: len(r.Bands)}, nil
}

// ClipRaster crops a registered raster to the mask cutline: the product
// covers the pixel-aligned intersection of the source extent and the mask
// bounds, with cells whose centers fall outside the polygon set to nodata.
func (e *Engine) ClipRaster(_ context.Context, rasterPath string, m geoops.Mask, outPath string) (string, error) {
	if err := e.failClip[rasterPath]; err != nil {
		return "", err
	}
	pm, ok := m.(*mask)
	if !ok {
		return "", fmt.Errorf("memory engine: foreign mask %T", m)
	}
	e.mu.Lock()
	src, found := e.rasters[rasterPath]
	e.mu.Unlock()
	if !found {
		return "", fmt.Errorf("memory engine: no raster registered at %s", rasterPath)
	}

	inter := src.Extent.Intersect(pm.polygon.Bounds())
	if inter.IsEmpty() {
		return "", fmt.Errorf("memory engine: raster %s does not overlap mask", rasterPath)
	}
	// Snap the window outward to the source pixel lattice.
	c0 := int(math.Floor((inter.MinX - src.Extent.MinX) / src.ResX))
	c1 := int(math.Ceil((inter.MaxX - src.Extent.MinX) / src.ResX))
	r0 := int(math.Floor((src.Extent.MaxY - inter.MaxY) / src.ResY))
	r1 := int(math.Ceil((src.Extent.MaxY - inter.MinY) / src.ResY))
	c0, r0 = max(c0, 0), max(r0, 0)
	c1, r1 = min(c1, src.cols), min(r1, src.rows)

	cols := c1 - c0
	rows := r1 - r0
	ext := geom.Rect{
		MinX: src.Extent.MinX + float64(c0)*src.ResX,
		MaxX: src.Extent.MinX + float64(c1)*src.ResX,
		MinY: src.Extent.MaxY - float64(r1)*src.ResY,
		MaxY: src.Extent.MaxY - float64(r0)*src.ResY,
	}
	bands := make([][]float64, len(src.Bands))
	for b := range src.Bands {
		cells := make([]float64, cols*rows)
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				center := geom.Point{
					X: ext.MinX + (float64(col)+0.5)*src.ResX,
					Y: ext.MaxY - (float64(row)+0.5)*src.ResY,
				}
				if pm.polygon.Contains(center) {
					cells[row*cols+col] = src.Bands[b][(r0+row)*src.cols+(c0+col)]
				} else {
					cells[row*cols+col] = math.NaN()
				}
			}
		}
		bands[b] = cells
	}
	clipped := &Raster{Extent: ext, ResX: src.ResX, ResY: src.ResY, CRS: src.CRS, Bands: bands, cols: cols, rows: rows}
	e.mu.Lock()
	e.rasters[outPath] = clipped
	e.mu.Unlock()
	return outPath, nil
}

// GenerateGrid returns the shared point lattice for the extent.
func (e *Engine) GenerateGrid(_ context.Context, extent geom.Rect, hSpacing, vSpacing float64, crs geom.CRS) (*grid.Grid, error) {
	if e.failGrid != nil {
		return nil, e.failGrid
	}
	return geoops.PointLattice(extent, hSpacing, vSpacing, crs)
}

// BufferPolygon shrinks the mask inward. Only negative distances are
// supported; the engine accumulates the inset rather than recomputing ring
// geometry, which is exact for point-membership tests.
func (e *Engine) BufferPolygon(_ context.Context, m geoops.Mask, distance float64, _ geoops.BufferParams) (geoops.Mask, error) {
	if e.failBuffer != nil {
		return nil, e.failBuffer
	}
	pm, ok := m.(*mask)
	if !ok {
		return nil, fmt.Errorf("memory engine: foreign mask %T", m)
	}
	if distance > 0 {
		return nil, fmt.Errorf("memory engine: outward buffer not supported")
	}
	return &mask{polygon: pm.polygon, crs: pm.crs, inset: pm.inset - distance}, nil
}

// ClipPoints keeps the points inside the mask.
func (e *Engine) ClipPoints(_ context.Context, g *grid.Grid, m geoops.Mask) (*grid.Grid, error) {
	if e.failClipPt != nil {
		return nil, e.failClipPt
	}
	pm, ok := m.(*mask)
	if !ok {
		return nil, fmt.Errorf("memory engine: foreign mask %T", m)
	}
	return g.Filter(func(_ int, p geom.Point) bool { return pm.contains(p) }), nil
}

// SamplePoints adds one column per band named prefix+ordinal, leaving the
// input grid untouched.
func (e *Engine) SamplePoints(_ context.Context, g *grid.Grid, rasterPath, columnPrefix string) (*grid.Grid, error) {
	if err := e.failSample[rasterPath]; err != nil {
		return nil, err
	}
	e.mu.Lock()
	r, ok := e.rasters[rasterPath]
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("memory engine: no raster registered at %s", rasterPath)
	}
	out := g.Clone()
	for b := 1; b <= len(r.Bands); b++ {
		vals := make([]float64, g.Len())
		for i := 0; i < g.Len(); i++ {
			vals[i] = r.Sample(b, g.Point(i))
		}
		if err := out.AddColumn(columnPrefix+strconv.Itoa(b), vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}
