// Package gdalcli implements the geoops capability surface by shelling out
// to the GDAL/OGR command-line tools. The tools are the external black-box
// collaborators: this package owns argument construction, scratch files and
// output parsing, never geometric math of its own.
package gdalcli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fieldsampler/internal/geoops"
	"fieldsampler/pkg/geom"
	"fieldsampler/pkg/grid"
)

// Compile-time contract assertion.
var _ geoops.Engine = (*Engine)(nil)

// Config points the engine at the GDAL tool binaries. Empty fields fall
// back to plain tool names resolved through PATH.
type Config struct {
	Warp         string // gdalwarp
	Info         string // gdalinfo
	OGRInfo      string // ogrinfo
	OGR2OGR      string // ogr2ogr
	LocationInfo string // gdallocationinfo
	WorkDir      string // scratch directory for intermediate vectors
}

func (c Config) withDefaults() Config {
	def := func(v, name string) string {
		if v == "" {
			return name
		}
		return v
	}
	c.Warp = def(c.Warp, "gdalwarp")
	c.Info = def(c.Info, "gdalinfo")
	c.OGRInfo = def(c.OGRInfo, "ogrinfo")
	c.OGR2OGR = def(c.OGR2OGR, "ogr2ogr")
	c.LocationInfo = def(c.LocationInfo, "gdallocationinfo")
	if c.WorkDir == "" {
		c.WorkDir = os.TempDir()
	}
	return c
}

// Engine drives the GDAL command-line tools.
type Engine struct {
	cfg Config
	run runner
}

type runner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// New returns an engine using the given tool configuration.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults(), run: runCommand}
}

func runCommand(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// fileMask is a polygon vector source on disk.
type fileMask struct {
	path string
	crs  geom.CRS
}

func (m *fileMask) CRS() geom.CRS { return m.crs }

// OpenPolygon validates the vector source and reads its CRS.
func (e *Engine) OpenPolygon(ctx context.Context, path string) (geoops.Mask, error) {
	out, err := e.run(ctx, nil, e.cfg.OGRInfo, "-ro", "-so", "-json", path)
	if err != nil {
		return nil, fmt.Errorf("open polygon %s: %w", path, err)
	}
	meta, err := parseOGRInfo(out)
	if err != nil {
		return nil, fmt.Errorf("open polygon %s: %w", path, err)
	}
	return &fileMask{path: path, crs: meta.crs}, nil
}

// OpenRaster reads the raster's spatial frame via gdalinfo.
func (e *Engine) OpenRaster(ctx context.Context, path string) (geoops.Raster, error) {
	out, err := e.run(ctx, nil, e.cfg.Info, "-json", path)
	if err != nil {
		return geoops.Raster{}, fmt.Errorf("open raster %s: %w", path, err)
	}
	r, err := parseGDALInfo(out)
	if err != nil {
		return geoops.Raster{}, fmt.Errorf("open raster %s: %w", path, err)
	}
	r.Path = path
	return r, nil
}

// ClipRaster crops the raster to the mask cutline at source resolution.
func (e *Engine) ClipRaster(ctx context.Context, rasterPath string, m geoops.Mask, outPath string) (string, error) {
	fm, ok := m.(*fileMask)
	if !ok {
		return "", fmt.Errorf("gdalcli: foreign mask %T", m)
	}
	_, err := e.run(ctx, nil, e.cfg.Warp,
		"-overwrite", "-of", "GTiff",
		"-cutline", fm.path, "-crop_to_cutline",
		rasterPath, outPath)
	if err != nil {
		return "", fmt.Errorf("clip raster %s: %w", rasterPath, err)
	}
	if _, statErr := os.Stat(outPath); statErr != nil {
		return "", fmt.Errorf("clip raster %s: no output produced: %w", rasterPath, statErr)
	}
	return outPath, nil
}

// GenerateGrid builds the point lattice locally; point generation is pure
// arithmetic and gains nothing from a subprocess round trip.
func (e *Engine) GenerateGrid(_ context.Context, extent geom.Rect, hSpacing, vSpacing float64, crs geom.CRS) (*grid.Grid, error) {
	return geoops.PointLattice(extent, hSpacing, vSpacing, crs)
}

// BufferPolygon offsets the mask polygon through the SQLite dialect's
// ST_Buffer and writes the product next to the engine's scratch dir.
func (e *Engine) BufferPolygon(ctx context.Context, m geoops.Mask, distance float64, params geoops.BufferParams) (geoops.Mask, error) {
	fm, ok := m.(*fileMask)
	if !ok {
		return nil, fmt.Errorf("gdalcli: foreign mask %T", m)
	}
	layer, err := e.layerName(ctx, fm.path)
	if err != nil {
		return nil, fmt.Errorf("buffer polygon: %w", err)
	}
	segments := params.Segments
	if segments <= 0 {
		segments = geoops.DefaultBufferParams().Segments
	}
	outPath := filepath.Join(e.cfg.WorkDir, "buffered_"+uuid.NewString()+".gpkg")
	sql := fmt.Sprintf("SELECT ST_Buffer(geometry, %g, %d) AS geometry FROM %q", distance, segments, layer)
	if _, err := e.run(ctx, nil, e.cfg.OGR2OGR, "-f", "GPKG", outPath, fm.path, "-dialect", "sqlite", "-sql", sql); err != nil {
		return nil, fmt.Errorf("buffer polygon: %w", err)
	}
	return &fileMask{path: outPath, crs: fm.crs}, nil
}

// ClipPoints round-trips the grid through GeoJSON and ogr2ogr -clipsrc.
func (e *Engine) ClipPoints(ctx context.Context, g *grid.Grid, m geoops.Mask) (*grid.Grid, error) {
	fm, ok := m.(*fileMask)
	if !ok {
		return nil, fmt.Errorf("gdalcli: foreign mask %T", m)
	}
	inPath := filepath.Join(e.cfg.WorkDir, "grid_"+uuid.NewString()+".geojson")
	outPath := filepath.Join(e.cfg.WorkDir, "grid_"+uuid.NewString()+".geojson")
	defer func() {
		_ = os.Remove(inPath)
		_ = os.Remove(outPath)
	}()
	if err := writeGridGeoJSON(inPath, g); err != nil {
		return nil, fmt.Errorf("clip points: %w", err)
	}
	if _, err := e.run(ctx, nil, e.cfg.OGR2OGR, "-f", "GeoJSON", outPath, inPath, "-clipsrc", fm.path); err != nil {
		return nil, fmt.Errorf("clip points: %w", err)
	}
	out, err := readGridGeoJSON(outPath, g)
	if err != nil {
		return nil, fmt.Errorf("clip points: %w", err)
	}
	return out, nil
}

// SamplePoints extracts per-band pixel values with gdallocationinfo, feeding
// point coordinates on stdin and adding prefix+ordinal columns.
func (e *Engine) SamplePoints(ctx context.Context, g *grid.Grid, rasterPath, columnPrefix string) (*grid.Grid, error) {
	r, err := e.OpenRaster(ctx, rasterPath)
	if err != nil {
		return nil, fmt.Errorf("sample points: %w", err)
	}
	var coords bytes.Buffer
	for i := 0; i < g.Len(); i++ {
		p := g.Point(i)
		fmt.Fprintf(&coords, "%.10f %.10f\n", p.X, p.Y)
	}
	out, err := e.run(ctx, coords.Bytes(), e.cfg.LocationInfo, "-valonly", "-geoloc", rasterPath)
	if err != nil {
		return nil, fmt.Errorf("sample points %s: %w", rasterPath, err)
	}
	values, err := parseLocationInfo(out, g.Len(), r.Bands)
	if err != nil {
		return nil, fmt.Errorf("sample points %s: %w", rasterPath, err)
	}
	sampled := g.Clone()
	for b := 0; b < r.Bands; b++ {
		if err := sampled.AddColumn(fmt.Sprintf("%s%d", columnPrefix, b+1), values[b]); err != nil {
			return nil, fmt.Errorf("sample points %s: %w", rasterPath, err)
		}
	}
	return sampled, nil
}

func (e *Engine) layerName(ctx context.Context, path string) (string, error) {
	out, err := e.run(ctx, nil, e.cfg.OGRInfo, "-ro", "-so", "-json", path)
	if err != nil {
		return "", err
	}
	meta, err := parseOGRInfo(out)
	if err != nil {
		return "", err
	}
	if meta.layer == "" {
		return "", fmt.Errorf("no layers in %s", path)
	}
	return meta.layer, nil
}
