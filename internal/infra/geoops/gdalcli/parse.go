package gdalcli

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"fieldsampler/internal/geoops"
	"fieldsampler/pkg/geom"
)

// gdalinfoDoc is the subset of `gdalinfo -json` the engine reads.
type gdalinfoDoc struct {
	Size             []int     `json:"size"`
	GeoTransform     []float64 `json:"geoTransform"`
	Bands            []struct{}`json:"bands"`
	CoordinateSystem struct {
		WKT string `json:"wkt"`
	} `json:"coordinateSystem"`
}

func parseGDALInfo(data []byte) (geoops.Raster, error) {
	var doc gdalinfoDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return geoops.Raster{}, fmt.Errorf("parse gdalinfo: %w", err)
	}
	if len(doc.Size) != 2 || len(doc.GeoTransform) != 6 {
		return geoops.Raster{}, fmt.Errorf("parse gdalinfo: missing size or geotransform")
	}
	cols, rows := doc.Size[0], doc.Size[1]
	gt := doc.GeoTransform
	if gt[1] <= 0 || gt[5] >= 0 {
		return geoops.Raster{}, fmt.Errorf("parse gdalinfo: unsupported geotransform %v", gt)
	}
	r := geoops.Raster{
		ResX:  gt[1],
		ResY:  -gt[5],
		Bands: len(doc.Bands),
		CRS:   crsFromWKT(doc.CoordinateSystem.WKT),
	}
	r.Extent = geom.Rect{
		MinX: gt[0],
		MaxY: gt[3],
		MaxX: gt[0] + float64(cols)*gt[1],
		MinY: gt[3] + float64(rows)*gt[5],
	}
	if r.Bands == 0 {
		return geoops.Raster{}, fmt.Errorf("parse gdalinfo: raster has no bands")
	}
	return r, nil
}

// ogrinfoDoc is the subset of `ogrinfo -json` the engine reads.
type ogrinfoDoc struct {
	Layers []struct {
		Name           string `json:"name"`
		GeometryFields []struct {
			CoordinateSystem struct {
				WKT string `json:"wkt"`
			} `json:"coordinateSystem"`
		} `json:"geometryFields"`
	} `json:"layers"`
}

type ogrMeta struct {
	layer string
	crs   geom.CRS
}

func parseOGRInfo(data []byte) (ogrMeta, error) {
	var doc ogrinfoDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return ogrMeta{}, fmt.Errorf("parse ogrinfo: %w", err)
	}
	if len(doc.Layers) == 0 {
		return ogrMeta{}, fmt.Errorf("parse ogrinfo: no layers")
	}
	meta := ogrMeta{layer: doc.Layers[0].Name}
	if gf := doc.Layers[0].GeometryFields; len(gf) > 0 {
		meta.crs = crsFromWKT(gf[0].CoordinateSystem.WKT)
	}
	return meta, nil
}

var epsgRe = regexp.MustCompile(`(?:ID|AUTHORITY)\["EPSG",\s*"?(\d+)"?\]`)

// crsFromWKT extracts the authority code of the outermost CRS, which the
// WKT lists last.
func crsFromWKT(wkt string) geom.CRS {
	matches := epsgRe.FindAllStringSubmatch(wkt, -1)
	if len(matches) == 0 {
		return ""
	}
	code, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return ""
	}
	return geom.EPSG(code)
}

// parseLocationInfo splits `gdallocationinfo -valonly` output into per-band
// value slices. The tool prints bands consecutively for each point; values
// that fail to parse (nodata markers, out-of-raster messages) become NaN.
func parseLocationInfo(out []byte, points, bands int) ([][]float64, error) {
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if points == 0 {
		return make([][]float64, bands), nil
	}
	if len(lines) != points*bands {
		return nil, fmt.Errorf("parse locationinfo: %d lines for %d points x %d bands", len(lines), points, bands)
	}
	values := make([][]float64, bands)
	for b := range values {
		values[b] = make([]float64, points)
	}
	for i, line := range lines {
		point := i / bands
		band := i % bands
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			v = math.NaN()
		}
		values[band][point] = v
	}
	return values, nil
}
