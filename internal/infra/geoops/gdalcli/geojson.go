package gdalcli

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"fieldsampler/pkg/geom"
	"fieldsampler/pkg/grid"
)

// Minimal GeoJSON plumbing for the ogr2ogr point-clip round trip. Attribute
// values travel as feature properties; NaN samples are written as null.

type geoJSONGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type geoJSONFeature struct {
	Type       string          `json:"type"`
	Geometry   geoJSONGeometry `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type geoJSONCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

func writeGridGeoJSON(path string, g *grid.Grid) error {
	coll := geoJSONCollection{Type: "FeatureCollection", Features: make([]geoJSONFeature, 0, g.Len())}
	cols := g.Columns()
	for i := 0; i < g.Len(); i++ {
		p := g.Point(i)
		props := make(map[string]any, len(cols)+1)
		props["fid"] = g.FID(i)
		for _, c := range cols {
			if v := g.Value(c, i); !math.IsNaN(v) {
				props[c] = v
			} else {
				props[c] = nil
			}
		}
		coll.Features = append(coll.Features, geoJSONFeature{
			Type:       "Feature",
			Geometry:   geoJSONGeometry{Type: "Point", Coordinates: []float64{p.X, p.Y}},
			Properties: props,
		})
	}
	data, err := json.Marshal(coll)
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// readGridGeoJSON rebuilds a grid from a clipped GeoJSON file, matching
// surviving features back to the template grid by feature ID so point
// identity and column order are preserved.
func readGridGeoJSON(path string, template *grid.Grid) (*grid.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	var coll geoJSONCollection
	if err := json.Unmarshal(data, &coll); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	surviving := make(map[int64]struct{}, len(coll.Features))
	for _, f := range coll.Features {
		raw, ok := f.Properties["fid"]
		if !ok {
			return nil, fmt.Errorf("decode geojson: feature missing fid")
		}
		num, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("decode geojson: fid has type %T", raw)
		}
		surviving[int64(num)] = struct{}{}
	}
	return template.Filter(func(i int, _ geom.Point) bool {
		_, ok := surviving[template.FID(i)]
		return ok
	}), nil
}
