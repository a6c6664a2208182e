// Package export is the output boundary of the pipeline: it resolves
// destination paths and persists the final grid to the configured targets.
// The GeoPackage and CSV writes are independent; neither failure blocks the
// other, and optional sinks (Postgres, artifact archive) are best-effort on
// top of those.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fieldsampler/internal/blob"
	"fieldsampler/internal/feedback"
	"fieldsampler/internal/gpkg"
	"fieldsampler/pkg/grid"
)

// Default output file names used when no destination was supplied.
const (
	DefaultGeoPackageName = "raster_values.gpkg"
	DefaultCSVName        = "raster_values.csv"
)

// ResolvePaths fills in missing destinations: explicit paths win, otherwise
// outputs land in the project home, or next to the polygon source when no
// project home is set.
func ResolvePaths(gpkgPath, csvPath, projectHome, polygonPath string) (string, string) {
	base := projectHome
	if base == "" {
		base = filepath.Dir(polygonPath)
	}
	if gpkgPath == "" {
		gpkgPath = filepath.Join(base, DefaultGeoPackageName)
	}
	if csvPath == "" {
		csvPath = filepath.Join(base, DefaultCSVName)
	}
	return gpkgPath, csvPath
}

// Writer persists the final grid.
type Writer struct {
	LayerName string        // feature layer name in the GeoPackage
	Postgres  *PostgresSink // optional database sink
	Archive   blob.Store    // optional artifact archive
}

// Result reports which targets were written.
type Result struct {
	GeoPackagePath string
	CSVPath        string
	GeoPackageOK   bool
	CSVOK          bool
	ArchivedKeys   []string
}

// Write persists the grid to the resolved paths. Failures are reported
// through the sink as warnings; Write itself only errors when every
// persistent target failed.
func (w *Writer) Write(ctx context.Context, g *grid.Grid, gpkgPath, csvPath, runID string, sink feedback.Sink) (Result, error) {
	res := Result{GeoPackagePath: gpkgPath, CSVPath: csvPath}
	for _, p := range []string{gpkgPath, csvPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			sink.Warning(fmt.Sprintf("Cannot create output directory for %s: %v", p, err))
		}
	}

	if err := gpkg.Write(ctx, gpkgPath, w.LayerName, g); err != nil {
		sink.Warning(fmt.Sprintf("Failed to write GeoPackage: %v", err))
	} else {
		res.GeoPackageOK = true
		sink.Info(fmt.Sprintf("GeoPackage written to %s", gpkgPath))
	}

	if err := WriteCSV(csvPath, g); err != nil {
		sink.Warning(fmt.Sprintf("Failed to write CSV: %v", err))
	} else {
		res.CSVOK = true
		sink.Info(fmt.Sprintf("CSV written to %s", csvPath))
		w.verifyCSV(csvPath, g, sink)
	}

	if !res.GeoPackageOK && !res.CSVOK {
		return res, fmt.Errorf("all output targets failed")
	}

	if w.Postgres != nil {
		if err := w.Postgres.Write(ctx, g); err != nil {
			sink.Warning(fmt.Sprintf("Failed to load result table into Postgres: %v", err))
		} else {
			sink.Info("Result table loaded into Postgres")
		}
	}
	if w.Archive != nil {
		res.ArchivedKeys = w.archive(ctx, runID, res, sink)
	}
	return res, nil
}

// verifyCSV re-opens the written file and checks it matches the grid, the
// batch equivalent of loading the layer back for inspection.
func (w *Writer) verifyCSV(path string, g *grid.Grid, sink feedback.Sink) {
	summary, err := ReadCSVSummary(path)
	if err != nil {
		sink.Warning(fmt.Sprintf("Could not load CSV back: %v", err))
		return
	}
	if summary.Rows != g.Len() || len(summary.Columns) != len(g.Columns())+3 {
		sink.Warning(fmt.Sprintf("CSV verification mismatch: %d rows x %d columns for %d points x %d attributes",
			summary.Rows, len(summary.Columns), g.Len(), len(g.Columns())))
	}
}

func (w *Writer) archive(ctx context.Context, runID string, res Result, sink feedback.Sink) []string {
	type artifact struct {
		path        string
		ok          bool
		contentType string
	}
	var keys []string
	for _, a := range []artifact{
		{res.GeoPackagePath, res.GeoPackageOK, "application/geopackage+sqlite3"},
		{res.CSVPath, res.CSVOK, "text/csv"},
	} {
		if !a.ok {
			continue
		}
		f, err := os.Open(a.path)
		if err != nil {
			sink.Warning(fmt.Sprintf("Cannot archive %s: %v", a.path, err))
			continue
		}
		key := runID + "/" + filepath.Base(a.path)
		_, err = w.Archive.Put(ctx, key, f, blob.PutOptions{ContentType: a.contentType})
		_ = f.Close()
		if err != nil {
			sink.Warning(fmt.Sprintf("Cannot archive %s: %v", a.path, err))
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
