package export

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"fieldsampler/internal/blob"
	"fieldsampler/internal/feedback"
)

func TestResolvePaths(t *testing.T) {
	gp, csv := ResolvePaths("", "", "/project", "/data/field.gpkg")
	if gp != filepath.Join("/project", DefaultGeoPackageName) {
		t.Fatalf("gpkg path = %s", gp)
	}
	if csv != filepath.Join("/project", DefaultCSVName) {
		t.Fatalf("csv path = %s", csv)
	}

	// no project home: outputs land next to the polygon
	gp, csv = ResolvePaths("", "", "", "/data/field.gpkg")
	if gp != filepath.Join("/data", DefaultGeoPackageName) || csv != filepath.Join("/data", DefaultCSVName) {
		t.Fatalf("fallback paths = %s, %s", gp, csv)
	}

	// explicit paths win
	gp, csv = ResolvePaths("/x/a.gpkg", "/y/b.csv", "/project", "/data/field.gpkg")
	if gp != "/x/a.gpkg" || csv != "/y/b.csv" {
		t.Fatalf("explicit paths = %s, %s", gp, csv)
	}
}

func TestWriterWritesBothTargets(t *testing.T) {
	dir := t.TempDir()
	g := csvGrid(t)
	w := &Writer{LayerName: "raster_values"}
	rec := &feedback.Recorder{}

	res, err := w.Write(context.Background(), g,
		filepath.Join(dir, "out.gpkg"), filepath.Join(dir, "out.csv"), "run-1", rec)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !res.GeoPackageOK || !res.CSVOK {
		t.Fatalf("result = %+v", res)
	}
	if len(rec.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", rec.Warnings)
	}
}

func TestWriterToleratesOneFailedTarget(t *testing.T) {
	dir := t.TempDir()
	g := csvGrid(t)
	w := &Writer{}
	rec := &feedback.Recorder{}

	// the GeoPackage path points into a regular file, so that write must fail
	blocker := filepath.Join(dir, "blocker")
	if err := WriteCSV(blocker, g); err != nil {
		t.Fatalf("prepare blocker: %v", err)
	}
	res, err := w.Write(context.Background(), g,
		filepath.Join(blocker, "out.gpkg"), filepath.Join(dir, "out.csv"), "run-1", rec)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if res.GeoPackageOK {
		t.Fatal("impossible geopackage path reported ok")
	}
	if !res.CSVOK {
		t.Fatal("csv write failed too")
	}
	if len(rec.Warnings) == 0 {
		t.Fatal("failed target produced no warning")
	}
}

func TestWriterFailsWhenAllTargetsFail(t *testing.T) {
	g := csvGrid(t)
	w := &Writer{}
	rec := &feedback.Recorder{}

	// both paths nested under a regular file so every write fails
	blocker := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSV(blocker, g); err != nil {
		t.Fatalf("prepare blocker: %v", err)
	}
	_, err := w.Write(context.Background(), g,
		filepath.Join(blocker, "a.gpkg"), filepath.Join(blocker, "b.csv"), "run-1", rec)
	if err == nil {
		t.Fatal("all-failed write succeeded")
	}
}

func TestWriterArchivesOutputs(t *testing.T) {
	dir := t.TempDir()
	g := csvGrid(t)
	store, err := blob.Open(context.Background(), blob.Options{Driver: blob.DriverMemory})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	w := &Writer{LayerName: "vals", Archive: store}
	rec := &feedback.Recorder{}

	res, err := w.Write(context.Background(), g,
		filepath.Join(dir, "out.gpkg"), filepath.Join(dir, "out.csv"), "run-42", rec)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(res.ArchivedKeys) != 2 {
		t.Fatalf("archived keys = %v, want 2 entries", res.ArchivedKeys)
	}
	for _, key := range res.ArchivedKeys {
		if !strings.HasPrefix(key, "run-42/") {
			t.Fatalf("key %q not namespaced by run id", key)
		}
		if _, err := store.Head(context.Background(), key); err != nil {
			t.Fatalf("archived artifact %s missing: %v", key, err)
		}
	}
}
