package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil { // no config file in reach
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	s, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Engine != "gdal" {
		t.Fatalf("engine = %q, want gdal", s.Engine)
	}
	if s.GDAL.Warp != "gdalwarp" || s.GDAL.LocationInfo != "gdallocationinfo" {
		t.Fatalf("gdal tools = %+v", s.GDAL)
	}
	if s.Output.Layer != "raster_values" {
		t.Fatalf("layer = %q", s.Output.Layer)
	}
	if s.Buffer.Distance != 0 {
		t.Fatalf("buffer = %g", s.Buffer.Distance)
	}
	if s.LogLevel != "info" {
		t.Fatalf("log level = %q", s.LogLevel)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fieldsampler.yaml")
	body := `
engine: memory
projecthome: /srv/fields
buffer:
  distance: 12.5
output:
  layer: samples
postgres:
  enabled: true
  dsn: postgres://localhost/fields
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Engine != "memory" {
		t.Fatalf("engine = %q", s.Engine)
	}
	if s.ProjectHome != "/srv/fields" {
		t.Fatalf("project home = %q", s.ProjectHome)
	}
	if s.Buffer.Distance != 12.5 {
		t.Fatalf("buffer = %g", s.Buffer.Distance)
	}
	if s.Output.Layer != "samples" {
		t.Fatalf("layer = %q", s.Output.Layer)
	}
	if !s.Postgres.Enabled || s.Postgres.DSN != "postgres://localhost/fields" {
		t.Fatalf("postgres = %+v", s.Postgres)
	}
	if s.Postgres.Table != "raster_values" {
		t.Fatalf("postgres table default = %q", s.Postgres.Table)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing explicit config accepted")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Settings {
		s := &Settings{Engine: "gdal", LogLevel: "info"}
		return s
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("minimal settings rejected: %v", err)
	}

	s := base()
	s.Engine = "arcgis"
	if err := s.Validate(); err == nil {
		t.Error("unknown engine accepted")
	}

	s = base()
	s.Buffer.Distance = -1
	if err := s.Validate(); err == nil {
		t.Error("negative buffer accepted")
	}

	s = base()
	s.Postgres.Enabled = true
	if err := s.Validate(); err == nil {
		t.Error("postgres without dsn accepted")
	}

	s = base()
	s.Archive.Enabled = true
	s.Archive.Driver = "fs"
	if err := s.Validate(); err == nil {
		t.Error("fs archive without root accepted")
	}

	s = base()
	s.Archive.Enabled = true
	s.Archive.Driver = "s3"
	if err := s.Validate(); err == nil {
		t.Error("s3 archive without bucket accepted")
	}

	s = base()
	s.Archive.Enabled = true
	s.Archive.Driver = "memory"
	if err := s.Validate(); err != nil {
		t.Errorf("memory archive rejected: %v", err)
	}

	s = base()
	s.LogLevel = "loud"
	if err := s.Validate(); err == nil {
		t.Error("unknown log level accepted")
	}
}
