// Package config loads fieldsampler settings from a YAML file and
// environment variables. Lookup order: explicit --config path, then
// fieldsampler.yaml in the working directory, then
// $HOME/.config/fieldsampler/. Environment variables use the
// FIELDSAMPLER_ prefix with underscores for nesting, for example
// FIELDSAMPLER_OUTPUT_LAYER.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds every tunable of a sampling run.
type Settings struct {
	// ProjectHome anchors the scratch directory and default output paths.
	// Empty means: scratch under the user home, outputs next to the polygon.
	ProjectHome string

	// Engine selects the geospatial backend, "gdal" or "memory".
	Engine string

	// KeepScratch leaves the temp_clip directory in place after a run.
	KeepScratch bool

	Buffer struct {
		Distance float64 // shrink distance in CRS units, 0 disables masking
	}

	GDAL struct {
		Warp         string // gdalwarp binary
		Info         string // gdalinfo binary
		OGRInfo      string // ogrinfo binary
		OGR2OGR      string // ogr2ogr binary
		LocationInfo string // gdallocationinfo binary
	}

	Output struct {
		GeoPackage string // explicit .gpkg path, empty for default
		CSV        string // explicit .csv path, empty for default
		Layer      string // feature table name inside the GeoPackage
	}

	Postgres struct {
		Enabled bool
		DSN     string
		Table   string
	}

	Archive struct {
		Enabled bool
		Driver  string // fs, s3 or memory
		FSRoot  string

		S3 struct {
			Region          string
			Bucket          string
			Endpoint        string
			AccessKeyID     string
			SecretAccessKey string
			PathStyle       bool
		}
	}

	Metrics struct {
		Enabled bool
		Listen  string // address for the Prometheus /metrics endpoint
	}

	LogLevel string // debug, info, warn or error
}

// Load reads configuration from the given file (or the default search
// paths when path is empty) and the environment.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FIELDSAMPLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fieldsampler")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "fieldsampler"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// no config file, defaults and environment apply
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine", "gdal")
	v.SetDefault("keepscratch", false)
	v.SetDefault("buffer.distance", 0.0)
	v.SetDefault("gdal.warp", "gdalwarp")
	v.SetDefault("gdal.info", "gdalinfo")
	v.SetDefault("gdal.ogrinfo", "ogrinfo")
	v.SetDefault("gdal.ogr2ogr", "ogr2ogr")
	v.SetDefault("gdal.locationinfo", "gdallocationinfo")
	v.SetDefault("output.layer", "raster_values")
	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.table", "raster_values")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.driver", "fs")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9095")
	v.SetDefault("loglevel", "info")
}

// Validate rejects settings combinations a run cannot start with.
func (s *Settings) Validate() error {
	switch s.Engine {
	case "gdal", "memory":
	default:
		return fmt.Errorf("config: unknown engine %q", s.Engine)
	}
	if s.Buffer.Distance < 0 {
		return fmt.Errorf("config: buffer distance must be >= 0, got %g", s.Buffer.Distance)
	}
	if s.Postgres.Enabled && s.Postgres.DSN == "" {
		return errors.New("config: postgres enabled without a dsn")
	}
	if s.Archive.Enabled {
		switch s.Archive.Driver {
		case "fs":
			if s.Archive.FSRoot == "" {
				return errors.New("config: fs archive requires archive.fsroot")
			}
		case "s3":
			if s.Archive.S3.Bucket == "" {
				return errors.New("config: s3 archive requires archive.s3.bucket")
			}
		case "memory":
		default:
			return fmt.Errorf("config: unknown archive driver %q", s.Archive.Driver)
		}
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", s.LogLevel)
	}
	return nil
}
