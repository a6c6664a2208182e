package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"fieldsampler/internal/blob"
	"fieldsampler/internal/export"
	"fieldsampler/internal/feedback"
	"fieldsampler/internal/infra/blob/s3"
	"fieldsampler/internal/infra/geoops/gdalcli"
	"fieldsampler/internal/observability"
	"fieldsampler/internal/pipeline"
)

var (
	polygonPath string
	rasterPaths []string
	bufferFlag  float64
	gpkgFlag    string
	csvFlag     string
	homeFlag    string
	keepScratch bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Sample raster values at grid points inside a polygon",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runExtract(ctx, cmd)
	},
}

func init() {
	extractCmd.Flags().StringVar(&polygonPath, "polygon", "", "field boundary vector file (required)")
	extractCmd.Flags().StringArrayVar(&rasterPaths, "raster", nil, "raster file to sample, repeatable (required)")
	extractCmd.Flags().Float64Var(&bufferFlag, "buffer", -1, "inward buffer distance in CRS units (overrides config)")
	extractCmd.Flags().StringVar(&gpkgFlag, "gpkg", "", "GeoPackage output path")
	extractCmd.Flags().StringVar(&csvFlag, "csv", "", "CSV output path")
	extractCmd.Flags().StringVar(&homeFlag, "project-home", "", "directory for scratch files and default outputs")
	extractCmd.Flags().BoolVar(&keepScratch, "keep-scratch", false, "keep the temp_clip scratch directory after the run")
	_ = extractCmd.MarkFlagRequired("polygon")
	_ = extractCmd.MarkFlagRequired("raster")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(ctx context.Context, cmd *cobra.Command) error {
	params := pipeline.Params{
		PolygonPath:    polygonPath,
		RasterPaths:    rasterPaths,
		BufferDistance: settings.Buffer.Distance,
		GeoPackagePath: gpkgFlag,
		CSVPath:        csvFlag,
		ProjectHome:    settings.ProjectHome,
		KeepScratch:    settings.KeepScratch || keepScratch,
	}
	if cmd.Flags().Changed("buffer") {
		params.BufferDistance = bufferFlag
	}
	if params.GeoPackagePath == "" {
		params.GeoPackagePath = settings.Output.GeoPackage
	}
	if params.CSVPath == "" {
		params.CSVPath = settings.Output.CSV
	}
	if homeFlag != "" {
		params.ProjectHome = homeFlag
	}

	engine, err := buildEngine()
	if err != nil {
		return err
	}

	writer, err := buildWriter(ctx)
	if err != nil {
		return err
	}

	metrics, err := buildMetrics()
	if err != nil {
		return err
	}

	p := pipeline.New(engine,
		pipeline.WithSink(feedback.NewSlogSink(slog.Default())),
		pipeline.WithMetrics(metrics),
		pipeline.WithWriter(writer),
	)

	summary, err := p.Run(ctx, params)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

func buildEngine() (*gdalcli.Engine, error) {
	if settings.Engine != "gdal" {
		return nil, fmt.Errorf("engine %q has no data sources on the command line, use gdal", settings.Engine)
	}
	return gdalcli.New(gdalcli.Config{
		Warp:         settings.GDAL.Warp,
		Info:         settings.GDAL.Info,
		OGRInfo:      settings.GDAL.OGRInfo,
		OGR2OGR:      settings.GDAL.OGR2OGR,
		LocationInfo: settings.GDAL.LocationInfo,
	}), nil
}

func buildWriter(ctx context.Context) (*export.Writer, error) {
	w := &export.Writer{LayerName: settings.Output.Layer}

	if settings.Postgres.Enabled {
		w.Postgres = &export.PostgresSink{
			DSN:   settings.Postgres.DSN,
			Table: settings.Postgres.Table,
		}
	}

	if settings.Archive.Enabled {
		store, err := blob.Open(ctx, blob.Options{
			Driver: blob.Driver(settings.Archive.Driver),
			FSRoot: settings.Archive.FSRoot,
			S3: s3.Config{
				Region:          settings.Archive.S3.Region,
				Bucket:          settings.Archive.S3.Bucket,
				Endpoint:        settings.Archive.S3.Endpoint,
				AccessKeyID:     settings.Archive.S3.AccessKeyID,
				SecretAccessKey: settings.Archive.S3.SecretAccessKey,
				PathStyle:       settings.Archive.S3.PathStyle,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("open artifact archive: %w", err)
		}
		w.Archive = store
	}

	return w, nil
}

func buildMetrics() (observability.Recorder, error) {
	if !settings.Metrics.Enabled {
		return observability.Nop{}, nil
	}
	reg := prometheus.NewRegistry()
	rec := observability.NewPrometheusRecorder(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(settings.Metrics.Listen, mux); err != nil {
			slog.Error("metrics endpoint failed", "error", err)
		}
	}()

	return rec, nil
}
