package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fieldsampler/internal/config"
)

var (
	cfgFile string
	verbose bool

	settings *config.Settings
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "fieldsampler",
	Short: "Grid sampling of raster values inside field boundaries",
	Long: `Fieldsampler clips a set of rasters to a field boundary polygon,
lays a regular point grid over the boundary, samples every raster band at
each point and merges the results into a single table written as
GeoPackage and CSV.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		settings, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		setupLogging(settings.LogLevel)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./fieldsampler.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func setupLogging(level string) {
	lvl := slog.LevelInfo
	switch {
	case verbose:
		lvl = slog.LevelDebug
	case level == "debug":
		lvl = slog.LevelDebug
	case level == "warn":
		lvl = slog.LevelWarn
	case level == "error":
		lvl = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
}
