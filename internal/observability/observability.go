// Package observability records pipeline metrics. The Recorder interface
// keeps the pipeline decoupled from any metrics backend; Prometheus and
// expvar implementations are provided, plus a no-op for tests.
package observability

import (
	"time"
)

// Raster outcome labels recorded per input raster.
const (
	OutcomeClipped      = "clipped"
	OutcomeClipFailed   = "clip_failed"
	OutcomeSampled      = "sampled"
	OutcomeSampleFailed = "sample_failed"
	OutcomeRenameFailed = "rename_failed"
)

// Recorder aggregates pipeline observations.
type Recorder interface {
	// ObserveStage records a pipeline stage completing with the given outcome.
	ObserveStage(stage string, success bool, duration time.Duration)
	// CountRaster bumps a per-raster outcome counter.
	CountRaster(outcome string)
	// ObservePoints records the number of sample points surviving masking.
	ObservePoints(n int)
}

// Nop discards all observations.
type Nop struct{}

// ObserveStage discards the observation.
func (Nop) ObserveStage(string, bool, time.Duration) {}

// CountRaster discards the observation.
func (Nop) CountRaster(string) {}

// ObservePoints discards the observation.
func (Nop) ObservePoints(int) {}
