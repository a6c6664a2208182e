package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var (
	_ Recorder = Nop{}
	_ Recorder = (*PrometheusRecorder)(nil)
	_ Recorder = (*ExpvarRecorder)(nil)
)

func TestPrometheusRecorderCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.ObserveStage("clip", true, 120*time.Millisecond)
	rec.ObserveStage("clip", false, 40*time.Millisecond)
	rec.CountRaster(OutcomeSampled)
	rec.CountRaster(OutcomeSampled)
	rec.CountRaster(OutcomeClipFailed)
	rec.ObservePoints(49)

	if got := testutil.ToFloat64(rec.stageTotal.WithLabelValues("clip", "success")); got != 1 {
		t.Fatalf("clip successes = %g, want 1", got)
	}
	if got := testutil.ToFloat64(rec.stageTotal.WithLabelValues("clip", "error")); got != 1 {
		t.Fatalf("clip errors = %g, want 1", got)
	}
	if got := testutil.ToFloat64(rec.rasterTotal.WithLabelValues(OutcomeSampled)); got != 2 {
		t.Fatalf("sampled rasters = %g, want 2", got)
	}
	if got := testutil.ToFloat64(rec.points); got != 49 {
		t.Fatalf("grid points = %g, want 49", got)
	}
}

func TestPrometheusRecorderRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)
	rec.ObserveStage("write", true, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := make(map[string]bool)
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{
		"fieldsampler_stage_duration_seconds",
		"fieldsampler_stage_total",
	} {
		if !found[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestExpvarRecorderSnapshot(t *testing.T) {
	rec := NewExpvarRecorder("")
	rec.ObserveStage("sample", true, 250*time.Millisecond)
	rec.ObserveStage("sample", true, 250*time.Millisecond)
	rec.ObserveStage("sample", false, 100*time.Millisecond)
	rec.CountRaster(OutcomeRenameFailed)
	rec.ObservePoints(121)

	snap := rec.Snapshot()
	if snap.Stages["sample"]["success"] != 2 || snap.Stages["sample"]["error"] != 1 {
		t.Fatalf("stage counts = %v", snap.Stages)
	}
	if snap.StageDurationsMS["sample"] != 600 {
		t.Fatalf("durations = %v", snap.StageDurationsMS)
	}
	if snap.Rasters[OutcomeRenameFailed] != 1 {
		t.Fatalf("rasters = %v", snap.Rasters)
	}
	if snap.GridPoints != 121 {
		t.Fatalf("points = %d", snap.GridPoints)
	}
}

func TestExpvarRecorderUniqueNames(t *testing.T) {
	a := NewExpvarRecorder("")
	b := NewExpvarRecorder("")
	if a.Name() == b.Name() {
		t.Fatalf("generated names collide: %s", a.Name())
	}
}

func TestExpvarRecorderIgnoresEmptyStage(t *testing.T) {
	rec := NewExpvarRecorder("")
	rec.ObserveStage("", true, time.Second)
	if len(rec.Snapshot().Stages) != 0 {
		t.Fatal("empty stage recorded")
	}
}
