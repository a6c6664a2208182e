package observability

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq uint64

// ExpvarRecorder publishes aggregate pipeline metrics via expvar for
// deployments that prefer process-local metrics without a scrape endpoint.
type ExpvarRecorder struct {
	name string

	mu        sync.Mutex
	durations map[string]float64
	stages    map[string]map[string]int64
	rasters   map[string]int64
	points    int
}

// ExpvarSnapshot is a read-only view of the recorded metrics.
type ExpvarSnapshot struct {
	StageDurationsMS map[string]float64          `json:"stage_durations_ms_total"`
	Stages           map[string]map[string]int64 `json:"stages_total"`
	Rasters          map[string]int64            `json:"rasters_total"`
	GridPoints       int                         `json:"grid_points"`
	RecordedAt       time.Time                   `json:"recorded_at"`
}

// NewExpvarRecorder constructs a recorder published under the supplied name.
// When name is empty a unique identifier is generated.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("fieldsampler_metrics_%d", id)
	}
	rec := &ExpvarRecorder{
		name:      name,
		durations: make(map[string]float64),
		stages:    make(map[string]map[string]int64),
		rasters:   make(map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name.
func (r *ExpvarRecorder) Name() string { return r.name }

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarRecorder) Snapshot() ExpvarSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	durations := make(map[string]float64, len(r.durations))
	for stage, total := range r.durations {
		durations[stage] = total
	}
	stages := make(map[string]map[string]int64, len(r.stages))
	for stage, counts := range r.stages {
		cpy := make(map[string]int64, len(counts))
		for result, n := range counts {
			cpy[result] = n
		}
		stages[stage] = cpy
	}
	rasters := make(map[string]int64, len(r.rasters))
	for outcome, n := range r.rasters {
		rasters[outcome] = n
	}
	return ExpvarSnapshot{
		StageDurationsMS: durations,
		Stages:           stages,
		Rasters:          rasters,
		GridPoints:       r.points,
		RecordedAt:       time.Now().UTC(),
	}
}

// ObserveStage accumulates stage timing and result counts.
func (r *ExpvarRecorder) ObserveStage(stage string, success bool, duration time.Duration) {
	if stage == "" {
		return
	}
	result := "error"
	if success {
		result = "success"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations[stage] += float64(duration) / float64(time.Millisecond)
	if _, ok := r.stages[stage]; !ok {
		r.stages[stage] = make(map[string]int64, 2)
	}
	r.stages[stage][result]++
}

// CountRaster bumps the per-outcome raster counter.
func (r *ExpvarRecorder) CountRaster(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rasters[outcome]++
}

// ObservePoints records the surviving point count.
func (r *ExpvarRecorder) ObservePoints(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.points = n
}
