package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports pipeline metrics through a prometheus registry.
type PrometheusRecorder struct {
	stageDuration *prometheus.HistogramVec
	stageTotal    *prometheus.CounterVec
	rasterTotal   *prometheus.CounterVec
	points        prometheus.Gauge
}

// NewPrometheusRecorder registers the pipeline collectors on reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fieldsampler",
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"stage"}),
		stageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldsampler",
			Name:      "stage_total",
			Help:      "Pipeline stage completions by result.",
		}, []string{"stage", "result"}),
		rasterTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldsampler",
			Name:      "raster_total",
			Help:      "Per-raster outcomes across runs.",
		}, []string{"outcome"}),
		points: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fieldsampler",
			Name:      "grid_points",
			Help:      "Sample points surviving boundary masking in the last run.",
		}),
	}
	reg.MustRegister(r.stageDuration, r.stageTotal, r.rasterTotal, r.points)
	return r
}

// ObserveStage records stage duration and result.
func (r *PrometheusRecorder) ObserveStage(stage string, success bool, duration time.Duration) {
	result := "error"
	if success {
		result = "success"
	}
	r.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	r.stageTotal.WithLabelValues(stage, result).Inc()
}

// CountRaster bumps the outcome counter.
func (r *PrometheusRecorder) CountRaster(outcome string) {
	r.rasterTotal.WithLabelValues(outcome).Inc()
}

// ObservePoints sets the surviving point gauge.
func (r *PrometheusRecorder) ObservePoints(n int) {
	r.points.Set(float64(n))
}
