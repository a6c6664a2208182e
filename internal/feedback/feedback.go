// Package feedback carries progress and diagnostics out of the pipeline
// without binding it to a host framework. The pipeline reports through the
// Sink interface and polls it for cooperative cancellation.
package feedback

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Sink receives pipeline progress and diagnostics.
type Sink interface {
	// Info reports an informational message.
	Info(msg string)
	// Warning reports a recoverable problem.
	Warning(msg string)
	// Progress reports overall completion in percent, monotonically 0-100.
	Progress(percent int)
	// Canceled reports whether the run should stop at the next iteration
	// boundary.
	Canceled() bool
}

// SlogSink adapts a Sink onto a slog.Logger. Cancellation is a flag the
// host flips from another goroutine.
type SlogSink struct {
	log      *slog.Logger
	canceled atomic.Bool
}

// NewSlogSink wraps a logger; a nil logger falls back to slog.Default.
func NewSlogSink(log *slog.Logger) *SlogSink {
	if log == nil {
		log = slog.Default()
	}
	return &SlogSink{log: log}
}

// Info logs at info level.
func (s *SlogSink) Info(msg string) { s.log.Info(msg) }

// Warning logs at warn level.
func (s *SlogSink) Warning(msg string) { s.log.Warn(msg) }

// Progress logs completion at debug level to keep normal output quiet.
func (s *SlogSink) Progress(percent int) { s.log.Debug("progress", "percent", percent) }

// Canceled reports whether Cancel was called.
func (s *SlogSink) Canceled() bool { return s.canceled.Load() }

// Cancel requests a cooperative stop.
func (s *SlogSink) Cancel() { s.canceled.Store(true) }

// Recorder is a Sink for tests: it captures everything and can trip
// cancellation after a configured number of info messages.
type Recorder struct {
	mu          sync.Mutex
	Infos       []string
	Warnings    []string
	Percents    []int
	CancelAfter int // cancel once this many infos were seen; 0 disables
}

// Info records the message.
func (r *Recorder) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Infos = append(r.Infos, msg)
}

// Warning records the message.
func (r *Recorder) Warning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, msg)
}

// Progress records the percentage.
func (r *Recorder) Progress(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Percents = append(r.Percents, percent)
}

// Canceled reports whether the cancel threshold has been reached.
func (r *Recorder) Canceled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.CancelAfter > 0 && len(r.Infos) >= r.CancelAfter
}

// Nop discards everything and never cancels.
type Nop struct{}

// Info discards the message.
func (Nop) Info(string) {}

// Warning discards the message.
func (Nop) Warning(string) {}

// Progress discards the percentage.
func (Nop) Progress(int) {}

// Canceled always reports false.
func (Nop) Canceled() bool { return false }
