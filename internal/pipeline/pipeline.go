// Package pipeline implements the batch raster value extraction run: clip
// every input raster to the field polygon, derive a reference point grid
// from the first clipped raster, mask the grid by the optionally buffered
// boundary, sample each clipped raster into uniquely named columns, and
// persist the accumulated table. One bad raster never aborts the batch;
// geometry failures do.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"fieldsampler/internal/export"
	"fieldsampler/internal/feedback"
	"fieldsampler/internal/geoops"
	"fieldsampler/internal/naming"
	"fieldsampler/internal/observability"
	"fieldsampler/pkg/grid"
)

// scratchDirName is the per-project directory clipped rasters land in.
const scratchDirName = "temp_clip"

// Params are the inputs of one extraction run.
type Params struct {
	PolygonPath    string
	RasterPaths    []string
	BufferDistance float64 // >= 0; inward shrink of the sampling mask
	GeoPackagePath string  // optional; defaulted via export.ResolvePaths
	CSVPath        string  // optional
	ProjectHome    string  // base for scratch and default outputs
	KeepScratch    bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSink routes feedback through the given sink.
func WithSink(s feedback.Sink) Option {
	return func(p *Pipeline) { p.sink = s }
}

// WithMetrics records run metrics on the given recorder.
func WithMetrics(r observability.Recorder) Option {
	return func(p *Pipeline) { p.metrics = r }
}

// WithWriter replaces the output writer.
func WithWriter(w *export.Writer) Option {
	return func(p *Pipeline) { p.writer = w }
}

// Pipeline executes extraction runs against an engine. It is single-shot
// synchronous: one run at a time, each raster processed fully before the
// next.
type Pipeline struct {
	engine  geoops.Engine
	sink    feedback.Sink
	metrics observability.Recorder
	writer  *export.Writer
}

// New constructs a pipeline over the given capability engine.
func New(engine geoops.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		engine:  engine,
		sink:    feedback.Nop{},
		metrics: observability.Nop{},
		writer:  &export.Writer{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run carries the mutable state of one execution.
type run struct {
	*Pipeline
	ctx      context.Context
	params   Params
	names    *naming.Registry
	progress int
	summary  Summary
}

// Run executes one extraction. The returned Summary is valid whenever the
// error is nil, including canceled and partially successful runs.
func (p *Pipeline) Run(ctx context.Context, params Params) (Summary, error) {
	r := &run{
		Pipeline: p,
		ctx:      ctx,
		params:   params,
		names:    naming.NewRegistry(),
		summary:  Summary{RunID: uuid.NewString()},
	}
	return r.execute()
}

func (r *run) execute() (Summary, error) {
	if err := r.validate(); err != nil {
		return Summary{}, err
	}
	r.sink.Info("Starting processing…")

	mask, err := r.openPolygon()
	if err != nil {
		return Summary{}, err
	}
	scratch, err := r.scratchDir()
	if err != nil {
		return Summary{}, err
	}
	if !r.params.KeepScratch {
		defer func() { _ = os.RemoveAll(scratch) }()
	}

	clipped, err := r.clipRasters(mask, scratch)
	if err != nil {
		return Summary{}, err
	}

	g, err := r.buildGrid(clipped)
	if err != nil {
		return Summary{}, err
	}
	g, err = r.maskGrid(g, mask)
	if err != nil {
		return Summary{}, err
	}
	r.metrics.ObservePoints(g.Len())

	g = r.sampleRasters(g, clipped)

	if err := r.writeOutputs(g); err != nil {
		return Summary{}, err
	}
	r.summary.Points = g.Len()
	r.report(100)
	r.sink.Info("Processing finished!")
	return r.summary, nil
}

// report forwards progress, keeping the sequence monotone.
func (r *run) report(percent int) {
	if percent > r.progress {
		r.progress = percent
		r.sink.Progress(percent)
	}
}

func (r *run) canceled() bool {
	return r.sink.Canceled() || r.ctx.Err() != nil
}

func (r *run) validate() error {
	if r.params.PolygonPath == "" {
		return fatal(StageValidate, "invalid field polygon", nil)
	}
	if len(r.params.RasterPaths) == 0 {
		return fatal(StageValidate, "no rasters selected", nil)
	}
	if r.params.BufferDistance < 0 {
		return fatal(StageValidate, fmt.Sprintf("negative buffer distance %g", r.params.BufferDistance), nil)
	}
	return nil
}

func (r *run) openPolygon() (geoops.Mask, error) {
	mask, err := r.engine.OpenPolygon(r.ctx, r.params.PolygonPath)
	if err != nil {
		return nil, fatal(StageValidate, "invalid field polygon", err)
	}
	return mask, nil
}

// scratchDir resolves the clipped raster directory under the project home,
// falling back to the user home.
func (r *run) scratchDir() (string, error) {
	base := r.params.ProjectHome
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fatal(StageClip, "no scratch location available", err)
		}
		base = home
	}
	dir := filepath.Join(base, scratchDirName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fatal(StageClip, "create scratch directory", err)
	}
	return dir, nil
}

// clipRasters crops each source to the field polygon, tolerating individual
// failures. Progress covers 0-30%.
func (r *run) clipRasters(mask geoops.Mask, scratch string) ([]string, error) {
	started := time.Now()
	var clipped []string
	total := len(r.params.RasterPaths)
	for i, src := range r.params.RasterPaths {
		if r.canceled() {
			r.summary.Canceled = true
			r.markRemaining(i, RasterSkipped)
			break
		}
		r.report(i * 30 / total)

		base := naming.BaseNameFromClip(src)
		outPath := filepath.Join(scratch, naming.ClipFileName(src))
		r.sink.Info(fmt.Sprintf("Clipping raster: %s", base))

		out, err := r.engine.ClipRaster(r.ctx, src, mask, outPath)
		if err != nil {
			r.sink.Warning(fmt.Sprintf("Error clipping %s: %v", base, err))
			r.metrics.CountRaster(observability.OutcomeClipFailed)
			r.summary.Rasters = append(r.summary.Rasters, RasterOutcome{Source: src, Name: base, Status: RasterClipFailed, Error: err.Error()})
			continue
		}
		r.metrics.CountRaster(observability.OutcomeClipped)
		clipped = append(clipped, out)
	}
	if len(clipped) == 0 {
		r.metrics.ObserveStage(string(StageClip), false, time.Since(started))
		return nil, fatal(StageClip, "no valid rasters after clipping", nil)
	}
	r.metrics.ObserveStage(string(StageClip), true, time.Since(started))
	return clipped, nil
}

// buildGrid derives the reference point grid from the first clipped raster:
// spacing equals the raster resolution, and the extent is re-centered so an
// integer number of cells covers the full raster. Any failure is fatal.
func (r *run) buildGrid(clipped []string) (*grid.Grid, error) {
	started := time.Now()
	ref, err := r.engine.OpenRaster(r.ctx, clipped[0])
	if err != nil {
		r.metrics.ObserveStage(string(StageGrid), false, time.Since(started))
		return nil, fatal(StageGrid, "error loading first clipped raster", err)
	}

	center := ref.Extent.Center()
	nx := int(ref.Extent.Width()/ref.ResX) + 1
	ny := int(ref.Extent.Height()/ref.ResY) + 1
	left := center.X - float64(nx)*ref.ResX/2
	bottom := center.Y - float64(ny)*ref.ResY/2
	extent := geoops.GridExtent(left, bottom, nx, ny, ref.ResX, ref.ResY)

	r.sink.Info("Creating point grid…")
	r.report(40)

	g, err := r.engine.GenerateGrid(r.ctx, extent, ref.ResX, ref.ResY, ref.CRS)
	if err != nil {
		r.metrics.ObserveStage(string(StageGrid), false, time.Since(started))
		return nil, fatal(StageGrid, "grid creation failed", err)
	}
	r.metrics.ObserveStage(string(StageGrid), true, time.Since(started))
	return g, nil
}

// maskGrid shrinks the polygon by the buffer distance when requested and
// clips the grid to the resulting mask. Buffer failure falls back to the
// unbuffered polygon; clip failure is fatal.
func (r *run) maskGrid(g *grid.Grid, mask geoops.Mask) (*grid.Grid, error) {
	started := time.Now()
	r.sink.Info("Applying internal buffer…")
	r.report(45)

	sampling := mask
	if r.params.BufferDistance > 0 {
		buffered, err := r.engine.BufferPolygon(r.ctx, mask, -r.params.BufferDistance, geoops.DefaultBufferParams())
		if err != nil {
			r.sink.Warning(fmt.Sprintf("Buffer failed: %v", err))
		} else {
			sampling = buffered
		}
	}

	r.sink.Info("Clipping grid to field boundary…")
	r.report(50)

	clipped, err := r.engine.ClipPoints(r.ctx, g, sampling)
	if err != nil {
		r.metrics.ObserveStage(string(StageMask), false, time.Since(started))
		return nil, fatal(StageMask, "grid clipping failed", err)
	}
	r.metrics.ObserveStage(string(StageMask), true, time.Since(started))
	return clipped, nil
}

// sampleRasters folds every clipped raster into the grid, threading the
// grid through each step. Progress covers 55-95%. Per-raster failures leave
// the grid unchanged and the loop moves on.
func (r *run) sampleRasters(g *grid.Grid, clipped []string) *grid.Grid {
	started := time.Now()
	r.sink.Info("Sampling rasters…")
	r.report(55)

	for i, path := range clipped {
		if r.canceled() {
			r.summary.Canceled = true
			r.markRemainingClipped(clipped[i:], RasterSkipped)
			break
		}
		r.report(55 + i*40/len(clipped))
		g = r.sampleOne(g, path, i)
	}
	r.metrics.ObserveStage(string(StageSample), true, time.Since(started))
	return g
}

// sampleOne performs the per-raster state machine: sample under a
// temporary column prefix, detect the new columns, order them by band
// suffix, and rename them to their final unique names in one edit session.
func (r *run) sampleOne(g *grid.Grid, path string, index int) *grid.Grid {
	fieldsBefore := g.Columns()
	finalBase := r.names.UniqueName(naming.BaseNameFromClip(path))
	tmpPrefix := fmt.Sprintf("tmp%d__", index)

	r.sink.Info(fmt.Sprintf("Extracting values from: %s", finalBase))

	sampled, err := r.engine.SamplePoints(r.ctx, g, path, tmpPrefix)
	if err != nil {
		r.sink.Warning(fmt.Sprintf("Error sampling %s: %v", finalBase, err))
		r.metrics.CountRaster(observability.OutcomeSampleFailed)
		r.summary.Rasters = append(r.summary.Rasters, RasterOutcome{Source: path, Name: finalBase, Status: RasterSampleFailed, Error: err.Error()})
		return g
	}
	g = sampled

	newCols := columnsWithPrefix(g.Columns(), tmpPrefix)
	if len(newCols) == 0 {
		// Defensive: the sampler dropped the prefix, fall back to set difference.
		newCols = columnDifference(g.Columns(), fieldsBefore)
	}
	sorted := naming.SortBySuffix(newCols)

	finalNames := make([]string, len(sorted))
	if len(sorted) <= 1 {
		for i := range sorted {
			finalNames[i] = finalBase
		}
	} else {
		for i := range sorted {
			finalNames[i] = r.names.UniqueName(fmt.Sprintf("%s_B%d", finalBase, i+1))
		}
	}

	session := g.StartEditing()
	for i, old := range sorted {
		session.RenameColumn(old, finalNames[i])
	}
	if err := session.Commit(); err != nil {
		r.sink.Warning(fmt.Sprintf("Error renaming fields for %s: %v", finalBase, err))
		r.metrics.CountRaster(observability.OutcomeRenameFailed)
		r.summary.Rasters = append(r.summary.Rasters, RasterOutcome{Source: path, Name: finalBase, Status: RasterRenameFailed, Columns: sorted, Error: err.Error()})
		return g
	}
	r.metrics.CountRaster(observability.OutcomeSampled)
	r.summary.Rasters = append(r.summary.Rasters, RasterOutcome{Source: path, Name: finalBase, Status: RasterSampled, Columns: finalNames})
	return g
}

// writeOutputs persists the final grid. Progress covers 95-100%.
func (r *run) writeOutputs(g *grid.Grid) error {
	started := time.Now()
	r.sink.Info("Writing final outputs…")
	r.report(95)

	gpkgPath, csvPath := export.ResolvePaths(
		r.params.GeoPackagePath, r.params.CSVPath, r.params.ProjectHome, r.params.PolygonPath)
	res, err := r.writer.Write(r.ctx, g, gpkgPath, csvPath, r.summary.RunID, r.sink)
	if err != nil {
		r.metrics.ObserveStage(string(StageWrite), false, time.Since(started))
		return fatal(StageWrite, "writing outputs failed", err)
	}
	r.summary.GeoPackagePath = res.GeoPackagePath
	r.summary.CSVPath = res.CSVPath
	r.summary.ArchivedKeys = res.ArchivedKeys
	r.metrics.ObserveStage(string(StageWrite), true, time.Since(started))
	return nil
}

func (r *run) markRemaining(from int, status RasterStatus) {
	for _, src := range r.params.RasterPaths[from:] {
		r.summary.Rasters = append(r.summary.Rasters, RasterOutcome{
			Source: src, Name: naming.BaseNameFromClip(src), Status: status,
		})
	}
}

func (r *run) markRemainingClipped(paths []string, status RasterStatus) {
	for _, path := range paths {
		r.summary.Rasters = append(r.summary.Rasters, RasterOutcome{
			Source: path, Name: naming.BaseNameFromClip(path), Status: status,
		})
	}
}

func columnsWithPrefix(cols []string, prefix string) []string {
	var out []string
	for _, c := range cols {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

func columnDifference(after, before []string) []string {
	seen := make(map[string]struct{}, len(before))
	for _, c := range before {
		seen[c] = struct{}{}
	}
	var out []string
	for _, c := range after {
		if _, ok := seen[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
