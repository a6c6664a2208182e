package pipeline

// RasterStatus classifies how an input raster fared.
type RasterStatus string

const (
	RasterSampled      RasterStatus = "sampled"
	RasterClipFailed   RasterStatus = "clip_failed"
	RasterSampleFailed RasterStatus = "sample_failed"
	RasterRenameFailed RasterStatus = "rename_failed"
	RasterSkipped      RasterStatus = "skipped" // not reached before cancellation
)

// RasterOutcome records the fate of one input raster.
type RasterOutcome struct {
	Source  string       `json:"source"`
	Name    string       `json:"name"`
	Status  RasterStatus `json:"status"`
	Columns []string     `json:"columns,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Summary is the result of a run: where the outputs landed and what
// happened to each input. It is returned even after cooperative
// cancellation, describing the partial work that was kept.
type Summary struct {
	RunID          string          `json:"run_id"`
	GeoPackagePath string          `json:"geopackage_path"`
	CSVPath        string          `json:"csv_path"`
	Points         int             `json:"points"`
	Rasters        []RasterOutcome `json:"rasters"`
	ArchivedKeys   []string        `json:"archived_keys,omitempty"`
	Canceled       bool            `json:"canceled,omitempty"`
}
