// Package blob abstracts artifact storage for pipeline products: written
// GeoPackage/CSV outputs and retained clipped rasters. Backends live under
// internal/infra/blob; everything else depends on the Store interface only.
package blob

import (
	"fieldsampler/internal/blob/core"
)

type (
	// Driver identifies an artifact storage backend.
	Driver = core.Driver
	// PutOptions configures an artifact write.
	PutOptions = core.PutOptions
	// Info describes stored artifact metadata.
	Info = core.Info
	// Store is the interface artifact backends implement.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem backend.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is an S3-compatible backend.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test backend.
	DriverMemory = core.DriverMemory
)

// ErrNotFound indicates the requested artifact does not exist.
var ErrNotFound = core.ErrNotFound
