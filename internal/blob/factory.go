package blob

import (
	"context"
	"fmt"

	"fieldsampler/internal/infra/blob/fs"
	"fieldsampler/internal/infra/blob/memory"
	"fieldsampler/internal/infra/blob/s3"
)

// Options selects and parameterizes an artifact storage backend.
type Options struct {
	Driver Driver
	FSRoot string    // driver=fs: directory root (default ./artifacts)
	S3     s3.Config // driver=s3
}

// Open constructs the configured artifact store. An empty driver selects
// the filesystem backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return fs.New(opts.FSRoot)
	case DriverS3:
		return s3.New(ctx, opts.S3)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
