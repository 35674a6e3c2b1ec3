package urlgen

import (
	"context"
	"net/url"
	"time"

	"github.com/princekumarofficial/media-service/internal/disks"
	"github.com/princekumarofficial/media-service/internal/pathgen"
	"github.com/princekumarofficial/media-service/internal/types"
)

// Generator resolves media records to access URLs by delegating to the
// record's disk. Disk errors propagate unchanged; there is no retry or
// fallback here.
type Generator struct {
	disks *disks.Registry
	paths pathgen.Generator
}

// New creates a URL generator over the given disk registry and path generator
func New(diskRegistry *disks.Registry, paths pathgen.Generator) *Generator {
	return &Generator{
		disks: diskRegistry,
		paths: paths,
	}
}

// URL returns the public URL for the record
func (g *Generator) URL(record *types.MediaRecord) (string, error) {
	disk, err := g.disks.Get(record.Disk)
	if err != nil {
		return "", err
	}
	return disk.URL(g.paths.Path(record))
}

// TemporaryURL returns a time-limited URL for the record, passing opts
// through to the disk opaquely
func (g *Generator) TemporaryURL(ctx context.Context, record *types.MediaRecord, expiry time.Duration, opts url.Values) (string, error) {
	disk, err := g.disks.Get(record.Disk)
	if err != nil {
		return "", err
	}
	return disk.TemporaryURL(ctx, g.paths.Path(record), expiry, opts)
}
