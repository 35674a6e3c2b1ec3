package disks

import (
	"context"
	"errors"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/princekumarofficial/media-service/internal/types"
)

// ErrTemporaryURLUnsupported is returned by disks that cannot produce
// time-limited URLs
var ErrTemporaryURLUnsupported = errors.New("disk does not support temporary URLs")

// Disk is one named physical storage backend. Paths are slash-separated
// and relative to the disk root.
type Disk interface {
	// Put streams size bytes from r into the object at path
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error

	// Delete removes the object at path. Deleting a missing object is a no-op.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for the object at path
	URL(path string) (string, error)

	// TemporaryURL returns a time-limited URL for the object at path.
	// Driver-specific request parameters are passed through opaquely.
	TemporaryURL(ctx context.Context, path string, expiry time.Duration, opts url.Values) (string, error)
}

// Registry maps disk names to their backends. Disks are registered once
// at startup.
type Registry struct {
	mu    sync.RWMutex
	disks map[string]Disk
}

// NewRegistry creates an empty disk registry
func NewRegistry() *Registry {
	return &Registry{
		disks: make(map[string]Disk),
	}
}

// Add registers a disk under name, replacing any prior disk with that name
func (r *Registry) Add(name string, disk Disk) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.disks[name] = disk
}

// Get returns the disk registered under name
func (r *Registry) Get(name string) (Disk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	disk, ok := r.disks[name]
	if !ok {
		return nil, &types.DiskNotConfiguredError{Disk: name}
	}
	return disk, nil
}

// Has reports whether a disk is registered under name
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.disks[name]
	return ok
}
