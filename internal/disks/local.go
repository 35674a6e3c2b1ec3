package disks

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Local stores objects under a root directory on the local filesystem
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates a local disk rooted at root, creating the directory
// if it does not exist. baseURL is prepended to object paths by URL.
func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create disk root %s: %w", root, err)
	}

	return &Local{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Put writes the object via a temp file and an atomic rename so a failed
// write never leaves a partial object at the target path
func (l *Local) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	fullPath := l.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	tmpPath := fullPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write object: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync object: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close object: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename object into place: %w", err)
	}

	return nil
}

// Delete removes the object at path. A missing object is not an error.
func (l *Local) Delete(ctx context.Context, path string) error {
	err := os.Remove(l.fullPath(path))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	return nil
}

// URL joins the configured base URL with the object path
func (l *Local) URL(path string) (string, error) {
	return l.baseURL + "/" + strings.TrimLeft(path, "/"), nil
}

// TemporaryURL is not supported for local disks
func (l *Local) TemporaryURL(ctx context.Context, path string, expiry time.Duration, opts url.Values) (string, error) {
	return "", ErrTemporaryURLUnsupported
}

// Exists reports whether an object is present at path
func (l *Local) Exists(path string) bool {
	_, err := os.Stat(l.fullPath(path))
	return err == nil
}

func (l *Local) fullPath(path string) string {
	return filepath.Join(l.root, filepath.FromSlash(path))
}
