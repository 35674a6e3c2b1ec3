package disks

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/princekumarofficial/media-service/internal/types"
)

func TestLocalPutAndDelete(t *testing.T) {
	disk, err := NewLocal(t.TempDir(), "http://localhost/media")
	if err != nil {
		t.Fatalf("Failed to create local disk: %v", err)
	}

	ctx := context.Background()
	content := []byte("hello media")

	err = disk.Put(ctx, "abc/doc.txt", bytes.NewReader(content), int64(len(content)), "text/plain")
	if err != nil {
		t.Fatalf("Failed to put object: %v", err)
	}

	if !disk.Exists("abc/doc.txt") {
		t.Fatal("Expected object to exist after put")
	}

	stored, err := os.ReadFile(filepath.Join(disk.root, "abc", "doc.txt"))
	if err != nil {
		t.Fatalf("Failed to read stored object: %v", err)
	}
	if !bytes.Equal(stored, content) {
		t.Errorf("Stored content mismatch: got %q", stored)
	}

	if err := disk.Delete(ctx, "abc/doc.txt"); err != nil {
		t.Fatalf("Failed to delete object: %v", err)
	}
	if disk.Exists("abc/doc.txt") {
		t.Fatal("Expected object to be gone after delete")
	}

	// Deleting a second time is a no-op that still reports success
	if err := disk.Delete(ctx, "abc/doc.txt"); err != nil {
		t.Errorf("Expected repeated delete to succeed, got %v", err)
	}
}

func TestLocalPutLeavesNoPartialObject(t *testing.T) {
	disk, err := NewLocal(t.TempDir(), "http://localhost/media")
	if err != nil {
		t.Fatalf("Failed to create local disk: %v", err)
	}

	reader := &failingReader{}
	err = disk.Put(context.Background(), "abc/doc.txt", reader, 10, "text/plain")
	if err == nil {
		t.Fatal("Expected put to fail")
	}

	if disk.Exists("abc/doc.txt") {
		t.Error("Expected no object after failed put")
	}
	if _, err := os.Stat(filepath.Join(disk.root, "abc", "doc.txt.tmp")); !os.IsNotExist(err) {
		t.Error("Expected temp file to be cleaned up after failed put")
	}
}

func TestLocalURL(t *testing.T) {
	disk, err := NewLocal(t.TempDir(), "http://localhost/media/")
	if err != nil {
		t.Fatalf("Failed to create local disk: %v", err)
	}

	u, err := disk.URL("abc/doc.txt")
	if err != nil {
		t.Fatalf("Failed to build URL: %v", err)
	}
	if u != "http://localhost/media/abc/doc.txt" {
		t.Errorf("Unexpected URL: %s", u)
	}
}

func TestLocalTemporaryURLUnsupported(t *testing.T) {
	disk, err := NewLocal(t.TempDir(), "http://localhost/media")
	if err != nil {
		t.Fatalf("Failed to create local disk: %v", err)
	}

	_, err = disk.TemporaryURL(context.Background(), "abc/doc.txt", 0, nil)
	if !errors.Is(err, ErrTemporaryURLUnsupported) {
		t.Errorf("Expected ErrTemporaryURLUnsupported, got %v", err)
	}
}

func TestRegistryGetMissing(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get("nonexistent")
	var diskErr *types.DiskNotConfiguredError
	if !errors.As(err, &diskErr) {
		t.Fatalf("Expected DiskNotConfiguredError, got %v", err)
	}
	if diskErr.Disk != "nonexistent" {
		t.Errorf("Expected disk name in error, got %s", diskErr.Disk)
	}
}

func TestRegistryAddAndGet(t *testing.T) {
	registry := NewRegistry()
	disk, err := NewLocal(t.TempDir(), "http://localhost/media")
	if err != nil {
		t.Fatalf("Failed to create local disk: %v", err)
	}

	registry.Add("local", disk)

	if !registry.Has("local") {
		t.Fatal("Expected disk to be registered")
	}
	got, err := registry.Get("local")
	if err != nil {
		t.Fatalf("Failed to get disk: %v", err)
	}
	if got != Disk(disk) {
		t.Error("Expected registered disk instance")
	}
}

type failingReader struct{}

func (r *failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("read failed")
}
