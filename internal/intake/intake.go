// Package intake turns a source file plus configuration into a persisted
// media record and a stored blob, enforcing collection invariants.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/princekumarofficial/media-service/internal/collections"
	"github.com/princekumarofficial/media-service/internal/disks"
	"github.com/princekumarofficial/media-service/internal/pathgen"
	"github.com/princekumarofficial/media-service/internal/storage"
	"github.com/princekumarofficial/media-service/internal/types"
)

// DefaultCollection is used when no collection is configured on a request
const DefaultCollection = "default"

// Config holds the environment-level knobs the pipeline depends on
type Config struct {
	// DefaultDisk is used when neither the request nor the collection
	// configures a disk
	DefaultDisk string

	// MaxFileSize rejects larger source files; zero or negative disables
	// the check
	MaxFileSize int64
}

// Pipeline orchestrates validation, collection lookup, record persistence
// and the physical blob write
type Pipeline struct {
	storage     storage.Storage
	disks       *disks.Registry
	collections *collections.Registry
	paths       pathgen.Generator
	cfg         Config
}

// New creates an intake pipeline
func New(store storage.Storage, diskRegistry *disks.Registry, collectionRegistry *collections.Registry, paths pathgen.Generator, cfg Config) *Pipeline {
	return &Pipeline{
		storage:     store,
		disks:       diskRegistry,
		collections: collectionRegistry,
		paths:       paths,
		cfg:         cfg,
	}
}

// Request accumulates intake configuration before Store is called. Setter
// order does not matter; a later call supersedes an earlier call of the
// same field.
type Request struct {
	pipeline *Pipeline

	sourcePath       string
	originalName     string
	collection       string
	disk             string
	name             string
	fileName         string
	curator          types.Curator
	properties       map[string]any
	order            *int
	preserveOriginal bool
}

// FromPath starts an intake request for the file at path
func (p *Pipeline) FromPath(path string) *Request {
	return &Request{
		pipeline:     p,
		sourcePath:   path,
		originalName: filepath.Base(path),
		collection:   DefaultCollection,
	}
}

// FromFile starts an intake request for an already-uploaded file whose
// original name differs from its temporary path
func (p *Pipeline) FromFile(path, originalName string) *Request {
	r := p.FromPath(path)
	r.originalName = originalName
	return r
}

// ToCollection sets the target collection
func (r *Request) ToCollection(name string) *Request {
	r.collection = name
	return r
}

// UsingDisk sets an explicit disk override. It fails immediately when the
// disk is not configured, rather than at store time.
func (r *Request) UsingDisk(name string) (*Request, error) {
	if !r.pipeline.disks.Has(name) {
		return nil, &types.DiskNotConfiguredError{Disk: name}
	}
	r.disk = name
	return r, nil
}

// WithName sets the display name; the default derives from the source
// file's base name without extension
func (r *Request) WithName(name string) *Request {
	r.name = name
	return r
}

// WithFileName sets the stored file name; it is sanitized at store time
func (r *Request) WithFileName(fileName string) *Request {
	r.fileName = fileName
	return r
}

// ForCurator assigns the record to a curator; without it the record is
// anonymous
func (r *Request) ForCurator(curator types.Curator) *Request {
	r.curator = curator
	return r
}

// WithProperties sets the custom properties mapping
func (r *Request) WithProperties(properties map[string]any) *Request {
	r.properties = properties
	return r
}

// WithOrder sets an explicit order index
func (r *Request) WithOrder(order int) *Request {
	r.order = &order
	return r
}

// PreserveOriginal keeps the source file after a successful store
func (r *Request) PreserveOriginal() *Request {
	r.preserveOriginal = true
	return r
}

// Store runs the intake transaction and returns the persisted record.
// Validation failures produce zero side effects; failures after the record
// insert roll the whole unit of work back, including a compensating delete
// of any blob already written.
func (r *Request) Store(ctx context.Context) (*types.MediaRecord, error) {
	p := r.pipeline

	info, err := os.Stat(r.sourcePath)
	if err != nil || !info.Mode().IsRegular() {
		return nil, &types.FileNotFoundError{Path: r.sourcePath}
	}

	size := info.Size()
	if p.cfg.MaxFileSize > 0 && size > p.cfg.MaxFileSize {
		return nil, &types.FileTooLargeError{Size: size, Max: p.cfg.MaxFileSize}
	}

	fileName := r.fileName
	if fileName == "" {
		fileName = r.originalName
	}
	fileName = SanitizeFileName(fileName)
	// The denylist check runs on the sanitized name, which is also the
	// name that gets stored
	if hasDeniedExtension(fileName) {
		return nil, &types.UnsafeFileNameError{Name: fileName}
	}

	name := r.name
	if name == "" {
		name = strings.TrimSuffix(r.originalName, filepath.Ext(r.originalName))
	}

	definition, registered := p.collections.Get(r.collection)
	if registered {
		if definition.CuratorType != "" && (r.curator == nil || r.curator.CuratorType() != definition.CuratorType) {
			return nil, &types.CollectionRestrictedError{Collection: r.collection, CuratorType: definition.CuratorType}
		}
		if r.curator == nil && !definition.AnonymousAllowed {
			return nil, &types.AnonymousNotAllowedError{Collection: r.collection}
		}
	}

	diskName := r.disk
	if diskName == "" && registered {
		diskName = definition.Disk
	}
	if diskName == "" {
		diskName = p.cfg.DefaultDisk
	}
	// Validate the effective disk before touching the database, so
	// inherited defaults fail as fast as explicit overrides
	disk, err := p.disks.Get(diskName)
	if err != nil {
		return nil, err
	}

	properties := r.properties
	if properties == nil {
		properties = map[string]any{}
	}

	now := time.Now().UTC()
	record := &types.MediaRecord{
		ID:               uuid.New().String(),
		Name:             name,
		FileName:         fileName,
		CollectionName:   r.collection,
		Disk:             diskName,
		MimeType:         detectMimeType(r.sourcePath, fileName),
		Size:             size,
		CustomProperties: properties,
		OrderColumn:      r.order,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if r.curator != nil {
		record.CuratorID = r.curator.CuratorID()
		record.CuratorType = r.curator.CuratorType()
	}

	var slot *storage.SingleFileSlot
	if registered && definition.IsSingleFile && r.curator != nil {
		slot = &storage.SingleFileSlot{
			CuratorID:      record.CuratorID,
			CuratorType:    record.CuratorType,
			CollectionName: record.CollectionName,
		}
	}

	path := p.paths.Path(record)
	blobWritten := false
	replaced, err := p.storage.SaveMedia(ctx, record, slot, func(record *types.MediaRecord) error {
		source, err := os.Open(r.sourcePath)
		if err != nil {
			return fmt.Errorf("failed to open source file: %w", err)
		}
		defer source.Close()

		if err := disk.Put(ctx, path, source, record.Size, record.MimeType); err != nil {
			return err
		}
		blobWritten = true
		return nil
	})
	if err != nil {
		if blobWritten {
			// The transaction failed after the blob write; remove the
			// orphaned blob so no object exists without a record
			if cleanupErr := disk.Delete(ctx, path); cleanupErr != nil {
				slog.Error("Failed to clean up blob after aborted store",
					slog.String("disk", diskName),
					slog.String("path", path),
					slog.String("error", cleanupErr.Error()))
			}
		}
		return nil, err
	}

	// Blobs of replaced single-file records are removed only after the
	// new record is committed
	for i := range replaced {
		if err := p.deleteBlob(ctx, &replaced[i]); err != nil {
			slog.Warn("Failed to delete replaced media blob",
				slog.String("media_id", replaced[i].ID),
				slog.String("error", err.Error()))
		}
	}

	if !r.preserveOriginal {
		if err := os.Remove(r.sourcePath); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove source file after store",
				slog.String("path", r.sourcePath),
				slog.String("error", err.Error()))
		}
	}

	return record, nil
}

// Remove deletes the record and its backing blob. Removal is idempotent:
// a record or blob that is already gone does not fail the removal.
func (p *Pipeline) Remove(ctx context.Context, id string) error {
	record, err := p.storage.GetMedia(ctx, id)
	if errors.Is(err, storage.ErrMediaNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := p.storage.DeleteMedia(ctx, id); err != nil {
		if errors.Is(err, storage.ErrMediaNotFound) {
			return nil
		}
		return err
	}

	if err := p.deleteBlob(ctx, record); err != nil {
		slog.Warn("Failed to delete media blob",
			slog.String("media_id", record.ID),
			slog.String("error", err.Error()))
	}
	return nil
}

// ClearCollection removes every record the curator owns in the collection
// together with the backing blobs, and reports how many were removed.
// An empty collection name clears all of the curator's media.
func (p *Pipeline) ClearCollection(ctx context.Context, curator types.Curator, collection string) (int, error) {
	deleted, err := p.storage.DeleteMediaForCurator(ctx, curator.CuratorID(), curator.CuratorType(), collection)
	if err != nil {
		return 0, err
	}

	for i := range deleted {
		if err := p.deleteBlob(ctx, &deleted[i]); err != nil {
			slog.Warn("Failed to delete media blob",
				slog.String("media_id", deleted[i].ID),
				slog.String("error", err.Error()))
		}
	}
	return len(deleted), nil
}

// Reassign moves a record to another curator, collection or order index.
// Curator identity stays all-or-nothing: a record is curated or anonymous,
// never half of each.
func (p *Pipeline) Reassign(ctx context.Context, id string, curator types.Curator, collection string, order *int) (*types.MediaRecord, error) {
	record, err := p.storage.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}

	if curator != nil {
		record.CuratorID = curator.CuratorID()
		record.CuratorType = curator.CuratorType()
	} else {
		record.CuratorID = ""
		record.CuratorType = ""
	}
	if collection != "" {
		record.CollectionName = collection
	}
	if order != nil {
		record.OrderColumn = order
	}

	if err := p.storage.UpdateMedia(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (p *Pipeline) deleteBlob(ctx context.Context, record *types.MediaRecord) error {
	disk, err := p.disks.Get(record.Disk)
	if err != nil {
		return err
	}
	return disk.Delete(ctx, p.paths.Path(record))
}

// deniedExtensions lists executable script extensions that must never be
// stored, compared case-insensitively against the sanitized file name
var deniedExtensions = []string{
	".php", ".php3", ".php4", ".php5", ".php7", ".php8",
	".phtml", ".phar", ".pht", ".phps",
}

// SanitizeFileName strips control characters and replaces '#', '/', '\'
// and spaces with dashes. Sanitizing an already-sanitized name yields the
// same name.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, c := range name {
		switch {
		case c < 0x20 || c == 0x7f:
			// drop control characters
		case c == '#' || c == '/' || c == '\\' || c == ' ':
			b.WriteByte('-')
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func hasDeniedExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range deniedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func detectMimeType(path, fileName string) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(fileName)); mimeType != "" {
		return mimeType
	}

	// Fall back to sniffing the first 512 bytes
	f, err := os.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()

	buffer := make([]byte, 512)
	n, err := f.Read(buffer)
	if err != nil && n == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(buffer[:n])
}
