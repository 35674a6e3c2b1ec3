package storage

import (
	"context"
	"errors"

	"github.com/princekumarofficial/media-service/internal/types"
)

// ErrMediaNotFound is returned when a media record does not exist
var ErrMediaNotFound = errors.New("media record not found")

// SingleFileSlot identifies the (curator, collection) tuple that may hold
// at most one media record
type SingleFileSlot struct {
	CuratorID      string
	CuratorType    string
	CollectionName string
}

// WriteFunc runs inside the SaveMedia transaction after the record has
// been inserted. Returning an error aborts the whole unit of work.
type WriteFunc func(record *types.MediaRecord) error

type Storage interface {
	// SaveMedia persists the record in one transaction. When replace is
	// non-nil, every record occupying the slot is deleted before the insert
	// and returned so callers can clean up the backing blobs. write, if
	// non-nil, runs inside the transaction; its failure rolls everything back.
	SaveMedia(ctx context.Context, record *types.MediaRecord, replace *SingleFileSlot, write WriteFunc) ([]types.MediaRecord, error)

	// GetMedia returns the record with the given id
	GetMedia(ctx context.Context, id string) (*types.MediaRecord, error)

	// ListMedia returns the curator's records, newest last, ordered by
	// order_column when set. Empty collection means all collections.
	ListMedia(ctx context.Context, curatorID, curatorType, collection string) ([]types.MediaRecord, error)

	// DeleteMedia removes the record with the given id
	DeleteMedia(ctx context.Context, id string) error

	// DeleteMediaForCurator removes every record the curator owns in the
	// collection (all collections when empty) and returns the deleted
	// records so callers can clean up the backing blobs
	DeleteMediaForCurator(ctx context.Context, curatorID, curatorType, collection string) ([]types.MediaRecord, error)

	// UpdateMedia re-assigns the record's curator, collection and order
	UpdateMedia(ctx context.Context, record *types.MediaRecord) error
}
