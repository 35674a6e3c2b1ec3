package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/princekumarofficial/media-service/internal/types"
)

// MemoryStore is an in-memory Storage implementation used in tests
type MemoryStore struct {
	mu      sync.Mutex
	records []types.MediaRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveMedia(ctx context.Context, record *types.MediaRecord, replace *SingleFileSlot, write WriteFunc) ([]types.MediaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var replaced []types.MediaRecord
	kept := s.records[:0:0]
	if replace != nil {
		for _, existing := range s.records {
			if existing.CollectionName == replace.CollectionName &&
				existing.CuratorType == replace.CuratorType &&
				existing.CuratorID == replace.CuratorID {
				replaced = append(replaced, existing)
				continue
			}
			kept = append(kept, existing)
		}
	} else {
		kept = append(kept, s.records...)
	}
	kept = append(kept, *record)

	if write != nil {
		if err := write(record); err != nil {
			// abort the unit of work; nothing becomes visible
			return nil, err
		}
	}

	s.records = kept
	return replaced, nil
}

func (s *MemoryStore) GetMedia(ctx context.Context, id string) (*types.MediaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			record := s.records[i]
			return &record, nil
		}
	}
	return nil, ErrMediaNotFound
}

func (s *MemoryStore) ListMedia(ctx context.Context, curatorID, curatorType, collection string) ([]types.MediaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []types.MediaRecord
	for _, record := range s.records {
		if record.CuratorID != curatorID || record.CuratorType != curatorType {
			continue
		}
		if collection != "" && record.CollectionName != collection {
			continue
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].OrderColumn, records[j].OrderColumn
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		case b != nil:
			return false
		default:
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
	})
	return records, nil
}

func (s *MemoryStore) DeleteMedia(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return ErrMediaNotFound
}

func (s *MemoryStore) DeleteMediaForCurator(ctx context.Context, curatorID, curatorType, collection string) ([]types.MediaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted []types.MediaRecord
	kept := s.records[:0:0]
	for _, record := range s.records {
		if record.CuratorID == curatorID && record.CuratorType == curatorType &&
			(collection == "" || record.CollectionName == collection) {
			deleted = append(deleted, record)
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept
	return deleted, nil
}

func (s *MemoryStore) UpdateMedia(ctx context.Context, record *types.MediaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == record.ID {
			record.UpdatedAt = time.Now().UTC()
			s.records[i] = *record
			return nil
		}
	}
	return ErrMediaNotFound
}

// Count returns the number of stored records
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}
