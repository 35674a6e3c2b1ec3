package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/princekumarofficial/media-service/internal/storage"
	"github.com/princekumarofficial/media-service/internal/types"
)

// setupTestRedis creates an in-memory Redis server for testing
func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
		DB:   0,
	})

	// Test connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Failed to connect to test Redis: %v", err)
	}

	cleanup := func() {
		redisClient.Close()
		mr.Close()
	}

	return redisClient, cleanup
}

func seedRecord(t *testing.T, store *storage.MemoryStore, id, curatorID, curatorType, collection string) {
	t.Helper()

	record := &types.MediaRecord{
		ID:             id,
		Name:           "doc",
		FileName:       "doc.txt",
		CollectionName: collection,
		Disk:           "local",
		CuratorID:      curatorID,
		CuratorType:    curatorType,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if _, err := store.SaveMedia(context.Background(), record, nil, nil); err != nil {
		t.Fatalf("Failed to seed record: %v", err)
	}
}

func TestListMediaCaches(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	store := storage.NewMemoryStore()
	seedRecord(t, store, "m1", "42", "user", "gallery")

	cache := NewCacheService(store, redisClient)
	ctx := context.Background()

	records, err := cache.ListMedia(ctx, "42", "user", "gallery")
	if err != nil {
		t.Fatalf("Failed to list media: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	// A record added behind the cache's back is not visible until the
	// listing is invalidated
	seedRecord(t, store, "m2", "42", "user", "gallery")

	records, err = cache.ListMedia(ctx, "42", "user", "gallery")
	if err != nil {
		t.Fatalf("Failed to list media: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected cached listing of 1 record, got %d", len(records))
	}

	cache.InvalidateCuratorLists(ctx, "42", "user")

	records, err = cache.ListMedia(ctx, "42", "user", "gallery")
	if err != nil {
		t.Fatalf("Failed to list media: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records after invalidation, got %d", len(records))
	}
}

func TestGetMediaCachesAndInvalidates(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	store := storage.NewMemoryStore()
	seedRecord(t, store, "m1", "42", "user", "gallery")

	cache := NewCacheService(store, redisClient)
	ctx := context.Background()

	record, err := cache.GetMedia(ctx, "m1")
	if err != nil {
		t.Fatalf("Failed to get media: %v", err)
	}
	if record.ID != "m1" {
		t.Fatalf("Expected record m1, got %s", record.ID)
	}

	// Deleting behind the cache keeps serving the cached record until
	// invalidated
	if err := store.DeleteMedia(ctx, "m1"); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}

	if _, err := cache.GetMedia(ctx, "m1"); err != nil {
		t.Fatalf("Expected cached record, got %v", err)
	}

	cache.InvalidateMedia(ctx, "m1")

	if _, err := cache.GetMedia(ctx, "m1"); err != storage.ErrMediaNotFound {
		t.Fatalf("Expected ErrMediaNotFound after invalidation, got %v", err)
	}
}
