package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/princekumarofficial/media-service/internal/storage"
	"github.com/princekumarofficial/media-service/internal/types"
)

// CacheService wraps storage reads with Redis caching
type CacheService struct {
	storage storage.Storage
	redis   *redis.Client
}

// NewCacheService creates a new cache service
func NewCacheService(store storage.Storage, redisClient *redis.Client) *CacheService {
	return &CacheService{
		storage: store,
		redis:   redisClient,
	}
}

// Cache key patterns
const (
	MediaListKey = "media:list:%s:%s" // media:list:curatorKey:collection
	MediaKey     = "media:%s"         // media:mediaID
)

// Cache durations
const (
	MediaListCacheDuration = 60 * time.Second // listings change on every store/delete
	MediaCacheDuration     = 10 * time.Minute // individual records are immutable apart from re-assignment
)

// ListMedia returns the curator's cached media listing or fetches from storage
func (c *CacheService) ListMedia(ctx context.Context, curatorID, curatorType, collection string) ([]types.MediaRecord, error) {
	key := fmt.Sprintf(MediaListKey, types.CuratorKey(curatorID, curatorType), collection)

	// Try cache first
	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var records []types.MediaRecord
		if err := json.Unmarshal([]byte(cached), &records); err == nil {
			return records, nil
		}
	}

	// Cache miss - fetch from storage
	records, err := c.storage.ListMedia(ctx, curatorID, curatorType, collection)
	if err != nil {
		return nil, err
	}

	// Cache the result
	data, _ := json.Marshal(records)
	c.redis.Set(ctx, key, data, MediaListCacheDuration)

	return records, nil
}

// GetMedia returns a cached media record or fetches from storage
func (c *CacheService) GetMedia(ctx context.Context, id string) (*types.MediaRecord, error) {
	key := fmt.Sprintf(MediaKey, id)

	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var record types.MediaRecord
		if err := json.Unmarshal([]byte(cached), &record); err == nil {
			return &record, nil
		}
	}

	record, err := c.storage.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(record)
	c.redis.Set(ctx, key, data, MediaCacheDuration)

	return record, nil
}

// InvalidateCuratorLists drops every cached listing for the curator. Called
// after a store or removal changes what the curator owns.
func (c *CacheService) InvalidateCuratorLists(ctx context.Context, curatorID, curatorType string) {
	pattern := fmt.Sprintf(MediaListKey, types.CuratorKey(curatorID, curatorType), "*")

	keys, err := c.redis.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	c.redis.Del(ctx, keys...)
}

// InvalidateMedia drops the cached record
func (c *CacheService) InvalidateMedia(ctx context.Context, id string) {
	c.redis.Del(ctx, fmt.Sprintf(MediaKey, id))
}
