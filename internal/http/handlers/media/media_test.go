package media

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/princekumarofficial/media-service/internal/cache"
	"github.com/princekumarofficial/media-service/internal/collections"
	"github.com/princekumarofficial/media-service/internal/disks"
	"github.com/princekumarofficial/media-service/internal/http/middleware"
	"github.com/princekumarofficial/media-service/internal/intake"
	"github.com/princekumarofficial/media-service/internal/pathgen"
	"github.com/princekumarofficial/media-service/internal/storage"
	"github.com/princekumarofficial/media-service/internal/types"
	"github.com/princekumarofficial/media-service/internal/urlgen"
)

// noopPublisher swallows events in handler tests
type noopPublisher struct{}

func (noopPublisher) PublishMediaStored(record *types.MediaRecord) error  { return nil }
func (noopPublisher) PublishMediaRemoved(record *types.MediaRecord) error { return nil }

func setupHandlers(t *testing.T) (*MediaHandlers, *storage.MemoryStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	store := storage.NewMemoryStore()
	diskRegistry := disks.NewRegistry()
	local, err := disks.NewLocal(t.TempDir(), "http://localhost/media")
	if err != nil {
		t.Fatalf("Failed to create local disk: %v", err)
	}
	diskRegistry.Add("local", local)

	paths := pathgen.Default{}
	pipeline := intake.New(store, diskRegistry, collections.NewRegistry(), paths, intake.Config{
		DefaultDisk: "local",
	})
	urls := urlgen.New(diskRegistry, paths)
	cacheService := cache.NewCacheService(store, redisClient)

	return NewMediaHandlers(pipeline, cacheService, urls, noopPublisher{}), store
}

// uploadRequest builds an authenticated multipart POST with one file plus
// the given extra form fields
func uploadRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "doc.txt")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte("0123456789")); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("Failed to write form field: %v", err)
		}
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/media", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	curator := types.CuratorRef{ID: "42", Type: "user"}
	return req.WithContext(context.WithValue(req.Context(), middleware.CuratorKey, curator))
}

func TestUploadStoresFile(t *testing.T) {
	handlers, store := setupHandlers(t)

	rec := httptest.NewRecorder()
	handlers.Upload().ServeHTTP(rec, uploadRequest(t, map[string]string{
		"order":      "3",
		"properties": `{"source":"import"}`,
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.Count() != 1 {
		t.Errorf("Expected one stored record, got %d", store.Count())
	}

	var resp struct {
		Data MediaResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Data.OrderColumn == nil || *resp.Data.OrderColumn != 3 {
		t.Errorf("Expected order 3, got %v", resp.Data.OrderColumn)
	}
	if resp.Data.Properties["source"] != "import" {
		t.Errorf("Expected custom property, got %v", resp.Data.Properties)
	}
}

func TestUploadRejectsMalformedOrder(t *testing.T) {
	handlers, store := setupHandlers(t)

	rec := httptest.NewRecorder()
	handlers.Upload().ServeHTTP(rec, uploadRequest(t, map[string]string{
		"order": "third",
	}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for malformed order, got %d", rec.Code)
	}
	if store.Count() != 0 {
		t.Errorf("Expected no stored record, got %d", store.Count())
	}
}

func TestUploadRejectsMalformedProperties(t *testing.T) {
	handlers, store := setupHandlers(t)

	// Valid JSON that is not an object must fail, same as invalid JSON
	for _, properties := range []string{`[1,2]`, `{"broken`} {
		rec := httptest.NewRecorder()
		handlers.Upload().ServeHTTP(rec, uploadRequest(t, map[string]string{
			"properties": properties,
		}))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for properties %q, got %d", properties, rec.Code)
		}
	}
	if store.Count() != 0 {
		t.Errorf("Expected no stored record, got %d", store.Count())
	}
}
