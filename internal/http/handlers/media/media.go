package media

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/princekumarofficial/media-service/internal/cache"
	"github.com/princekumarofficial/media-service/internal/events"
	"github.com/princekumarofficial/media-service/internal/http/middleware"
	"github.com/princekumarofficial/media-service/internal/intake"
	"github.com/princekumarofficial/media-service/internal/storage"
	"github.com/princekumarofficial/media-service/internal/types"
	"github.com/princekumarofficial/media-service/internal/urlgen"
	"github.com/princekumarofficial/media-service/internal/utils/response"
)

const maxMultipartMemory = 32 << 20 // 32 MiB before spilling to disk

type MediaHandlers struct {
	pipeline *intake.Pipeline
	cache    *cache.CacheService
	urls     *urlgen.Generator
	events   events.Publisher
}

// UploadRequest carries the multipart form fields accompanying the file
type UploadRequest struct {
	Collection string `validate:"omitempty,max=255"`
	Disk       string `validate:"omitempty,max=64"`
	Name       string `validate:"omitempty,max=255"`
	FileName   string `validate:"omitempty,max=255"`
	Properties string `validate:"omitempty,json"`
}

// MediaResponse is the wire representation of a stored record
type MediaResponse struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	FileName       string         `json:"file_name"`
	CollectionName string         `json:"collection_name"`
	Disk           string         `json:"disk"`
	MimeType       string         `json:"mime_type"`
	Size           int64          `json:"size"`
	Properties     map[string]any `json:"custom_properties,omitempty"`
	OrderColumn    *int           `json:"order_column,omitempty"`
	URL            string         `json:"url,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// NewMediaHandlers creates a new media handlers instance
func NewMediaHandlers(pipeline *intake.Pipeline, cacheService *cache.CacheService, urls *urlgen.Generator, publisher events.Publisher) *MediaHandlers {
	return &MediaHandlers{
		pipeline: pipeline,
		cache:    cacheService,
		urls:     urls,
		events:   publisher,
	}
}

// Upload stores an uploaded file as a media record owned by the caller
// @Summary Upload a media file
// @Description Store a file into a collection for the authenticated curator
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to store"
// @Param collection formData string false "Target collection"
// @Param disk formData string false "Disk override"
// @Param name formData string false "Display name"
// @Param file_name formData string false "Stored file name"
// @Param order formData int false "Order index"
// @Param properties formData string false "Custom properties JSON"
// @Success 201 {object} MediaResponse "Media stored successfully"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 413 {object} response.Response "File too large"
// @Security BearerAuth
// @Router /media [post]
func (h *MediaHandlers) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		curator, ok := middleware.GetCuratorFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("curator not authenticated")))
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid multipart form")))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("file field is required")))
			return
		}
		defer file.Close()

		req := UploadRequest{
			Collection: r.FormValue("collection"),
			Disk:       r.FormValue("disk"),
			Name:       r.FormValue("name"),
			FileName:   r.FormValue("file_name"),
			Properties: r.FormValue("properties"),
		}

		// Validate request
		validate := validator.New()
		if err := validate.Struct(req); err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// Spool the upload to a temp file for the pipeline; the pipeline
		// removes it after a successful store
		tmp, err := os.CreateTemp("", "media-upload-*")
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to buffer upload")))
			return
		}
		tmpPath := tmp.Name()
		if _, err := io.Copy(tmp, file); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to buffer upload")))
			return
		}
		tmp.Close()

		intakeReq := h.pipeline.FromFile(tmpPath, header.Filename).ForCurator(curator)
		if req.Collection != "" {
			intakeReq = intakeReq.ToCollection(req.Collection)
		}
		if req.Disk != "" {
			intakeReq, err = intakeReq.UsingDisk(req.Disk)
			if err != nil {
				os.Remove(tmpPath)
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
				return
			}
		}
		if req.Name != "" {
			intakeReq = intakeReq.WithName(req.Name)
		}
		if req.FileName != "" {
			intakeReq = intakeReq.WithFileName(req.FileName)
		}
		if orderValue := r.FormValue("order"); orderValue != "" {
			order, err := strconv.Atoi(orderValue)
			if err != nil {
				os.Remove(tmpPath)
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("order must be an integer")))
				return
			}
			intakeReq = intakeReq.WithOrder(order)
		}
		if req.Properties != "" {
			var properties map[string]any
			if err := json.Unmarshal([]byte(req.Properties), &properties); err != nil {
				os.Remove(tmpPath)
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("properties must be a JSON object")))
				return
			}
			intakeReq = intakeReq.WithProperties(properties)
		}

		record, err := intakeReq.Store(r.Context())
		if err != nil {
			os.Remove(tmpPath)
			response.WriteJSON(w, intakeErrorStatus(err), response.GeneralError(err))
			return
		}

		h.cache.InvalidateCuratorLists(r.Context(), curator.ID, curator.Type)
		h.events.PublishMediaStored(record)

		response.WriteJSON(w, http.StatusCreated, response.RequestOK("Media stored successfully", h.toResponse(record)))
	}
}

// List returns the authenticated curator's media records
// @Summary List media records
// @Description List media records owned by the authenticated curator
// @Tags media
// @Produce json
// @Param collection query string false "Restrict to one collection"
// @Success 200 {array} MediaResponse "Media records retrieved successfully"
// @Failure 401 {object} response.Response "Unauthorized"
// @Security BearerAuth
// @Router /media [get]
func (h *MediaHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		curator, ok := middleware.GetCuratorFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("curator not authenticated")))
			return
		}

		records, err := h.cache.ListMedia(r.Context(), curator.ID, curator.Type, r.URL.Query().Get("collection"))
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to list media")))
			return
		}

		responses := make([]MediaResponse, 0, len(records))
		for i := range records {
			responses = append(responses, h.toResponse(&records[i]))
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media records retrieved successfully", responses))
	}
}

// Get returns one media record with its public URL
// @Summary Get a media record
// @Tags media
// @Produce json
// @Param id path string true "Media ID"
// @Success 200 {object} MediaResponse "Media record retrieved successfully"
// @Failure 404 {object} response.Response "Media not found"
// @Security BearerAuth
// @Router /media/{id} [get]
func (h *MediaHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, ok := h.ownedRecord(w, r)
		if !ok {
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media record retrieved successfully", h.toResponse(record)))
	}
}

// TemporaryURL returns a time-limited URL for a media record
// @Summary Get a temporary media URL
// @Description Generate a time-limited URL for a media record
// @Tags media
// @Produce json
// @Param id path string true "Media ID"
// @Param expires query int false "Expiration time in seconds (default: 3600)"
// @Success 200 {object} map[string]interface{} "Temporary URL generated successfully"
// @Failure 404 {object} response.Response "Media not found"
// @Security BearerAuth
// @Router /media/{id}/temporary-url [get]
func (h *MediaHandlers) TemporaryURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, ok := h.ownedRecord(w, r)
		if !ok {
			return
		}

		// Parse expiration time
		expires := 3600 // default 1 hour
		if expiresParam := r.URL.Query().Get("expires"); expiresParam != "" {
			if parsedExpires, err := strconv.Atoi(expiresParam); err == nil && parsedExpires > 0 {
				expires = parsedExpires
			}
		}

		// Remaining query parameters pass through to the disk untouched
		opts := url.Values{}
		for key, values := range r.URL.Query() {
			if key == "expires" {
				continue
			}
			opts[key] = values
		}

		expiry := time.Duration(expires) * time.Second
		temporaryURL, err := h.urls.TemporaryURL(r.Context(), record, expiry, opts)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		resp := map[string]interface{}{
			"media_id":      record.ID,
			"temporary_url": temporaryURL,
			"expires_at":    time.Now().Add(expiry).Unix(),
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Temporary URL generated successfully", resp))
	}
}

// Delete removes a media record and its backing blob
// @Summary Delete a media record
// @Tags media
// @Param id path string true "Media ID"
// @Success 200 {object} response.Response "Media deleted successfully"
// @Failure 403 {object} response.Response "Access denied"
// @Failure 404 {object} response.Response "Media not found"
// @Security BearerAuth
// @Router /media/{id} [delete]
func (h *MediaHandlers) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, ok := h.ownedRecord(w, r)
		if !ok {
			return
		}

		if err := h.pipeline.Remove(r.Context(), record.ID); err != nil {
			if errors.Is(err, storage.ErrMediaNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("media not found")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to delete media")))
			return
		}

		h.cache.InvalidateMedia(r.Context(), record.ID)
		h.cache.InvalidateCuratorLists(r.Context(), record.CuratorID, record.CuratorType)
		h.events.PublishMediaRemoved(record)

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media deleted successfully", nil))
	}
}

// ClearCollection removes every record the caller owns in a collection
// @Summary Clear a media collection
// @Description Delete all media the authenticated curator owns in a collection
// @Tags media
// @Produce json
// @Param collection query string false "Collection to clear (all when omitted)"
// @Success 200 {object} map[string]int "Media cleared successfully"
// @Failure 401 {object} response.Response "Unauthorized"
// @Security BearerAuth
// @Router /media [delete]
func (h *MediaHandlers) ClearCollection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		curator, ok := middleware.GetCuratorFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("curator not authenticated")))
			return
		}

		removed, err := h.pipeline.ClearCollection(r.Context(), curator, r.URL.Query().Get("collection"))
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to clear media")))
			return
		}

		h.cache.InvalidateCuratorLists(r.Context(), curator.ID, curator.Type)

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media cleared successfully", map[string]int{"removed": removed}))
	}
}

// ReassignRequest moves a record to another collection or order index
type ReassignRequest struct {
	Collection string `json:"collection" validate:"omitempty,max=255"`
	Order      *int   `json:"order"`
}

// Reassign updates a record's collection and order
// @Summary Reassign a media record
// @Description Move a media record to another collection or order index
// @Tags media
// @Accept json
// @Produce json
// @Param id path string true "Media ID"
// @Param request body ReassignRequest true "Reassignment"
// @Success 200 {object} MediaResponse "Media reassigned successfully"
// @Failure 404 {object} response.Response "Media not found"
// @Security BearerAuth
// @Router /media/{id} [patch]
func (h *MediaHandlers) Reassign() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, ok := h.ownedRecord(w, r)
		if !ok {
			return
		}
		curator, _ := middleware.GetCuratorFromContext(r.Context())

		var req ReassignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		validate := validator.New()
		if err := validate.Struct(req); err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		updated, err := h.pipeline.Reassign(r.Context(), record.ID, curator, req.Collection, req.Order)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to reassign media")))
			return
		}

		h.cache.InvalidateMedia(r.Context(), record.ID)
		h.cache.InvalidateCuratorLists(r.Context(), curator.ID, curator.Type)

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media reassigned successfully", h.toResponse(updated)))
	}
}

// ownedRecord loads the record from the path id and verifies the caller owns it
func (h *MediaHandlers) ownedRecord(w http.ResponseWriter, r *http.Request) (*types.MediaRecord, bool) {
	curator, ok := middleware.GetCuratorFromContext(r.Context())
	if !ok {
		response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("curator not authenticated")))
		return nil, false
	}

	id := r.PathValue("id")
	if id == "" {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("media id is required")))
		return nil, false
	}

	record, err := h.cache.GetMedia(r.Context(), id)
	if err != nil {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("media not found")))
		return nil, false
	}

	if record.CuratorID != curator.ID || record.CuratorType != curator.Type {
		response.WriteJSON(w, http.StatusForbidden, response.GeneralError(errors.New("access denied")))
		return nil, false
	}

	return record, true
}

func (h *MediaHandlers) toResponse(record *types.MediaRecord) MediaResponse {
	resp := MediaResponse{
		ID:             record.ID,
		Name:           record.Name,
		FileName:       record.FileName,
		CollectionName: record.CollectionName,
		Disk:           record.Disk,
		MimeType:       record.MimeType,
		Size:           record.Size,
		Properties:     record.CustomProperties,
		OrderColumn:    record.OrderColumn,
		CreatedAt:      record.CreatedAt,
	}
	if u, err := h.urls.URL(record); err == nil {
		resp.URL = u
	}
	return resp
}

// intakeErrorStatus maps pipeline errors onto HTTP status codes
func intakeErrorStatus(err error) int {
	var (
		notFound   *types.FileNotFoundError
		tooLarge   *types.FileTooLargeError
		unsafe     *types.UnsafeFileNameError
		noDisk     *types.DiskNotConfiguredError
		restricted *types.CollectionRestrictedError
		anonymous  *types.AnonymousNotAllowedError
	)

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unsafe), errors.As(err, &noDisk):
		return http.StatusBadRequest
	case errors.As(err, &restricted), errors.As(err, &anonymous):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
