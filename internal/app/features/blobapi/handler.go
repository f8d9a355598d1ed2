// Package blobapi serves externalized image blobs and their sidecar
// metadata records.
//
// Endpoints:
//   - GET    /blob?id=I      - stream the blob bytes
//   - POST   /blob           - upload an inline payload, returns a reference URL
//   - DELETE /blob?id=I      - best-effort removal of blob and sidecar
//   - GET    /blob/meta?id=I - sidecar metadata record
package blobapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/stratastudio/internal/app/store/sidecar"
	"github.com/dalemusser/stratastudio/internal/app/system/auth"
	"github.com/dalemusser/stratastudio/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles blob API requests.
type Handler struct {
	sidecars *sidecar.Store
	baseURL  string
	newID    func() string
	now      func() time.Time
	logger   *zap.Logger
}

// NewHandler creates a new blobapi handler.
func NewHandler(sidecars *sidecar.Store, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		sidecars: sidecars,
		baseURL:  baseURL,
		newID:    uuid.NewString,
		now:      time.Now,
		logger:   logger,
	}
}

// GetHandler handles GET /blob?id=I requests, streaming the stored
// image bytes.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, "Missing required query parameter: id", http.StatusBadRequest)
		return
	}

	data, err := h.sidecars.ReadBlob(id)
	if err != nil {
		if err == sidecar.ErrNotFound || err == sidecar.ErrBadID {
			writeJSONError(w, "Blob not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to read blob", zap.String("id", id), zap.Error(err))
		writeJSONError(w, "Failed to read blob", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}

// uploadRequest is the POST /blob payload. URL must carry an inline
// base64 image; already-external references are rejected.
type uploadRequest struct {
	ID       string         `json:"id,omitempty"`
	URL      string         `json:"url"`
	Metadata models.Sidecar `json:"metadata,omitempty"`
}

// PostHandler handles POST /blob requests. The payload URL must be an
// inline data URI; the decoded bytes are stored as a blob with a
// sidecar record stamped with the requester identity, and the response
// carries the external reference URL.
func (h *Handler) PostHandler(w http.ResponseWriter, r *http.Request) {
	requester, _ := auth.RequesterID(r.Context())

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	payload, ok := inlinePayload(req.URL)
	if !ok {
		writeJSONError(w, "URL must be an inline base64 image", http.StatusBadRequest)
		return
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		writeJSONError(w, "Invalid base64 image data", http.StatusBadRequest)
		return
	}

	id := req.ID
	if id == "" {
		id = h.newID()
	}

	if err := h.sidecars.WriteBlob(id, data); err != nil {
		if err == sidecar.ErrBadID {
			writeJSONError(w, "Invalid blob id", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to write blob", zap.String("id", id), zap.Error(err))
		writeJSONError(w, "Failed to store blob", http.StatusInternalServerError)
		return
	}

	record := req.Metadata
	record.ID = id
	if record.Owner == "" {
		record.Owner = requester
	}
	if record.Visibility == "" {
		record.Visibility = models.VisibilityPrivate
	}
	record.Timestamp = h.now().UTC()

	if err := h.sidecars.Put(record); err != nil {
		h.logger.Error("failed to write sidecar", zap.String("id", id), zap.Error(err))
		writeJSONError(w, "Failed to store blob metadata", http.StatusInternalServerError)
		return
	}

	h.logger.Info("blob uploaded",
		zap.String("id", id),
		zap.String("requester", requester),
		zap.Int("size", len(data)),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"id":  id,
		"url": h.baseURL + "/blob?id=" + id,
	})
}

// DeleteHandler handles DELETE /blob?id=I requests. Removal is best
// effort; missing blobs and sidecars are not errors.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, "Missing required query parameter: id", http.StatusBadRequest)
		return
	}

	if err := h.sidecars.DeleteBlob(id); err != nil && err != sidecar.ErrBadID {
		h.logger.Warn("failed to delete blob", zap.String("id", id), zap.Error(err))
	}
	if err := h.sidecars.Delete(id); err != nil && err != sidecar.ErrBadID {
		h.logger.Warn("failed to delete sidecar", zap.String("id", id), zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

// MetaHandler handles GET /blob/meta?id=I requests, returning the
// sidecar record for a stored blob.
func (h *Handler) MetaHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, "Missing required query parameter: id", http.StatusBadRequest)
		return
	}

	record, err := h.sidecars.Get(id)
	if err != nil {
		if err == sidecar.ErrNotFound || err == sidecar.ErrBadID {
			writeJSONError(w, "Blob metadata not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to read sidecar", zap.String("id", id), zap.Error(err))
		writeJSONError(w, "Failed to read blob metadata", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(record)
}

// inlinePayload extracts the base64 payload from an inline image data
// URI. Returns false when the value is not inline image data.
func inlinePayload(url string) (string, bool) {
	if !strings.HasPrefix(url, "data:image/") {
		return "", false
	}
	idx := strings.Index(url, ";base64,")
	if idx < 0 {
		return "", false
	}
	return url[idx+len(";base64,"):], true
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
