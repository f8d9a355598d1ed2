// Package collectionapi provides the collection read/write API endpoints.
//
// Endpoints:
//   - GET  /collection?key=K - read a collection filtered for the requester
//   - POST /collection?key=K - replace a collection (merged against disk)
//
// Both require a resolved identity; the engine handles migration,
// propagation, discovery, visibility filtering, and merge-on-write.
package collectionapi

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/stratastudio/internal/app/engine"
	"github.com/dalemusser/stratastudio/internal/app/system/auth"
	"github.com/dalemusser/stratastudio/internal/app/system/namecheck"
	"go.uber.org/zap"
)

// Handler handles collection API requests.
type Handler struct {
	engine *engine.Service
	logger *zap.Logger
}

// NewHandler creates a new collectionapi handler.
func NewHandler(eng *engine.Service, logger *zap.Logger) *Handler {
	return &Handler{
		engine: eng,
		logger: logger,
	}
}

// GetHandler handles GET /collection?key=K requests.
//
// Response (200 OK): the filtered collection value. A missing or
// unparsable document yields [] for collection keys and {} otherwise.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSONError(w, "Missing required query parameter: key", http.StatusBadRequest)
		return
	}
	requester, _ := auth.RequesterID(r.Context())

	value, err := h.engine.Read(r.Context(), key, requester)
	if err != nil {
		if err == engine.ErrBadKey {
			writeJSONError(w, "Invalid collection key", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to read collection",
			zap.String("key", key),
			zap.String("requester", requester),
			zap.Error(err),
		)
		writeJSONError(w, "Failed to read collection", http.StatusInternalServerError)
		return
	}

	h.logger.Debug("collection read",
		zap.String("key", key),
		zap.String("requester", requester),
	)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		h.logger.Error("failed to encode collection response", zap.Error(err))
	}
}

// PostHandler handles POST /collection?key=K requests. The body is the
// full replacement value; sequence values are merged against the
// document on disk before persisting.
func (h *Handler) PostHandler(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSONError(w, "Missing required query parameter: key", http.StatusBadRequest)
		return
	}
	requester, _ := auth.RequesterID(r.Context())

	var value any
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		writeJSONError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	namecheck.CleanItems(value)

	if err := h.engine.Write(r.Context(), key, requester, value); err != nil {
		if err == engine.ErrBadKey {
			writeJSONError(w, "Invalid collection key", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to write collection",
			zap.String("key", key),
			zap.String("requester", requester),
			zap.Error(err),
		)
		writeJSONError(w, "Failed to save collection", http.StatusInternalServerError)
		return
	}

	h.logger.Debug("collection written",
		zap.String("key", key),
		zap.String("requester", requester),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "saved"})
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
