// Package sessionapi issues and clears the signed session cookie that
// carries the requester identity.
package sessionapi

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/stratastudio/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler handles session API requests.
type Handler struct {
	identity *auth.Manager
	logger   *zap.Logger
}

// NewHandler creates a new sessionapi handler.
func NewHandler(identity *auth.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		identity: identity,
		logger:   logger,
	}
}

// createRequest is the POST /session payload.
type createRequest struct {
	UserID string `json:"user_id"`
}

// CreateHandler handles POST /session requests. The caller must hold a
// valid API key; the response sets the signed session cookie so later
// requests carry identity without the key.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		writeJSONError(w, "Missing required field: user_id", http.StatusBadRequest)
		return
	}

	if err := h.identity.IssueSession(w, r, req.UserID); err != nil {
		h.logger.Error("failed to issue session", zap.String("user_id", req.UserID), zap.Error(err))
		writeJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	h.logger.Info("session issued", zap.String("user_id", req.UserID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"user_id": req.UserID})
}

// DeleteHandler handles DELETE /session requests, expiring the session
// cookie.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.ClearSession(w, r); err != nil {
		h.logger.Warn("failed to clear session", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
