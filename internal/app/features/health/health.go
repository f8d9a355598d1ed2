// internal/app/features/health/health.go
package health

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Handler provides health check endpoints.
type Handler struct {
	fs        afero.Fs
	dataDir   string
	imagesDir string
	logger    *zap.Logger
}

// NewHandler creates a new health check Handler.
func NewHandler(fs afero.Fs, dataDir, imagesDir string, logger *zap.Logger) *Handler {
	return &Handler{
		fs:        fs,
		dataDir:   dataDir,
		imagesDir: imagesDir,
		logger:    logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds /ready and /livez endpoints directly on the root router.
// This is the standard convention for Kubernetes probes:
//   - /ready (or /readyz) - readiness probe
//   - /livez - liveness probe
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// Check performs a full health check including storage writability.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:   "ok",
		Services: make(map[string]string),
	}

	if err := h.probeDir(h.dataDir); err != nil {
		resp.Status = "degraded"
		resp.Services["documents"] = "unavailable"
		h.logger.Warn("health check: data dir not writable", zap.Error(err))
	} else {
		resp.Services["documents"] = "ok"
	}

	if err := h.probeDir(h.imagesDir); err != nil {
		resp.Status = "degraded"
		resp.Services["blobs"] = "unavailable"
		h.logger.Warn("health check: images dir not writable", zap.Error(err))
	} else {
		resp.Services["blobs"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(resp)
}

// Ready checks if the service is ready to accept requests.
// Used by Kubernetes readiness probes.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.probeDir(h.dataDir); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ready"}`))
}

// Live checks if the service is alive.
// Used by Kubernetes liveness probes.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"alive"}`))
}

// probeDir writes and removes a marker file to prove the directory is
// present and writable.
func (h *Handler) probeDir(dir string) error {
	probe := filepath.Join(dir, ".healthprobe")
	if err := afero.WriteFile(h.fs, probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return h.fs.Remove(probe)
}
