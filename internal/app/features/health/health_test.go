package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/stratastudio/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func newTestHealthHandler(t *testing.T) *Handler {
	t.Helper()
	fs := testutil.SetupTestFS(t)
	return NewHandler(fs, testutil.TestDataDir, testutil.TestImagesDir, zap.NewNop())
}

func TestHandler_Check(t *testing.T) {
	h := newTestHealthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Check(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Check() status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("response status = %q, want %q", resp.Status, "ok")
	}
	if resp.Services["documents"] != "ok" {
		t.Errorf("documents status = %q, want %q", resp.Services["documents"], "ok")
	}
	if resp.Services["blobs"] != "ok" {
		t.Errorf("blobs status = %q, want %q", resp.Services["blobs"], "ok")
	}
}

func TestHandler_Check_Degraded(t *testing.T) {
	fs := afero.NewReadOnlyFs(testutil.SetupTestFS(t))
	h := NewHandler(fs, testutil.TestDataDir, testutil.TestImagesDir, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Check(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Check() status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("response status = %q, want %q", resp.Status, "degraded")
	}
}

func TestHandler_Ready(t *testing.T) {
	h := newTestHealthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	h.Ready(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Ready() status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	if body != `{"status":"ready"}` {
		t.Errorf("Ready() body = %q, want %q", body, `{"status":"ready"}`)
	}
}

func TestHandler_Ready_NotReady(t *testing.T) {
	fs := afero.NewReadOnlyFs(testutil.SetupTestFS(t))
	h := NewHandler(fs, testutil.TestDataDir, testutil.TestImagesDir, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	h.Ready(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Ready() status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHandler_Live(t *testing.T) {
	h := newTestHealthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	rec := httptest.NewRecorder()

	h.Live(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Live() status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	if body != `{"status":"alive"}` {
		t.Errorf("Live() body = %q, want %q", body, `{"status":"alive"}`)
	}
}

func TestMountRootEndpoints(t *testing.T) {
	h := newTestHealthHandler(t)
	r := chi.NewRouter()
	MountRootEndpoints(r, h)

	for _, path := range []string{"/ready", "/readyz", "/livez"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
			}
		})
	}
}
