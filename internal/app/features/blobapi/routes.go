package blobapi

import (
	"net/http"

	"github.com/dalemusser/stratastudio/internal/app/system/apicors"
	"github.com/dalemusser/stratastudio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the blob API endpoints. All of them
// require a resolved identity.
//
// When mounted at /blob:
//   - GET    /blob?id=I      - stream blob bytes
//   - POST   /blob           - upload inline payload
//   - DELETE /blob?id=I      - best-effort removal
//   - GET    /blob/meta?id=I - sidecar record
func Routes(h *Handler, identity *auth.Manager) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())
	r.Use(identity.RequireIdentity)

	r.Get("/", h.GetHandler)
	r.Post("/", h.PostHandler)
	r.Delete("/", h.DeleteHandler)
	r.Get("/meta", h.MetaHandler)

	return r
}
