package collectionapi

import (
	"net/http"

	"github.com/dalemusser/stratastudio/internal/app/system/apicors"
	"github.com/dalemusser/stratastudio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the collection API endpoints.
//
// When mounted at /collection:
//   - GET  /collection?key=K - filtered read
//   - POST /collection?key=K - merged write
//
// Identity is required; it is resolved from the session cookie or from
// X-User-ID with a valid API key.
func Routes(h *Handler, identity *auth.Manager) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())
	r.Use(identity.RequireIdentity)

	r.Get("/", h.GetHandler)
	r.Post("/", h.PostHandler)

	return r
}
