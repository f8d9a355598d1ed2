package sessionapi

import (
	"net/http"

	"github.com/dalemusser/stratastudio/internal/app/system/apicors"
	"github.com/dalemusser/stratastudio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the session endpoints.
//
// When mounted at /session:
//   - POST   /session - issue a session cookie (API key required)
//   - DELETE /session - clear the session cookie
func Routes(h *Handler, identity *auth.Manager) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())

	r.With(identity.RequireAPIKey).Post("/", h.CreateHandler)
	r.Delete("/", h.DeleteHandler)

	return r
}
