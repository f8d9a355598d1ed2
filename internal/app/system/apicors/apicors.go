// Package apicors provides CORS middleware for API endpoints that use
// API key or signed-cookie authentication rather than browser forms.
//
// Origins can be "*" (any origin) for API key consumers since there are
// no cookies to protect on those routes.
package apicors

import (
	"net/http"
)

// Middleware returns permissive CORS middleware for API endpoints.
//
// It allows any origin, common API methods and headers, and answers
// preflight OPTIONS requests directly.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept, X-User-ID")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
