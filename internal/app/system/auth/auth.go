// Package auth resolves the requester identity for each request.
//
// Identity provisioning (login, SSO, account management) lives outside
// this service; all the engine needs is a stable opaque requester id.
// Two transports are accepted:
//
//   - a signed session cookie carrying the requester id, issued by
//     POST /session and validated by the cookie store's MAC
//   - an X-User-ID header, honored only when the request also carries a
//     valid "Authorization: Bearer <api-key>" (trusted server-to-server
//     callers that manage their own users)
//
// Requests with neither are rejected before any store access.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/stratastudio/internal/app/system/jsonutil"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

type contextKey int

const requesterKey contextKey = iota

const sessionValueKey = "requester_id"

// Manager encapsulates the session store, API key, and middleware for
// identity resolution. Use NewManager to create an instance.
type Manager struct {
	store  *sessions.CookieStore
	name   string
	apiKey string
	logger *zap.Logger
}

// ConfigError is returned when identity configuration is invalid.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// NewManager creates a Manager.
//
// sessionKey signs the session cookie; in secure (production) mode a key
// shorter than 32 chars fails startup. In dev mode an empty key is
// replaced with a random one, which invalidates sessions on restart.
func NewManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, apiKey string, logger *zap.Logger) (*Manager, error) {
	if sessionKey == "" {
		if secure {
			return nil, &ConfigError{Message: "session key is empty; provide ≥32 random chars"}
		}
		sessionKey = string(securecookie.GenerateRandomKey(32))
		logger.Warn("session key not configured; using a random key, sessions will not survive restart")
	} else if len(sessionKey) < 32 {
		if secure {
			return nil, &ConfigError{Message: "session key is too weak for production; provide ≥32 random chars"}
		}
		logger.Warn("session key is weak; 32+ random chars required in production",
			zap.Int("length", len(sessionKey)))
	}

	if name == "" {
		name = "stratastudio-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("identity manager initialized",
		zap.Bool("secure", secure),
		zap.String("name", name),
		zap.Bool("api_key_enabled", apiKey != ""),
	)

	return &Manager{
		store:  store,
		name:   name,
		apiKey: apiKey,
		logger: logger,
	}, nil
}

// Resolve is middleware that places the requester id into the request
// context when one can be resolved. It never rejects; pair it with
// RequireIdentity on routes that need an identity.
func (m *Manager) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := m.resolve(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), requesterKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireIdentity is middleware that rejects requests without a resolved
// requester id with 401 before any handler runs.
func (m *Manager) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := RequesterID(r.Context()); !ok {
			m.logger.Debug("request rejected: no identity resolved",
				zap.String("path", r.URL.Path),
			)
			jsonutil.Unauthorized(w, "identity required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPIKey is middleware that rejects requests without a valid
// "Authorization: Bearer <api-key>" header. Used by endpoints that
// establish identity rather than consume it.
func (m *Manager) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.validBearer(r) {
			m.logger.Debug("request rejected: API key required",
				zap.String("path", r.URL.Path),
			)
			jsonutil.Unauthorized(w, "valid API key required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) resolve(r *http.Request) (string, bool) {
	if session, err := m.store.Get(r, m.name); err == nil {
		if id, ok := session.Values[sessionValueKey].(string); ok && id != "" {
			return id, true
		}
	}

	if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" && m.validBearer(r) {
		return id, true
	}

	return "", false
}

// validBearer checks "Authorization: Bearer <api-key>" against the
// configured API key. An unconfigured key disables header identity.
func (m *Manager) validBearer(r *http.Request) bool {
	if m.apiKey == "" {
		return false
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return false
	}
	if parts[1] != m.apiKey {
		m.logger.Warn("request with invalid API key",
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
		)
		return false
	}
	return true
}

// IssueSession writes a signed session cookie carrying the requester id.
func (m *Manager) IssueSession(w http.ResponseWriter, r *http.Request, requesterID string) error {
	session, _ := m.store.Get(r, m.name)
	session.Values[sessionValueKey] = requesterID
	return session.Save(r, w)
}

// ClearSession expires the session cookie.
func (m *Manager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, m.name)
	session.Options.MaxAge = -1
	delete(session.Values, sessionValueKey)
	return session.Save(r, w)
}

// RequesterID returns the resolved requester id from the context.
func RequesterID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requesterKey).(string)
	return id, ok && id != ""
}

// WithTestIdentity injects a requester id directly into the request
// context, bypassing the middleware. For tests only.
func WithTestIdentity(r *http.Request, requesterID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), requesterKey, requesterID))
}
