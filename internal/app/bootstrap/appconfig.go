// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and format, CORS, and request body limits.
// AppConfig is where everything specific to this service lives.
type AppConfig struct {
	// Shared storage configuration
	DataDir   string // Directory holding collection documents (<key>.json)
	ImagesDir string // Directory holding image blobs and sidecar records

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: stratastudio-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Maximum session cookie lifetime (default: 24h)

	// API key authentication (for trusted server-to-server callers)
	// When set, enables X-User-ID identity with Bearer token auth.
	// Leave empty to disable header identity entirely.
	APIKey string

	// Base URL used to build externalized blob reference URLs
	BaseURL string // e.g., "https://example.com" or "http://localhost:8080"

	// Orphaned-upload discovery throttling
	ScanThrottleWindow    time.Duration // Minimum gap between scans per requester (default: 10s)
	ThrottleMaxEntries    int           // Bound on the throttle registry size (default: 10000)
	ThrottlePruneInterval time.Duration // How often expired throttle entries are swept (default: 5m)
}
