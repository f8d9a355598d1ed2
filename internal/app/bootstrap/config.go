// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
// Change this constant when forking stratastudio for a new project.
const EnvVarPrefix = "STRATASTUDIO"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: data_dir, session_name, etc.
//   - Environment variables: STRATASTUDIO_DATA_DIR, STRATASTUDIO_SESSION_NAME, etc.
//   - Command-line flags: --data_dir, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "data_dir", Default: "./data", Desc: "Directory holding collection documents"},
	{Name: "images_dir", Default: "./data/images", Desc: "Directory holding image blobs and sidecar records"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "stratastudio-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie max age (e.g., 24h, 720h, 30m)"},

	// API key configuration (for trusted callers using Bearer token auth)
	{Name: "api_key", Default: "", Desc: "API key for X-User-ID header identity (leave empty to disable)"},

	// Base URL for externalized blob reference URLs
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Base URL for blob reference URLs"},

	// Orphaned-upload discovery throttling
	{Name: "scan_throttle_window", Default: "10s", Desc: "Minimum gap between orphan scans per requester"},
	{Name: "throttle_max_entries", Default: 10000, Desc: "Bound on the scan throttle registry size"},
	{Name: "throttle_prune_interval", Default: "5m", Desc: "How often expired throttle entries are swept"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STRATASTUDIO_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		DataDir:   appValues.String("data_dir"),
		ImagesDir: appValues.String("images_dir"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		APIKey:  appValues.String("api_key"),
		BaseURL: appValues.String("base_url"),

		ScanThrottleWindow:    appValues.Duration("scan_throttle_window", 10*time.Second),
		ThrottleMaxEntries:    appValues.Int("throttle_max_entries"),
		ThrottlePruneInterval: appValues.Duration("throttle_prune_interval", 5*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.DataDir == "" {
		logger.Error("data_dir must not be empty")
		return fmt.Errorf("data_dir must not be empty")
	}
	if appCfg.ImagesDir == "" {
		logger.Error("images_dir must not be empty")
		return fmt.Errorf("images_dir must not be empty")
	}
	if appCfg.ScanThrottleWindow <= 0 {
		return fmt.Errorf("scan_throttle_window must be positive, got %s", appCfg.ScanThrottleWindow)
	}
	if appCfg.ThrottleMaxEntries <= 0 {
		return fmt.Errorf("throttle_max_entries must be positive, got %d", appCfg.ThrottleMaxEntries)
	}

	return nil
}
