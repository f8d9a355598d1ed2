// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	blobapifeature "github.com/dalemusser/stratastudio/internal/app/features/blobapi"
	collectionapifeature "github.com/dalemusser/stratastudio/internal/app/features/collectionapi"
	healthfeature "github.com/dalemusser/stratastudio/internal/app/features/health"
	sessionapifeature "github.com/dalemusser/stratastudio/internal/app/features/sessionapi"
	"github.com/dalemusser/stratastudio/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, storage setup, and any Startup
// hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: the storage layers and engine bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// Route overview:
//   - /collection - collection read/write API (identity required)
//   - /blob       - blob upload/serve/delete + sidecar metadata
//   - /session    - session cookie issue/clear
//   - /health     - health, readiness, and liveness probes
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	identity, err := auth.NewManager(
		appCfg.SessionKey,
		appCfg.SessionName,
		appCfg.SessionDomain,
		appCfg.SessionMaxAge,
		secure,
		appCfg.APIKey,
		logger,
	)
	if err != nil {
		logger.Error("identity manager init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Identity middleware: resolves the requester id from the session
	// cookie or the X-User-ID header into the request context. Routes
	// that need identity enforce it with RequireIdentity.
	r.Use(identity.Resolve)

	// Collection read/write API
	collectionHandler := collectionapifeature.NewHandler(deps.Engine, logger)
	r.Mount("/collection", collectionapifeature.Routes(collectionHandler, identity))

	// Blob storage API
	blobHandler := blobapifeature.NewHandler(deps.Sidecars, appCfg.BaseURL, logger)
	r.Mount("/blob", blobapifeature.Routes(blobHandler, identity))

	// Session issue/clear
	sessionHandler := sessionapifeature.NewHandler(identity, logger)
	r.Mount("/session", sessionapifeature.Routes(sessionHandler, identity))

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Fs, appCfg.DataDir, appCfg.ImagesDir, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	return r, nil
}
