// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dalemusser/stratastudio/internal/app/engine"
	"github.com/dalemusser/stratastudio/internal/app/engine/discover"
	"github.com/dalemusser/stratastudio/internal/app/engine/migrate"
	"github.com/dalemusser/stratastudio/internal/app/engine/propagate"
	"github.com/dalemusser/stratastudio/internal/app/store/document"
	"github.com/dalemusser/stratastudio/internal/app/store/sidecar"
	"github.com/dalemusser/waffle/config"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ConnectDB prepares the storage backends.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema
// and Startup. This service has no external database; its backends are
// directories on the local (or mounted shared) filesystem, so "connecting"
// means creating the directories and building the stores and engine over
// them. Everything runs on afero so tests can swap in an in-memory
// filesystem.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	fs := afero.NewOsFs()

	if err := fs.MkdirAll(appCfg.DataDir, 0o755); err != nil {
		return DBDeps{}, fmt.Errorf("failed to create data dir %s: %w", appCfg.DataDir, err)
	}
	if err := fs.MkdirAll(appCfg.ImagesDir, 0o755); err != nil {
		return DBDeps{}, fmt.Errorf("failed to create images dir %s: %w", appCfg.ImagesDir, err)
	}

	documents := document.New(fs, appCfg.DataDir, logger)
	sidecars := sidecar.New(fs, appCfg.ImagesDir, logger)

	throttle := discover.NewThrottle(appCfg.ScanThrottleWindow, appCfg.ThrottleMaxEntries, time.Now)

	eng := engine.New(
		documents,
		migrate.New(sidecars, appCfg.BaseURL, logger),
		propagate.New(sidecars, logger),
		discover.New(sidecars, throttle, appCfg.BaseURL, logger),
		logger,
	)

	logger.Info("storage initialized",
		zap.String("data_dir", appCfg.DataDir),
		zap.String("images_dir", appCfg.ImagesDir),
		zap.Duration("scan_throttle_window", appCfg.ScanThrottleWindow),
	)

	return DBDeps{
		Fs:        fs,
		Documents: documents,
		Sidecars:  sidecars,
		Throttle:  throttle,
		Engine:    eng,
	}, nil
}

// EnsureSchema verifies the storage directories are usable.
//
// This runs after ConnectDB succeeds but before Startup and before the
// HTTP handler is built. There are no indexes or migrations for a
// file-backed store; instead this probes that both directories are
// writable so a misconfigured mount fails startup rather than the first
// request.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	for _, dir := range []string{appCfg.DataDir, appCfg.ImagesDir} {
		probe := filepath.Join(dir, ".writeprobe")
		if err := afero.WriteFile(deps.Fs, probe, []byte("ok"), 0o644); err != nil {
			logger.Error("storage dir is not writable", zap.String("dir", dir), zap.Error(err))
			return fmt.Errorf("storage dir %s is not writable: %w", dir, err)
		}
		if err := deps.Fs.Remove(probe); err != nil {
			logger.Warn("failed to remove write probe", zap.String("dir", dir), zap.Error(err))
		}
	}

	logger.Info("storage directories verified")
	return nil
}
