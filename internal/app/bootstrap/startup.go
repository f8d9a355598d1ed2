// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/stratastudio/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after storage setup is complete, but before the HTTP
// handler is built and requests are served.
//
// This is the place for one-time initialization that depends on having
// live backends and fully loaded configuration. Returning a non-nil
// error aborts startup and prevents the server from starting.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	startTaskRunner(appCfg, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	// Sweep expired scan-throttle entries so the registry stays small
	// between bursts of requesters.
	taskRunner.Register(tasks.ThrottlePruneJob(deps.Throttle, appCfg.ThrottlePruneInterval, logger))

	taskRunner.Start()
}
