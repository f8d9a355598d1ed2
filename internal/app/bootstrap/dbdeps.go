// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/stratastudio/internal/app/engine"
	"github.com/dalemusser/stratastudio/internal/app/engine/discover"
	"github.com/dalemusser/stratastudio/internal/app/store/document"
	"github.com/dalemusser/stratastudio/internal/app/store/sidecar"
	"github.com/spf13/afero"
)

// DBDeps holds storage and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown. It serves as
// the central place to store the storage layers and engine components
// that the application needs.
type DBDeps struct {
	// Fs is the filesystem all storage runs on. Production uses the OS
	// filesystem; tests swap in an in-memory one.
	Fs afero.Fs

	// Documents persists collection documents as JSON files.
	Documents *document.Store

	// Sidecars persists image blobs and their metadata records.
	Sidecars *sidecar.Store

	// Throttle bounds the per-requester orphan scan frequency. Kept here
	// so the background prune job can reach it.
	Throttle *discover.Throttle

	// Engine runs the read/write pipeline over the stores.
	Engine *engine.Service
}
