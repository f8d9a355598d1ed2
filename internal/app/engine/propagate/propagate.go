// Package propagate cascades visibility from brand kits down to the
// folders and assets they claim.
//
// A globally visible brand kit pulls every folder in its assetFolderIds,
// and every asset tagged with its id, to global visibility; everything
// else converges back to private. Sidecar records are synchronized as a
// best-effort side effect and never fail the triggering write.
package propagate

import (
	"errors"

	"github.com/dalemusser/stratastudio/internal/app/store/sidecar"
	"github.com/dalemusser/stratastudio/internal/domain/models"
	"go.uber.org/zap"
)

// Propagator recomputes folder and asset visibility from brand kits.
type Propagator struct {
	sidecars *sidecar.Store
	logger   *zap.Logger
}

// New creates a propagator syncing asset changes into sidecars.
func New(sidecars *sidecar.Store, logger *zap.Logger) *Propagator {
	return &Propagator{sidecars: sidecars, logger: logger}
}

// Apply recomputes the target visibility of every folder and asset in
// folders from the brand kits, updating items in place only on change.
// It reports whether any folder or asset changed, so a caller propagating
// from the brand-kit side knows to persist the folder document too.
//
// The per-owner default folder keeps whatever visibility its owner set.
func (p *Propagator) Apply(brandkits, folders []models.Item) bool {
	globalBrandIDs := make(map[string]bool)
	globalFolderIDs := make(map[string]bool)
	for _, kit := range brandkits {
		if !kit.IsGlobal() {
			continue
		}
		if id := kit.IDString(); id != "" {
			globalBrandIDs[id] = true
		}
		for _, folderID := range kit.AssetFolderIDs() {
			globalFolderIDs[folderID] = true
		}
	}

	changed := false
	for _, folder := range folders {
		folderGlobal := false
		if folder.IDString() != models.DefaultFolderID {
			folderGlobal = globalFolderIDs[folder.IDString()] || globalFolderIDs[folder.OriginalID()]
			target := models.VisibilityPrivate
			if folderGlobal {
				target = models.VisibilityGlobal
			}
			if folder.Visibility() != target {
				folder.SetVisibility(target)
				changed = true
			}
		}

		for _, asset := range folder.Assets() {
			target := models.VisibilityPrivate
			if folderGlobal || globalBrandIDs[asset.BrandID()] {
				target = models.VisibilityGlobal
			}
			if asset.Visibility() == target {
				continue
			}
			asset.SetVisibility(target)
			changed = true
			p.syncSidecar(asset.IDString(), target)
		}
	}
	return changed
}

// syncSidecar rewrites the asset's sidecar record to match its new
// visibility. Absent sidecars are legacy data and skipped silently.
func (p *Propagator) syncSidecar(id, visibility string) {
	if id == "" {
		return
	}
	rec, err := p.sidecars.Get(id)
	if err != nil {
		if !errors.Is(err, sidecar.ErrNotFound) && !errors.Is(err, sidecar.ErrBadID) {
			p.logger.Warn("could not load sidecar during propagation",
				zap.String("id", id),
				zap.Error(err),
			)
		}
		return
	}
	if rec.Visibility == visibility {
		return
	}
	rec.Visibility = visibility
	if err := p.sidecars.Put(*rec); err != nil {
		p.logger.Warn("could not update sidecar during propagation",
			zap.String("id", id),
			zap.Error(err),
		)
	}
}
