// Package discover finds uploaded assets that exist on disk but are
// missing from every folder document, and folds them back into the
// requester's default folder so the collection document stays
// authoritative.
package discover

import (
	"strings"

	"github.com/dalemusser/stratastudio/internal/app/store/sidecar"
	"github.com/dalemusser/stratastudio/internal/domain/models"
	"go.uber.org/zap"
)

// Scanner compares sidecar records against registered folder assets.
type Scanner struct {
	sidecars *sidecar.Store
	throttle *Throttle
	baseURL  string
	logger   *zap.Logger
}

// New creates a scanner. baseURL prefixes discovered asset URLs.
func New(sidecars *sidecar.Store, throttle *Throttle, baseURL string, logger *zap.Logger) *Scanner {
	return &Scanner{
		sidecars: sidecars,
		throttle: throttle,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// Scan admits orphaned sidecar records into the requester's default
// folder. It returns the updated folder items and whether anything was
// admitted; a scan inside the throttle window short-circuits unchanged.
func (s *Scanner) Scan(requester string, folders []models.Item) ([]models.Item, bool) {
	if !s.throttle.Allow(requester) {
		return folders, false
	}

	records, err := s.sidecars.List()
	if err != nil {
		s.logger.Warn("orphan scan could not list sidecars", zap.Error(err))
		return folders, false
	}
	if len(records) == 0 {
		return folders, false
	}

	registered := registeredAssetIDs(folders)

	var admitted []models.Item
	for _, rec := range records {
		if registered[rec.ID] {
			continue
		}
		if nonReusableSource(rec.SourceKey) {
			continue
		}
		if !s.admits(rec, requester, folders) {
			continue
		}
		admitted = append(admitted, rec.Asset(s.baseURL+"/blob?id="+rec.ID))
	}
	if len(admitted) == 0 {
		return folders, false
	}

	folders, target := defaultFolderFor(folders, requester)
	assets := target.Assets()
	assets = append(assets, admitted...)
	target.SetAssets(assets)

	s.logger.Info("orphan scan admitted assets",
		zap.String("requester", requester),
		zap.Int("count", len(admitted)),
	)
	return folders, true
}

// admits applies the visibility-admission test: unowned records, the
// requester's own records, globally marked records, and records homed in
// a folder the requester can see are all admitted.
func (s *Scanner) admits(rec models.Sidecar, requester string, folders []models.Item) bool {
	if rec.Owner == "" || rec.Owner == requester || rec.IsGlobalVisibility() {
		return true
	}
	if rec.FolderID == "" {
		return false
	}
	for _, folder := range folders {
		if folder.IDString() != rec.FolderID {
			continue
		}
		if folder.Owner() == requester || folder.IsGlobal() {
			return true
		}
	}
	return false
}

// registeredAssetIDs collects asset ids across all owners' folders.
func registeredAssetIDs(folders []models.Item) map[string]bool {
	ids := make(map[string]bool)
	for _, folder := range folders {
		for _, asset := range folder.Assets() {
			if id := asset.IDString(); id != "" {
				ids[id] = true
			}
		}
	}
	return ids
}

// nonReusableSource reports whether the record's sourceKey marks a
// generated artifact, such as a thumbnail, that must not be resurfaced
// as a library asset.
func nonReusableSource(sourceKey string) bool {
	key := strings.ToLower(sourceKey)
	return strings.Contains(key, "thumb") || strings.Contains(key, "preview")
}

// defaultFolderFor returns folders with the requester's default folder
// present, creating it when absent.
func defaultFolderFor(folders []models.Item, requester string) ([]models.Item, models.Item) {
	for _, folder := range folders {
		if folder.IDString() == models.DefaultFolderID && folder.Owner() == requester {
			return folders, folder
		}
	}
	created := models.NewDefaultFolder(requester)
	return append(folders, created), created
}
