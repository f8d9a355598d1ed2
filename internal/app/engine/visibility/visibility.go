// Package visibility filters a collection's items down to what one
// requester may see.
//
// Beyond the base ownership predicate, the resolver synthesizes read-only
// "shared" projections of other owners' folders that are linked to a
// brand kit the requester can see, and normalizes legacy items for the
// response. Nothing here writes to disk; every returned item is a copy.
package visibility

import (
	"github.com/dalemusser/stratastudio/internal/domain/models"
)

// Collection keys with inheritance behavior beyond the base predicate.
const (
	KeyFolders   = "folders"
	KeyBrandKits = "brandkits"
	KeyDesigns   = "designs"
)

// Visible reports the base predicate: unowned, owned by the requester,
// or globally visible.
func Visible(item models.Item, requester string) bool {
	return !item.HasOwner() || item.Owner() == requester || item.IsGlobal()
}

// Filter returns the items of key that requester may see. brandkits is
// the current brand-kit document, consulted for inheritance projections;
// pass the items themselves when filtering the brandkits collection.
func Filter(items, brandkits []models.Item, requester, key string) []models.Item {
	visibleBrandIDs, visibleFolderIDs := visibleBrandLinkage(brandkits, requester)

	result := make([]models.Item, 0, len(items))
	included := make(map[int]bool, len(items))
	for i, item := range items {
		if Visible(item, requester) {
			result = append(result, item.Clone())
			included[i] = true
			continue
		}
		if key == KeyDesigns && visibleBrandIDs[item.BrandID()] {
			inherited := item.Clone()
			inherited.SetVisibility(models.VisibilityGlobal)
			result = append(result, inherited)
			included[i] = true
		}
	}

	if key == KeyFolders {
		for i, folder := range items {
			if included[i] {
				continue
			}
			if projected, ok := projectFolder(folder, visibleBrandIDs, visibleFolderIDs); ok {
				result = append(result, projected)
			}
		}
	}

	for _, item := range result {
		normalize(item, requester)
	}

	if key == KeyFolders {
		result = ensureDefaultFolder(result, requester)
	}
	return result
}

// visibleBrandLinkage collects the brand ids visible to the requester and
// the union of folder ids those brands claim.
func visibleBrandLinkage(brandkits []models.Item, requester string) (map[string]bool, map[string]bool) {
	brandIDs := make(map[string]bool)
	folderIDs := make(map[string]bool)
	for _, kit := range brandkits {
		if !Visible(kit, requester) {
			continue
		}
		if id := kit.IDString(); id != "" {
			brandIDs[id] = true
		}
		for _, folderID := range kit.AssetFolderIDs() {
			folderIDs[folderID] = true
		}
	}
	return brandIDs, folderIDs
}

// projectFolder synthesizes a read-only shared copy of another owner's
// folder. A folder claimed by a visible brand projects whole; otherwise
// only its explicitly brand-tagged assets project, if any.
func projectFolder(folder models.Item, visibleBrandIDs, visibleFolderIDs map[string]bool) (models.Item, bool) {
	originalID := folder.IDString()
	wholeFolder := visibleFolderIDs[originalID] || visibleFolderIDs[folder.OriginalID()]

	var assets []models.Item
	if wholeFolder {
		assets = folder.Assets()
	} else {
		for _, asset := range folder.Assets() {
			if visibleBrandIDs[asset.BrandID()] || visibleFolderIDs[asset.FolderID()] {
				assets = append(assets, asset)
			}
		}
		if len(assets) == 0 {
			return nil, false
		}
	}

	projected := folder.Clone()
	projected["id"] = originalID + "_shared_" + folder.Owner()
	projected["originalId"] = folder.ID()
	projected["isProjected"] = true
	projected.SetOwner(models.SystemOwner)
	projected.SetVisibility(models.VisibilityGlobal)
	if wholeFolder {
		projected.SetName(folder.Name() + " (Shared)")
	}

	copied := make([]models.Item, len(assets))
	for i, asset := range assets {
		copied[i] = asset.Clone()
		copied[i].SetVisibility(models.VisibilityGlobal)
	}
	projected.SetAssets(copied)
	return projected, true
}

// normalize applies response-only fixups: legacy unowned items are
// claimed by the requester, and a globally visible folder forces its
// nested assets global for this response.
func normalize(item models.Item, requester string) {
	if !item.HasOwner() {
		item.SetOwner(requester)
	}
	if item.IsGlobal() {
		for _, asset := range item.Assets() {
			if !asset.IsGlobal() {
				asset.SetVisibility(models.VisibilityGlobal)
			}
		}
	}
}

// ensureDefaultFolder guarantees exactly one default folder for the
// requester in the filtered view, synthesizing an empty one if absent.
func ensureDefaultFolder(folders []models.Item, requester string) []models.Item {
	for _, folder := range folders {
		if folder.IDString() == models.DefaultFolderID && folder.Owner() == requester {
			return folders
		}
	}
	return append(folders, models.NewDefaultFolder(requester))
}
