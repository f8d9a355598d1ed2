// Package merge reconciles an incoming collection write against the
// document on disk so concurrent writers never destroy each other's
// private items.
package merge

import (
	"github.com/dalemusser/stratastudio/internal/domain/models"
)

// compoundKey identifies an item across owners. Two owners may reuse the
// same item id (every owner has a "default" folder), so protection keys
// on id plus owner, with unowned items bucketed under "global".
func compoundKey(item models.Item) string {
	owner := item.Owner()
	if owner == "" {
		owner = "global"
	}
	return item.IDString() + "_" + owner
}

// Merge computes the document to persist for a sequence write by
// requester. Items owned by someone else and not globally shared are
// protected: they survive regardless of what the writer submits, and a
// submitted item colliding with a protected item's compound key is
// dropped in its favor. Projected items are never persisted; incoming
// items without an owner are stamped with the requester.
func Merge(existing, incoming []models.Item, requester string) []models.Item {
	protected := make([]models.Item, 0, len(existing))
	protectedKeys := make(map[string]bool)
	for _, item := range existing {
		owner := item.Owner()
		if owner != "" && owner != requester && owner != "global" {
			protected = append(protected, item)
			protectedKeys[compoundKey(item)] = true
		}
	}

	allowed := make([]models.Item, 0, len(incoming))
	for _, item := range incoming {
		if item.IsProjected() {
			continue
		}
		owner := item.Owner()
		if owner != "" && owner != requester && owner != "global" {
			continue
		}
		if owner == "" {
			item = item.Clone()
			item.SetOwner(requester)
		}
		if protectedKeys[compoundKey(item)] {
			continue
		}
		allowed = append(allowed, item)
	}

	return append(protected, allowed...)
}
