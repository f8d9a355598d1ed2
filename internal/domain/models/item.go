// Package models defines the item envelope and sidecar record shared by the
// storage engine. Collection documents are schemaless JSON; Item wraps one
// decoded object and exposes typed accessors for the fields the engine
// understands while leaving everything else untouched.
package models

import (
	"strconv"
)

// Visibility values for items and sidecar records.
const (
	VisibilityPrivate = "private"
	VisibilityGlobal  = "global"
)

// DefaultFolderID is the per-owner folder that collects unassigned assets.
// Every owner has exactly one in any filtered view.
const DefaultFolderID = "default"

// SystemOwner marks synthesized projection items that belong to no real user.
const SystemOwner = "system"

// Kind classifies an item by the fields it carries.
type Kind string

const (
	KindFolder   Kind = "folder"
	KindAsset    Kind = "asset"
	KindBrandKit Kind = "brandkit"
	KindDesign   Kind = "design"
	KindUnknown  Kind = "unknown"
)

// Item is a single decoded JSON object from a collection document.
// Unrecognized fields pass through reads, merges, and propagation unchanged.
type Item map[string]any

// ItemsFromAny converts a decoded JSON value into items if it is a sequence
// of objects. Non-object elements are preserved as empty items so positions
// survive a round trip.
func ItemsFromAny(v any) ([]Item, bool) {
	seq, ok := v.([]any)
	if !ok {
		return nil, false
	}
	items := make([]Item, 0, len(seq))
	for _, el := range seq {
		if m, ok := el.(map[string]any); ok {
			items = append(items, Item(m))
		} else {
			items = append(items, Item{})
		}
	}
	return items, true
}

// ID returns the raw id field, which may be a string or a number.
func (it Item) ID() any {
	return it["id"]
}

// IDString normalizes the id for comparisons. JSON numbers decode as
// float64; integral values render without a fractional part.
func (it Item) IDString() string {
	return anyToString(it["id"])
}

func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case nil:
		return ""
	default:
		return ""
	}
}

// Owner returns the owner id, or "" for legacy unowned items.
func (it Item) Owner() string {
	s, _ := it["owner"].(string)
	return s
}

// HasOwner reports whether the item carries a non-empty owner.
func (it Item) HasOwner() bool {
	return it.Owner() != ""
}

// SetOwner stamps the owner id.
func (it Item) SetOwner(owner string) {
	it["owner"] = owner
}

// Visibility returns the stored visibility, defaulting to private.
func (it Item) Visibility() string {
	if s, _ := it["visibility"].(string); s == VisibilityGlobal {
		return VisibilityGlobal
	}
	return VisibilityPrivate
}

// SetVisibility stores the visibility flag.
func (it Item) SetVisibility(v string) {
	it["visibility"] = v
}

// IsGlobal reports whether the item is visible to every identity.
func (it Item) IsGlobal() bool {
	return it.Visibility() == VisibilityGlobal
}

// Name returns the display name, or "".
func (it Item) Name() string {
	s, _ := it["name"].(string)
	return s
}

// SetName stores the display name.
func (it Item) SetName(name string) {
	it["name"] = name
}

// BrandID returns the brand kit id an asset or design is tagged with.
func (it Item) BrandID() string {
	return anyToString(it["brandId"])
}

// FolderID returns the folder id an asset records as its home.
func (it Item) FolderID() string {
	return anyToString(it["folderId"])
}

// OriginalID returns the real folder id behind a projection, or "".
func (it Item) OriginalID() string {
	return anyToString(it["originalId"])
}

// IsProjected reports whether the item is a synthesized read-only copy.
func (it Item) IsProjected() bool {
	b, _ := it["isProjected"].(bool)
	return b
}

// Assets returns the nested asset items of a folder. The returned items
// share storage with the folder, so mutations are visible in place.
func (it Item) Assets() []Item {
	seq, ok := it["assets"].([]any)
	if !ok {
		return nil
	}
	assets := make([]Item, 0, len(seq))
	for _, el := range seq {
		if m, ok := el.(map[string]any); ok {
			assets = append(assets, Item(m))
		}
	}
	return assets
}

// SetAssets replaces the folder's nested assets.
func (it Item) SetAssets(assets []Item) {
	seq := make([]any, len(assets))
	for i, a := range assets {
		seq[i] = map[string]any(a)
	}
	it["assets"] = seq
}

// AssetFolderIDs returns the folder ids a brand kit claims.
func (it Item) AssetFolderIDs() []string {
	seq, ok := it["assetFolderIds"].([]any)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(seq))
	for _, el := range seq {
		if s := anyToString(el); s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}

// Kind classifies the item from the fields present. Items that match no
// known shape report KindUnknown and are carried opaquely.
func (it Item) Kind() Kind {
	if _, ok := it["assetFolderIds"]; ok {
		return KindBrandKit
	}
	if _, ok := it["colors"]; ok {
		return KindBrandKit
	}
	if _, ok := it["assets"]; ok {
		return KindFolder
	}
	if _, ok := it["url"]; ok {
		return KindAsset
	}
	if _, ok := it["pages"]; ok {
		return KindDesign
	}
	return KindUnknown
}

// Clone returns a deep copy of the item. Nested objects and arrays are
// copied; scalars are shared.
func (it Item) Clone() Item {
	return Item(deepCopyMap(it))
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = deepCopyValue(el)
		}
		return out
	default:
		return v
	}
}

// NewDefaultFolder synthesizes the per-owner default folder.
func NewDefaultFolder(owner string) Item {
	return Item{
		"id":         DefaultFolderID,
		"name":       "Default",
		"assets":     []any{},
		"owner":      owner,
		"visibility": VisibilityPrivate,
	}
}
