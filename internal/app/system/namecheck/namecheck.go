// Package namecheck sanitizes user-supplied item names before they are
// persisted into collection documents. It uses bluemonday to strip any
// markup; names are plain text, not rich content.
package namecheck

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// maxNameLength caps stored names; longer input is truncated, not rejected.
const maxNameLength = 200

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Clean strips markup from a display name, collapses surrounding
// whitespace, and truncates to a storable length.
func Clean(name string) string {
	if name == "" {
		return ""
	}
	cleaned := strings.TrimSpace(getPolicy().Sanitize(name))
	if len(cleaned) > maxNameLength {
		// Back up to a rune boundary so truncation never stores
		// invalid UTF-8.
		cut := maxNameLength
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = cleaned[:cut]
	}
	return cleaned
}

// CleanItems applies Clean to the name field of each object in a decoded
// JSON sequence, including nested assets. Non-object elements and items
// without names pass through untouched.
func CleanItems(value any) {
	seq, ok := value.([]any)
	if !ok {
		return
	}
	for _, el := range seq {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := obj["name"].(string); ok {
			obj["name"] = Clean(name)
		}
		if assets, ok := obj["assets"].([]any); ok {
			CleanItems(assets)
		}
	}
}
