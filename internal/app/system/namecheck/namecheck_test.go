package namecheck

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "My Folder", "My Folder"},
		{"strips markup", "<script>alert(1)</script>Logo", "Logo"},
		{"strips tags keeps text", "<b>Bold</b> name", "Bold name"},
		{"trims whitespace", "  padded  ", "padded"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean_Truncates(t *testing.T) {
	long := strings.Repeat("a", 500)
	if got := Clean(long); len(got) != maxNameLength {
		t.Errorf("Clean() length = %d, want %d", len(got), maxNameLength)
	}
}

func TestClean_TruncatesOnRuneBoundary(t *testing.T) {
	// Three-byte runes do not divide 200 evenly, so a byte-boundary cut
	// would split the rune straddling the limit.
	long := strings.Repeat("日", 100)
	got := Clean(long)
	if !utf8.ValidString(got) {
		t.Errorf("Clean() produced invalid UTF-8: %q", got)
	}
	if len(got) > maxNameLength {
		t.Errorf("Clean() length = %d, want <= %d", len(got), maxNameLength)
	}
	if got != strings.Repeat("日", 66) {
		t.Errorf("Clean() = %q, want 66 whole runes", got)
	}
}

func TestCleanItems(t *testing.T) {
	value := []any{
		map[string]any{
			"id":   "f1",
			"name": "<i>Folder</i>",
			"assets": []any{
				map[string]any{"id": "a1", "name": "<b>Asset</b>"},
			},
		},
		"stray element",
		map[string]any{"id": "f2"},
	}

	CleanItems(value)

	folder := value[0].(map[string]any)
	if folder["name"] != "Folder" {
		t.Errorf("folder name = %q, want Folder", folder["name"])
	}
	asset := folder["assets"].([]any)[0].(map[string]any)
	if asset["name"] != "Asset" {
		t.Errorf("asset name = %q, want Asset", asset["name"])
	}
}

func TestCleanItems_NonSequence(t *testing.T) {
	// Must be a no-op, not a panic.
	CleanItems(map[string]any{"name": "<b>x</b>"})
	CleanItems("text")
	CleanItems(nil)
}
