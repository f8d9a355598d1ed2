package document

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return New(fs, "/data", zap.NewNop()), fs
}

func TestStore_WriteRead(t *testing.T) {
	store, _ := newTestStore(t)

	doc := []any{
		map[string]any{"id": "f1", "owner": "alice"},
	}
	if err := store.Write("folders", doc); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	value, err := store.Read("folders")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	seq, ok := value.([]any)
	if !ok || len(seq) != 1 {
		t.Fatalf("Read() = %v, want sequence of 1", value)
	}
	obj := seq[0].(map[string]any)
	if obj["id"] != "f1" {
		t.Errorf("id = %v, want f1", obj["id"])
	}
}

func TestStore_Read_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Read("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestStore_InvalidKey(t *testing.T) {
	store, _ := newTestStore(t)

	for _, key := range []string{"", "../etc/passwd", "a/b", "a.b", "key with space"} {
		t.Run(key, func(t *testing.T) {
			if _, err := store.Read(key); !errors.Is(err, ErrBadKey) {
				t.Errorf("Read(%q) error = %v, want ErrBadKey", key, err)
			}
			if err := store.Write(key, "x"); !errors.Is(err, ErrBadKey) {
				t.Errorf("Write(%q) error = %v, want ErrBadKey", key, err)
			}
		})
	}
}

func TestStore_ReadItems(t *testing.T) {
	t.Run("missing document is empty", func(t *testing.T) {
		store, _ := newTestStore(t)
		if items := store.ReadItems("folders"); len(items) != 0 {
			t.Errorf("ReadItems() = %v, want empty", items)
		}
	})

	t.Run("malformed document is empty", func(t *testing.T) {
		store, fs := newTestStore(t)
		if err := afero.WriteFile(fs, "/data/folders.json", []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		if items := store.ReadItems("folders"); len(items) != 0 {
			t.Errorf("ReadItems() = %v, want empty", items)
		}
	})

	t.Run("non-sequence document is empty", func(t *testing.T) {
		store, _ := newTestStore(t)
		if err := store.Write("folders", map[string]any{"id": "x"}); err != nil {
			t.Fatal(err)
		}
		if items := store.ReadItems("folders"); len(items) != 0 {
			t.Errorf("ReadItems() = %v, want empty", items)
		}
	})

	t.Run("sequence document", func(t *testing.T) {
		store, _ := newTestStore(t)
		if err := store.Write("folders", []any{map[string]any{"id": "f1"}}); err != nil {
			t.Fatal(err)
		}
		items := store.ReadItems("folders")
		if len(items) != 1 || items[0].IDString() != "f1" {
			t.Errorf("ReadItems() = %v, want one item f1", items)
		}
	})
}

func TestStore_Write_ReplacesWhole(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Write("folders", []any{map[string]any{"id": "f1"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("folders", []any{map[string]any{"id": "f2"}}); err != nil {
		t.Fatal(err)
	}

	items := store.ReadItems("folders")
	if len(items) != 1 || items[0].IDString() != "f2" {
		t.Errorf("ReadItems() after rewrite = %v, want single f2", items)
	}
}

func TestStore_Write_LeavesNoTempFile(t *testing.T) {
	store, fs := newTestStore(t)

	if err := store.Write("folders", []any{}); err != nil {
		t.Fatal(err)
	}
	if ok, _ := afero.Exists(fs, "/data/folders.json.tmp"); ok {
		t.Error("temp file left behind after Write()")
	}
}

func TestStore_Exists(t *testing.T) {
	store, _ := newTestStore(t)

	if store.Exists("folders") {
		t.Error("Exists() = true before write")
	}
	if err := store.Write("folders", []any{}); err != nil {
		t.Fatal(err)
	}
	if !store.Exists("folders") {
		t.Error("Exists() = false after write")
	}
}
