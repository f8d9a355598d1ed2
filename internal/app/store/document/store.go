// Package document persists one JSON document per collection key.
//
// A collection key maps to a single file under the data directory and all
// reads and writes are whole-document. A missing file is a valid empty
// state, not an error, for callers that tolerate an empty sequence.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/dalemusser/stratastudio/internal/domain/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Read when no document exists for the key.
var ErrNotFound = errors.New("document: not found")

// ErrBadKey is returned when a collection key contains path characters.
var ErrBadKey = errors.New("document: invalid collection key")

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Store reads and writes collection documents under a single directory.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger
}

// New creates a document store rooted at dir.
func New(fs afero.Fs, dir string, logger *zap.Logger) *Store {
	return &Store{fs: fs, dir: dir, logger: logger}
}

// ValidKey reports whether key is usable as a collection key.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Read returns the decoded JSON document for key.
// Returns ErrNotFound if no file exists.
func (s *Store) Read(key string) (any, error) {
	if !ValidKey(key) {
		return nil, ErrBadKey
	}
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("document: read %s: %w", key, err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("document: parse %s: %w", key, err)
	}
	return value, nil
}

// ReadItems returns the document for key as a sequence of items.
// A missing file, malformed JSON, or a non-sequence document all degrade
// to an empty sequence; the cause is logged, never surfaced.
func (s *Store) ReadItems(key string) []models.Item {
	value, err := s.Read(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("document unreadable, treating as empty",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return nil
	}
	items, ok := models.ItemsFromAny(value)
	if !ok {
		return nil
	}
	return items
}

// Write atomically replaces the document for key. The value is marshaled,
// written to a temp file in the same directory, and renamed into place so
// a crashed write never truncates the collection.
func (s *Store) Write(key string, value any) error {
	if !ValidKey(key) {
		return ErrBadKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("document: marshal %s: %w", key, err)
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("document: mkdir %s: %w", s.dir, err)
	}
	tmp := s.path(key) + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("document: write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("document: rename %s: %w", key, err)
	}
	return nil
}

// Exists reports whether a document exists for key.
func (s *Store) Exists(key string) bool {
	if !ValidKey(key) {
		return false
	}
	ok, err := afero.Exists(s.fs, s.path(key))
	return err == nil && ok
}
