// Package sidecar stores per-asset metadata records and binary blobs.
//
// Each asset id owns at most one blob (<id>.png) and at most one sidecar
// record (<id>.json) under the images directory, with lifecycles
// independent of any collection document.
package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dalemusser/stratastudio/internal/domain/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no record or blob exists for an id.
var ErrNotFound = errors.New("sidecar: not found")

// ErrBadID is returned when an asset id contains path characters.
var ErrBadID = errors.New("sidecar: invalid asset id")

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Store persists sidecar records and blobs under a single directory.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger
}

// New creates a sidecar store rooted at dir.
func New(fs afero.Fs, dir string, logger *zap.Logger) *Store {
	return &Store{fs: fs, dir: dir, logger: logger}
}

// ValidID reports whether id is usable as an asset id.
func ValidID(id string) bool {
	return id != "" && idPattern.MatchString(id) && !strings.Contains(id, "..")
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) blobPath(id string) string {
	return filepath.Join(s.dir, id+".png")
}

// Get returns the sidecar record for id, or ErrNotFound.
func (s *Store) Get(id string) (*models.Sidecar, error) {
	if !ValidID(id) {
		return nil, ErrBadID
	}
	data, err := afero.ReadFile(s.fs, s.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sidecar: read %s: %w", id, err)
	}
	var rec models.Sidecar
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("sidecar: parse %s: %w", id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	return &rec, nil
}

// Put writes or replaces the sidecar record for rec.ID.
func (s *Store) Put(rec models.Sidecar) error {
	if !ValidID(rec.ID) {
		return ErrBadID
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("sidecar: marshal %s: %w", rec.ID, err)
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("sidecar: mkdir %s: %w", s.dir, err)
	}
	if err := afero.WriteFile(s.fs, s.recordPath(rec.ID), data, 0o644); err != nil {
		return fmt.Errorf("sidecar: write %s: %w", rec.ID, err)
	}
	return nil
}

// Delete removes the sidecar record for id. Missing files are not an error.
func (s *Store) Delete(id string) error {
	if !ValidID(id) {
		return ErrBadID
	}
	if err := s.fs.Remove(s.recordPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("sidecar: delete %s: %w", id, err)
	}
	return nil
}

// List returns every sidecar record on disk. Unparsable records are
// skipped with a warning so one corrupt file cannot block a scan.
func (s *Store) List() ([]models.Sidecar, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sidecar: list: %w", err)
	}
	var records []models.Sidecar
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(info.Name(), ".json")
		rec, err := s.Get(id)
		if err != nil {
			s.logger.Warn("skipping unreadable sidecar record",
				zap.String("id", id),
				zap.Error(err),
			)
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

// WriteBlob writes the binary for id.
func (s *Store) WriteBlob(id string, data []byte) error {
	if !ValidID(id) {
		return ErrBadID
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("sidecar: mkdir %s: %w", s.dir, err)
	}
	if err := afero.WriteFile(s.fs, s.blobPath(id), data, 0o644); err != nil {
		return fmt.Errorf("sidecar: write blob %s: %w", id, err)
	}
	return nil
}

// ReadBlob returns the binary for id, or ErrNotFound.
func (s *Store) ReadBlob(id string) ([]byte, error) {
	if !ValidID(id) {
		return nil, ErrBadID
	}
	data, err := afero.ReadFile(s.fs, s.blobPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sidecar: read blob %s: %w", id, err)
	}
	return data, nil
}

// BlobExists reports whether a binary exists for id.
func (s *Store) BlobExists(id string) bool {
	if !ValidID(id) {
		return false
	}
	ok, err := afero.Exists(s.fs, s.blobPath(id))
	return err == nil && ok
}

// DeleteBlob removes the binary for id. Missing files are not an error.
func (s *Store) DeleteBlob(id string) error {
	if !ValidID(id) {
		return ErrBadID
	}
	if err := s.fs.Remove(s.blobPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("sidecar: delete blob %s: %w", id, err)
	}
	return nil
}
