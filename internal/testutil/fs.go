// Package testutil provides utilities for testing, including filesystem
// setup and request fixtures.
package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dalemusser/stratastudio/internal/app/store/document"
	"github.com/dalemusser/stratastudio/internal/app/store/sidecar"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// TestDataDir is the document directory used on the in-memory filesystem.
	TestDataDir = "/data"
	// TestImagesDir is the blob directory used on the in-memory filesystem.
	TestImagesDir = "/data/images"
)

// SetupTestFS returns an in-memory filesystem with the storage
// directories created. Each test gets its own instance, so there is no
// cross-test state and nothing to clean up.
func SetupTestFS(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(TestDataDir, 0o755); err != nil {
		t.Fatalf("failed to create test data dir: %v", err)
	}
	if err := fs.MkdirAll(TestImagesDir, 0o755); err != nil {
		t.Fatalf("failed to create test images dir: %v", err)
	}
	return fs
}

// NewDocumentStore returns a document store over a fresh in-memory filesystem.
func NewDocumentStore(t *testing.T) *document.Store {
	t.Helper()
	return document.New(SetupTestFS(t), TestDataDir, zap.NewNop())
}

// NewSidecarStore returns a sidecar store over a fresh in-memory filesystem.
func NewSidecarStore(t *testing.T) *sidecar.Store {
	t.Helper()
	return sidecar.New(SetupTestFS(t), TestImagesDir, zap.NewNop())
}

// WriteDocument marshals a value and writes it directly to the document
// store's directory, bypassing the store, for seeding fixtures.
func WriteDocument(t *testing.T, fs afero.Fs, key string, value any) {
	t.Helper()

	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("failed to marshal document %q: %v", key, err)
	}
	if err := afero.WriteFile(fs, TestDataDir+"/"+key+".json", data, 0o644); err != nil {
		t.Fatalf("failed to write document %q: %v", key, err)
	}
}

// TestContext returns a context with a reasonable timeout for test operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
