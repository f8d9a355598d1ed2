// Package engine composes the storage components into the two primitives
// the rest of the system calls: read a collection filtered for a
// requester, and write a collection reconciled against disk.
//
// Reads run migration, then (for folders) inheritance propagation and
// orphan discovery, before visibility filtering. Writes run merge-on-write
// and (for folders and brandkits) propagation before persisting. All
// secondary passes are best-effort: their failures are logged and never
// abort the primary operation, and the primary read path itself degrades
// to an empty result rather than erroring.
package engine

import (
	"context"
	"errors"

	"github.com/dalemusser/stratastudio/internal/app/engine/discover"
	"github.com/dalemusser/stratastudio/internal/app/engine/merge"
	"github.com/dalemusser/stratastudio/internal/app/engine/migrate"
	"github.com/dalemusser/stratastudio/internal/app/engine/propagate"
	"github.com/dalemusser/stratastudio/internal/app/engine/visibility"
	"github.com/dalemusser/stratastudio/internal/app/store/document"
	"github.com/dalemusser/stratastudio/internal/domain/models"
	"go.uber.org/zap"
)

// ErrBadKey is returned for keys unusable as collection names.
var ErrBadKey = document.ErrBadKey

// Service orchestrates reads and writes across the engine components.
type Service struct {
	docs       *document.Store
	migrator   *migrate.Migrator
	propagator *propagate.Propagator
	scanner    *discover.Scanner
	logger     *zap.Logger
}

// New creates the engine service.
func New(docs *document.Store, migrator *migrate.Migrator, propagator *propagate.Propagator, scanner *discover.Scanner, logger *zap.Logger) *Service {
	return &Service{
		docs:       docs,
		migrator:   migrator,
		propagator: propagator,
		scanner:    scanner,
		logger:     logger,
	}
}

// Read returns the collection under key filtered for requester. A missing
// or unparsable document yields an empty sequence for collection keys and
// an empty object otherwise.
func (s *Service) Read(ctx context.Context, key, requester string) (any, error) {
	if !document.ValidKey(key) {
		return nil, ErrBadKey
	}

	value, err := s.docs.Read(key)
	if err != nil && !errors.Is(err, document.ErrNotFound) {
		s.logger.Warn("collection unreadable, returning empty",
			zap.String("key", key),
			zap.Error(err),
		)
		value = nil
	}

	migrated, changed := s.migrator.Migrate(value, migrate.Context{Key: key, Requester: requester})
	if changed {
		if err := s.docs.Write(key, migrated); err != nil {
			s.logger.Warn("could not persist migrated document",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		value = migrated
	} else {
		value = migrated
	}

	items, isSequence := models.ItemsFromAny(value)
	if !isSequence {
		// Collection keys continue through the pipeline with an empty
		// sequence so discovery and default-folder synthesis still run.
		if !isCollectionKey(key) {
			if value == nil {
				return map[string]any{}, nil
			}
			return value, nil
		}
		items = nil
	}

	brandkits := s.brandkitsFor(key, items)

	if key == visibility.KeyFolders {
		items = s.refreshFolders(items, brandkits, requester)
	}

	return visibility.Filter(items, brandkits, requester, key), nil
}

// refreshFolders runs propagation and orphan discovery on the folder
// items, persisting when either pass changed the document.
func (s *Service) refreshFolders(folders, brandkits []models.Item, requester string) []models.Item {
	propagated := s.propagator.Apply(brandkits, folders)
	folders, discovered := s.scanner.Scan(requester, folders)
	if propagated || discovered {
		if err := s.docs.Write(visibility.KeyFolders, itemsToAny(folders)); err != nil {
			s.logger.Warn("could not persist refreshed folders", zap.Error(err))
		}
	}
	return folders
}

// Write persists value under key for requester. Sequence values are
// reconciled through merge-on-write; anything else replaces the document
// wholesale.
func (s *Service) Write(ctx context.Context, key, requester string, value any) error {
	if !document.ValidKey(key) {
		return ErrBadKey
	}

	incoming, isSequence := models.ItemsFromAny(value)
	if !isSequence {
		return s.docs.Write(key, value)
	}

	existing := s.docs.ReadItems(key)
	merged := merge.Merge(existing, incoming, requester)

	switch key {
	case visibility.KeyFolders:
		brandkits := s.docs.ReadItems(visibility.KeyBrandKits)
		s.propagator.Apply(brandkits, merged)
	case visibility.KeyBrandKits:
		folders := s.docs.ReadItems(visibility.KeyFolders)
		if s.propagator.Apply(merged, folders) {
			if err := s.docs.Write(visibility.KeyFolders, itemsToAny(folders)); err != nil {
				s.logger.Warn("could not persist folders after brandkit propagation",
					zap.Error(err),
				)
			}
		}
	}

	return s.docs.Write(key, itemsToAny(merged))
}

// brandkitsFor returns the brand-kit items relevant to filtering key.
func (s *Service) brandkitsFor(key string, items []models.Item) []models.Item {
	switch key {
	case visibility.KeyBrandKits:
		return items
	case visibility.KeyFolders, visibility.KeyDesigns:
		return s.docs.ReadItems(visibility.KeyBrandKits)
	default:
		return nil
	}
}

func isCollectionKey(key string) bool {
	switch key {
	case visibility.KeyFolders, visibility.KeyBrandKits, visibility.KeyDesigns:
		return true
	}
	return false
}

func itemsToAny(items []models.Item) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = map[string]any(item)
	}
	return out
}
