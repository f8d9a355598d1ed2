// Package migrate externalizes inline base64 image payloads found anywhere
// in a collection document into the blob store, rewriting each payload in
// place with a reference URL.
//
// Migration is a pure tree transform: it returns new structures plus a
// changed flag and never mutates its input, so re-running it on
// already-externalized data reports no change and identical output.
package migrate

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/dalemusser/stratastudio/internal/app/store/sidecar"
	"github.com/dalemusser/stratastudio/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const inlinePayloadMarker = ";base64,"

// Context carries the collection key and requester of the read that
// triggered migration. The key becomes the sidecar's sourceKey fallback
// and the requester owns newly externalized assets with no owner of
// their own.
type Context struct {
	Key       string
	Requester string
}

// Migrator walks documents and externalizes inline image payloads.
type Migrator struct {
	sidecars *sidecar.Store
	baseURL  string
	newID    func() string
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a migrator writing blobs and records through sidecars.
// baseURL prefixes reference URLs (usually empty for same-origin).
func New(sidecars *sidecar.Store, baseURL string, logger *zap.Logger) *Migrator {
	return &Migrator{
		sidecars: sidecars,
		baseURL:  baseURL,
		newID:    uuid.NewString,
		now:      time.Now,
		logger:   logger,
	}
}

// Migrate returns a migrated copy of value and whether anything changed.
// Scalars pass through unchanged; sequences and objects are walked
// recursively, including JSON documents nested inside string fields.
func (m *Migrator) Migrate(value any, mctx Context) (any, bool) {
	switch v := value.(type) {
	case []any:
		return m.migrateSequence(v, mctx)
	case map[string]any:
		return m.migrateObject(v, mctx)
	default:
		return value, false
	}
}

func (m *Migrator) migrateSequence(seq []any, mctx Context) (any, bool) {
	out := make([]any, len(seq))
	changed := false
	for i, el := range seq {
		migrated, elChanged := m.Migrate(el, mctx)
		out[i] = migrated
		changed = changed || elChanged
	}
	if !changed {
		return seq, false
	}
	return out, true
}

func (m *Migrator) migrateObject(obj map[string]any, mctx Context) (any, bool) {
	out := make(map[string]any, len(obj))
	changed := false
	for key, val := range obj {
		switch t := val.(type) {
		case string:
			migrated, fieldChanged := m.migrateStringField(obj, key, t, mctx)
			out[key] = migrated
			changed = changed || fieldChanged
		case map[string]any, []any:
			migrated, fieldChanged := m.Migrate(t, mctx)
			out[key] = migrated
			changed = changed || fieldChanged
		default:
			out[key] = val
		}
	}
	if !changed {
		return obj, false
	}
	return out, true
}

// migrateStringField handles the two string shapes migration cares about:
// inline image payloads, and strings that are themselves JSON documents.
func (m *Migrator) migrateStringField(obj map[string]any, key, val string, mctx Context) (any, bool) {
	if isInlinePayload(val) {
		if url, ok := m.externalize(obj, key, val, mctx); ok {
			return url, true
		}
		return val, false
	}
	if nested, ok := parseNestedJSON(val); ok {
		migrated, nestedChanged := m.Migrate(nested, mctx)
		if !nestedChanged {
			return val, false
		}
		reencoded, err := json.Marshal(migrated)
		if err != nil {
			m.logger.Warn("failed to re-encode nested document after migration",
				zap.String("field", key),
				zap.Error(err),
			)
			return val, false
		}
		return string(reencoded), true
	}
	return val, false
}

// externalize decodes the payload, writes the blob and sidecar record, and
// returns the reference URL. A blob already on disk is never rewritten.
func (m *Migrator) externalize(obj map[string]any, key, payload string, mctx Context) (string, bool) {
	id := models.Item(obj).IDString()
	if id == "" || !sidecar.ValidID(id) {
		id = m.newID()
	}

	if !m.sidecars.BlobExists(id) {
		data, err := decodePayload(payload)
		if err != nil {
			m.logger.Warn("inline payload is not valid base64, leaving in place",
				zap.String("field", key),
				zap.String("id", id),
				zap.Error(err),
			)
			return "", false
		}
		if err := m.sidecars.WriteBlob(id, data); err != nil {
			m.logger.Warn("failed to write migrated blob",
				zap.String("id", id),
				zap.Error(err),
			)
			return "", false
		}
		rec := models.Sidecar{
			ID:           id,
			Owner:        ownerFor(obj, mctx),
			Visibility:   models.Item(obj).Visibility(),
			SourceKey:    key,
			OriginalName: originalName(obj),
			Timestamp:    m.now().UTC(),
		}
		if brand := models.Item(obj).BrandID(); brand != "" {
			rec.BrandID = brand
		}
		if folder := models.Item(obj).FolderID(); folder != "" {
			rec.FolderID = folder
		}
		if err := m.sidecars.Put(rec); err != nil {
			m.logger.Warn("failed to write sidecar for migrated blob",
				zap.String("id", id),
				zap.Error(err),
			)
		}
		m.logger.Debug("externalized inline payload",
			zap.String("id", id),
			zap.String("source_key", key),
			zap.String("collection", mctx.Key),
		)
	}

	return m.baseURL + "/blob?id=" + id, true
}

func ownerFor(obj map[string]any, mctx Context) string {
	if owner := models.Item(obj).Owner(); owner != "" {
		return owner
	}
	return mctx.Requester
}

// originalName pulls a best-effort display name from the enclosing object.
func originalName(obj map[string]any) string {
	if name, _ := obj["name"].(string); name != "" {
		return name
	}
	if label, _ := obj["label"].(string); label != "" {
		return label
	}
	return ""
}

func isInlinePayload(s string) bool {
	return strings.HasPrefix(s, "data:image/") && strings.Contains(s, inlinePayloadMarker)
}

func decodePayload(s string) ([]byte, error) {
	idx := strings.Index(s, inlinePayloadMarker)
	encoded := s[idx+len(inlinePayloadMarker):]
	return base64.StdEncoding.DecodeString(encoded)
}

// parseNestedJSON reports whether s is a JSON object or array document.
// Plain strings and scalar JSON values are not treated as nested
// documents; descending into them would rewrite unrelated text.
func parseNestedJSON(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 {
		return nil, false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, false
	}
	var nested any
	if err := json.Unmarshal([]byte(trimmed), &nested); err != nil {
		return nil, false
	}
	return nested, true
}
