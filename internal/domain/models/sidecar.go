package models

import "time"

// Sidecar is the metadata record stored next to an asset's binary blob.
// It has its own lifecycle: the record survives even if the folder document
// referencing the asset is lost or edited concurrently, which makes it the
// durable source of truth for the asset's existence on disk.
type Sidecar struct {
	ID           string    `json:"id"`
	Owner        string    `json:"owner,omitempty"`
	Visibility   string    `json:"visibility,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	IsFavorite   bool      `json:"isFavorite,omitempty"`
	BrandID      string    `json:"brandId,omitempty"`
	FolderID     string    `json:"folderId,omitempty"`
	SourceKey    string    `json:"sourceKey,omitempty"`
	OriginalName string    `json:"originalName,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// IsGlobalVisibility reports whether the record marks its asset global.
func (s *Sidecar) IsGlobalVisibility() bool {
	return s.Visibility == VisibilityGlobal
}

// Asset converts the record into an asset item for inclusion in a folder
// document. The blob URL points at the blob endpoint keyed by id.
func (s *Sidecar) Asset(blobURL string) Item {
	tags := make([]any, len(s.Tags))
	for i, t := range s.Tags {
		tags[i] = t
	}
	visibility := s.Visibility
	if visibility == "" {
		visibility = VisibilityPrivate
	}
	item := Item{
		"id":         s.ID,
		"url":        blobURL,
		"tags":       tags,
		"isFavorite": s.IsFavorite,
		"owner":      s.Owner,
		"visibility": visibility,
		"folderId":   DefaultFolderID,
	}
	if s.BrandID != "" {
		item["brandId"] = s.BrandID
	}
	return item
}
