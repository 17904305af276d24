package domain

import "time"

// ArtifactKind enumerates artifact types.
type ArtifactKind string

const (
	ArtifactKindText  ArtifactKind = "text"
	ArtifactKindImage ArtifactKind = "image"
	ArtifactKindVideo ArtifactKind = "video"
)

// Artifact is one materialized generation result plus its derived metadata.
// Enrichment fills the metadata in after generation; upscaling replaces the
// stored resource behind StorageKey.
type Artifact struct {
	ID         string
	JobID      string
	BatchID    string
	Kind       ArtifactKind
	Model      string
	Prompt     string
	StorageKey string
	MIME       string
	Bytes      int64
	Width      int
	Height     int
	Upscaled   bool
	Metadata   Metadata
	CreatedAt  time.Time
}

// Metadata is the enrichment payload attached to an artifact for export.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Category    string   `json:"category"`
}

// AnalyticsDaily aggregates per-day console usage counters.
type AnalyticsDaily struct {
	Day       string
	Counters  map[string]int
	UpdatedAt time.Time
}
