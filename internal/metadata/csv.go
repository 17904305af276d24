package metadata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"genconsole/internal/domain"
)

// WriteCSV renders the metadata sidecar for a set of artifacts in the column
// layout stock agencies ingest: one row per artifact, keywords joined with
// commas inside a single cell.
func WriteCSV(w io.Writer, artifacts []domain.Artifact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Filename", "Title", "Description", "Keywords", "Category"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range artifacts {
		row := []string{
			exportFilename(a),
			a.Metadata.Title,
			a.Metadata.Description,
			strings.Join(a.Metadata.Keywords, ", "),
			a.Metadata.Category,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportFilename(a domain.Artifact) string {
	key := strings.TrimSpace(a.StorageKey)
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		key = key[idx+1:]
	}
	if key == "" {
		key = a.ID
	}
	return key
}
