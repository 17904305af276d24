package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"genconsole/internal/domain"
	"genconsole/internal/metadata"
	"genconsole/internal/sqlinline"
	"genconsole/pkg/archive"
)

// BatchArtifacts lists the artifacts produced for a batch.
func (a *App) BatchArtifacts(w http.ResponseWriter, r *http.Request) {
	batch, ok := a.loadBatch(w, r)
	if !ok {
		return
	}
	artifacts, err := a.fetchBatchArtifacts(r.Context(), batch.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load artifacts")
		return
	}
	items := make([]map[string]any, 0, len(artifacts))
	for _, art := range artifacts {
		items = append(items, map[string]any{
			"id":          art.ID,
			"job_id":      art.JobID,
			"kind":        string(art.Kind),
			"model":       art.Model,
			"prompt":      art.Prompt,
			"storage_key": art.StorageKey,
			"mime":        art.MIME,
			"bytes":       art.Bytes,
			"width":       art.Width,
			"height":      art.Height,
			"upscaled":    art.Upscaled,
			"metadata":    art.Metadata,
			"created_at":  art.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// ArtifactDownload streams a single artifact's bytes.
func (a *App) ArtifactDownload(w http.ResponseWriter, r *http.Request) {
	artifactID := chi.URLParam(r, "artifact_id")
	if artifactID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "artifact_id required")
		return
	}
	art, err := a.fetchArtifact(r.Context(), artifactID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "artifact not found")
		return
	}
	data, err := a.Store.Read(r.Context(), art.StorageKey)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "artifact data missing")
		return
	}
	mime := art.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName(art)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// BatchZip packages every artifact in a batch, plus the metadata sidecar,
// into one ZIP download.
func (a *App) BatchZip(w http.ResponseWriter, r *http.Request) {
	batch, ok := a.loadBatch(w, r)
	if !ok {
		return
	}
	artifacts, err := a.fetchBatchArtifacts(r.Context(), batch.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load artifacts")
		return
	}
	if len(artifacts) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "batch has no artifacts")
		return
	}

	entries := make([]archive.Entry, 0, len(artifacts)+1)
	for _, art := range artifacts {
		data, err := a.Store.Read(r.Context(), art.StorageKey)
		if err != nil {
			continue
		}
		entries = append(entries, archive.Entry{Filename: exportName(art), MIME: art.MIME, Data: data})
	}

	var sidecar bytes.Buffer
	if err := metadata.WriteCSV(&sidecar, artifacts); err == nil {
		entries = append(entries, archive.Entry{Filename: "metadata.csv", MIME: "text/csv", Data: sidecar.Bytes()})
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", batch.ID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive.Build(entries))
}

// BatchCSV serves the metadata sidecar on its own.
func (a *App) BatchCSV(w http.ResponseWriter, r *http.Request) {
	batch, ok := a.loadBatch(w, r)
	if !ok {
		return
	}
	artifacts, err := a.fetchBatchArtifacts(r.Context(), batch.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load artifacts")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", batch.ID+".csv"))
	w.WriteHeader(http.StatusOK)
	_ = metadata.WriteCSV(w, artifacts)
}

func (a *App) fetchBatchArtifacts(ctx context.Context, batchID string) ([]domain.Artifact, error) {
	rows, err := a.SQL.Query(ctx, sqlinline.QSelectBatchArtifacts, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var artifacts []domain.Artifact
	for rows.Next() {
		art, err := scanArtifact(rows.Scan)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, art)
	}
	return artifacts, rows.Err()
}

func (a *App) fetchArtifact(ctx context.Context, artifactID string) (domain.Artifact, error) {
	row := a.SQL.QueryRow(ctx, sqlinline.QSelectArtifact, artifactID)
	return scanArtifact(row.Scan)
}

func scanArtifact(scan func(dest ...any) error) (domain.Artifact, error) {
	var art domain.Artifact
	var kind string
	var meta []byte
	if err := scan(&art.ID, &art.JobID, &art.BatchID, &kind, &art.Model, &art.Prompt,
		&art.StorageKey, &art.MIME, &art.Bytes, &art.Width, &art.Height, &art.Upscaled,
		&meta, &art.CreatedAt); err != nil {
		return domain.Artifact{}, err
	}
	art.Kind = domain.ArtifactKind(kind)
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &art.Metadata)
	}
	return art, nil
}

func exportName(art domain.Artifact) string {
	key := art.StorageKey
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		key = key[idx+1:]
	}
	if key == "" {
		key = art.ID
	}
	return key
}
