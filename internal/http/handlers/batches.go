package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"genconsole/internal/domain"
	"genconsole/internal/sqlinline"
)

const maxBatchPrompts = 100

type batchCreateRequest struct {
	Class          string   `json:"class"`
	Model          string   `json:"model"`
	Prompts        []string `json:"prompts"`
	Quantity       int      `json:"quantity"`
	AspectRatio    string   `json:"aspect_ratio"`
	Upscale        bool     `json:"upscale"`
	Enrich         bool     `json:"enrich"`
	ReferenceImage string   `json:"reference_image_base64"`
}

// BatchesCreate validates a submission, persists the batch with its jobs in
// submission order, and leaves it queued for the worker.
func (a *App) BatchesCreate(w http.ResponseWriter, r *http.Request) {
	var req batchCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	class := domain.RequestClass(strings.ToLower(strings.TrimSpace(req.Class)))
	switch class {
	case domain.ClassText, domain.ClassImage, domain.ClassVideo:
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "class must be text, image or video")
		return
	}

	var prompts []string
	for _, p := range req.Prompts {
		if p = strings.TrimSpace(p); p != "" {
			prompts = append(prompts, p)
		}
	}
	if len(prompts) == 0 {
		a.error(w, http.StatusBadRequest, "invalid_prompt", "at least one prompt is required")
		return
	}
	if len(prompts) > maxBatchPrompts {
		a.error(w, http.StatusBadRequest, "bad_request", "too many prompts in one batch")
		return
	}

	var reference []byte
	if req.ReferenceImage != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ReferenceImage)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "reference image is not valid base64")
			return
		}
		reference = decoded
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	if quantity > 4 {
		quantity = 4
	}
	aspect := strings.TrimSpace(req.AspectRatio)
	if aspect == "" {
		aspect = "1:1"
	}

	model := strings.TrimSpace(req.Model)
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertBatch, string(class), model, len(prompts))
	var batchID string
	if err := row.Scan(&batchID); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to create batch")
		return
	}

	for i, prompt := range prompts {
		row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertJob,
			batchID, i, prompt, string(class), quantity, aspect, model, reference, req.Upscale, req.Enrich)
		var jobID string
		if err := row.Scan(&jobID); err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to create batch jobs")
			return
		}
	}

	a.bumpSubmitCounters(r, string(class))
	a.json(w, http.StatusAccepted, map[string]any{
		"batch_id":  batchID,
		"status":    string(domain.BatchStatusQueued),
		"job_count": len(prompts),
	})
}

// BatchStatus reports batch progress.
func (a *App) BatchStatus(w http.ResponseWriter, r *http.Request) {
	batch, ok := a.loadBatch(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":         batch.ID,
		"class":      string(batch.Class),
		"model":      batch.Model,
		"job_count":  batch.JobCount,
		"succeeded":  batch.Succeeded,
		"failed":     batch.Failed,
		"status":     string(batch.Status),
		"created_at": batch.CreatedAt,
		"updated_at": batch.UpdatedAt,
	})
}

// BatchNotices returns the persisted progress notices for a batch, oldest
// first, so the console can replay them as toasts.
func (a *App) BatchNotices(w http.ResponseWriter, r *http.Request) {
	batch, ok := a.loadBatch(w, r)
	if !ok {
		return
	}
	rows, err := a.SQL.Query(r.Context(), sqlinline.QSelectBatchNotices, batch.ID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load notices")
		return
	}
	defer rows.Close()
	items := make([]map[string]any, 0)
	for rows.Next() {
		var n domain.Notice
		if err := rows.Scan(&n.ID, &n.BatchID, &n.Severity, &n.Message, &n.CreatedAt); err != nil {
			continue
		}
		items = append(items, map[string]any{
			"id":         n.ID,
			"severity":   n.Severity,
			"message":    n.Message,
			"created_at": n.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) loadBatch(w http.ResponseWriter, r *http.Request) (domain.Batch, bool) {
	batchID := chi.URLParam(r, "batch_id")
	if batchID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "batch_id required")
		return domain.Batch{}, false
	}
	batch, err := a.fetchBatch(r.Context(), batchID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "batch not found")
		return domain.Batch{}, false
	}
	return batch, true
}

func (a *App) fetchBatch(ctx context.Context, batchID string) (domain.Batch, error) {
	row := a.SQL.QueryRow(ctx, sqlinline.QSelectBatch, batchID)
	var b domain.Batch
	var class, status string
	if err := row.Scan(&b.ID, &class, &b.Model, &b.JobCount, &b.Succeeded, &b.Failed, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return domain.Batch{}, err
	}
	b.Class = domain.RequestClass(class)
	b.Status = domain.BatchStatus(status)
	return b, nil
}

// bumpSubmitCounters feeds the daily dashboard. Counter failures are
// ignored: analytics must never block a submission.
func (a *App) bumpSubmitCounters(r *http.Request, class string) {
	day := time.Now().UTC().Format("2006-01-02")
	ctx := r.Context()
	_, _ = a.SQL.Exec(ctx, sqlinline.QBumpAnalyticsCounter, day, "submit_"+class, 1)
	if a.Geo == nil {
		return
	}
	if cc, err := a.Geo.CountryCode(clientIP(r)); err == nil && cc != "" {
		_, _ = a.SQL.Exec(ctx, sqlinline.QBumpAnalyticsCounter, day, "country_"+strings.ToLower(cc), 1)
	}
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		if idx := strings.Index(xf, ","); idx > 0 {
			return strings.TrimSpace(xf[:idx])
		}
		return strings.TrimSpace(xf)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}
