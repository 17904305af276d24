package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"genconsole/internal/dispatch"
	"genconsole/internal/domain"
	"genconsole/internal/infra"
	"genconsole/internal/metadata"
	"genconsole/internal/providers/genai"
	"genconsole/internal/sqlinline"
	"genconsole/internal/storage"
)

// Backend is the slice of the generative client the pipeline drives.
type Backend interface {
	GenerateText(ctx context.Context, key, model, prompt string) (string, error)
	GenerateImages(ctx context.Context, key, model string, req genai.ImageRequest) ([]genai.ImageAsset, error)
	StartVideo(ctx context.Context, key, model string, req genai.VideoRequest) (*genai.Operation, error)
	GetOperation(ctx context.Context, key, name string) (*genai.Operation, error)
	Download(ctx context.Context, key, uri string) ([]byte, string, error)
}

// Pipeline turns one claimed batch into stored artifacts: dispatch each job
// with key rotation and model fallback, poll video operations, enrich
// metadata, optionally upscale, and persist the results.
type Pipeline struct {
	SQL    infra.SQLExecutor
	Client Backend
	Store  *storage.FileStore
	Keys   *dispatch.KeyPool
	Cfg    *infra.Config
	Logger infra.Logger
}

// videoStart carries the operation handle together with the key that opened
// it, so polling and download reuse the same quota bucket.
type videoStart struct {
	op  *genai.Operation
	key string
}

type genOutcome struct {
	artifacts []domain.Artifact
}

// ProcessBatch runs every job of a batch in submission order and records the
// terminal batch state. Job failures are aggregated, never propagated; the
// returned error covers batch-level bookkeeping only.
func (p *Pipeline) ProcessBatch(ctx context.Context, batch domain.Batch) error {
	jobs, err := p.loadJobs(ctx, batch.ID)
	if err != nil {
		return fmt.Errorf("load jobs: %w", err)
	}

	notifier := &noticeRecorder{sql: p.SQL, batchID: batch.ID, logger: p.Logger}
	generate := p.dispatcher(batch.Class, batch.Model, notifier)
	enricher := &metadata.Enricher{
		Client:     p.Client,
		Dispatcher: p.dispatcher(domain.ClassText, "", notifier),
	}

	res := dispatch.RunQueue(ctx, notifier, jobs, func(ctx context.Context, job domain.Job) (genOutcome, error) {
		out, err := p.runJob(ctx, generate, enricher, notifier, job)
		p.recordJobOutcome(ctx, job.ID, err)
		return out, err
	})

	succeeded := len(res.Succeeded)
	status := domain.BatchStatusSucceeded
	switch {
	case succeeded == 0 && res.Failed > 0:
		status = domain.BatchStatusFailed
	case res.Failed > 0:
		status = domain.BatchStatusPartial
	}
	if _, err := p.SQL.Exec(ctx, sqlinline.QFinishBatch, batch.ID, succeeded, res.Failed, string(status)); err != nil {
		return fmt.Errorf("finish batch: %w", err)
	}
	p.bumpCounter(ctx, "batches", 1)
	return nil
}

// dispatcher assembles the per-class dispatcher. The key pool is shared
// across classes and batches; model cooldowns are scoped to the batch run,
// which is the unit of work the console observes.
func (p *Pipeline) dispatcher(class domain.RequestClass, preferred string, notifier dispatch.Notifier) *dispatch.Dispatcher {
	return &dispatch.Dispatcher{
		Keys:          p.Keys,
		Models:        dispatch.NewFallback(preferred, p.Cfg.ModelsFor(string(class))),
		Notify:        notifier,
		ModelCooldown: p.Cfg.ModelCooldown,
		Retry: dispatch.RetryPolicy{
			MaxAttempts: dispatch.DefaultMaxAttempts,
			BaseDelay:   p.Cfg.RetryBaseDelay,
		},
	}
}

func (p *Pipeline) loadJobs(ctx context.Context, batchID string) ([]domain.Job, error) {
	rows, err := p.SQL.Query(ctx, sqlinline.QSelectBatchJobs, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var jobs []domain.Job
	for rows.Next() {
		var j domain.Job
		var class string
		if err := rows.Scan(&j.ID, &j.BatchID, &j.Position, &j.Prompt, &class, &j.Quantity, &j.AspectRatio, &j.Model, &j.ReferenceImage, &j.Upscale, &j.Enrich); err != nil {
			return nil, err
		}
		j.Class = domain.RequestClass(class)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (p *Pipeline) runJob(ctx context.Context, generate *dispatch.Dispatcher, enricher *metadata.Enricher, notifier dispatch.Notifier, job domain.Job) (genOutcome, error) {
	switch job.Class {
	case domain.ClassImage:
		return p.runImageJob(ctx, generate, enricher, notifier, job)
	case domain.ClassVideo:
		return p.runVideoJob(ctx, generate, enricher, notifier, job)
	case domain.ClassText:
		return p.runTextJob(ctx, generate, job)
	default:
		return genOutcome{}, fmt.Errorf("unsupported request class %q", job.Class)
	}
}

type imageResult struct {
	assets []genai.ImageAsset
	model  string
}

func (p *Pipeline) runImageJob(ctx context.Context, generate *dispatch.Dispatcher, enricher *metadata.Enricher, notifier dispatch.Notifier, job domain.Job) (genOutcome, error) {
	result, err := dispatch.Do(ctx, generate, func(key, model string) func(context.Context) (imageResult, error) {
		return func(ctx context.Context) (imageResult, error) {
			assets, err := p.Client.GenerateImages(ctx, key, model, genai.ImageRequest{
				Prompt:      job.Prompt,
				Quantity:    job.Quantity,
				AspectRatio: job.AspectRatio,
				Reference:   job.ReferenceImage,
			})
			return imageResult{assets: assets, model: model}, err
		}
	})
	if err != nil {
		return genOutcome{}, err
	}

	var out genOutcome
	for idx, asset := range result.assets {
		if job.Upscale {
			asset = p.upscale(ctx, generate, notifier, job, asset)
		}
		artifact := domain.Artifact{
			JobID:    job.ID,
			BatchID:  job.BatchID,
			Kind:     domain.ArtifactKindImage,
			Model:    result.model,
			Prompt:   job.Prompt,
			MIME:     asset.MIME,
			Bytes:    int64(len(asset.Data)),
			Width:    asset.Width,
			Height:   asset.Height,
			Upscaled: job.Upscale,
		}
		if job.Enrich {
			artifact.Metadata = p.enrich(ctx, enricher, notifier, job.Prompt)
		}
		stored, err := p.persistArtifact(ctx, &artifact, asset.Data, idx)
		if err != nil {
			return genOutcome{}, err
		}
		out.artifacts = append(out.artifacts, stored)
		p.bumpCounter(ctx, "artifacts_image", 1)
	}
	return out, nil
}

func (p *Pipeline) runVideoJob(ctx context.Context, generate *dispatch.Dispatcher, enricher *metadata.Enricher, notifier dispatch.Notifier, job domain.Job) (genOutcome, error) {
	start, err := dispatch.Do(ctx, generate, func(key, model string) func(context.Context) (videoStart, error) {
		return func(ctx context.Context) (videoStart, error) {
			op, err := p.Client.StartVideo(ctx, key, model, genai.VideoRequest{
				Prompt:      job.Prompt,
				AspectRatio: job.AspectRatio,
			})
			return videoStart{op: op, key: key}, err
		}
	})
	if err != nil {
		return genOutcome{}, err
	}

	notifier.Notify(dispatch.SeverityInfo, "video operation started, waiting for completion")
	final, err := dispatch.Await(ctx, start.op,
		func(ctx context.Context, op *genai.Operation) (*genai.Operation, error) {
			return p.Client.GetOperation(ctx, start.key, op.Name)
		},
		func(op *genai.Operation) bool { return op.Done },
		p.Cfg.PollInterval,
	)
	if err != nil {
		return genOutcome{}, err
	}
	if len(final.URIs) == 0 {
		return genOutcome{}, fmt.Errorf("video operation completed without results")
	}

	var out genOutcome
	for idx, uri := range final.URIs {
		data, mime, err := p.Client.Download(ctx, start.key, uri)
		if err != nil {
			return genOutcome{}, err
		}
		if mime == "" {
			mime = "video/mp4"
		}
		artifact := domain.Artifact{
			JobID:   job.ID,
			BatchID: job.BatchID,
			Kind:    domain.ArtifactKindVideo,
			Prompt:  job.Prompt,
			MIME:    mime,
			Bytes:   int64(len(data)),
		}
		if job.Enrich {
			artifact.Metadata = p.enrich(ctx, enricher, notifier, job.Prompt)
		}
		stored, err := p.persistArtifact(ctx, &artifact, data, idx)
		if err != nil {
			return genOutcome{}, err
		}
		out.artifacts = append(out.artifacts, stored)
		p.bumpCounter(ctx, "artifacts_video", 1)
	}
	return out, nil
}

func (p *Pipeline) runTextJob(ctx context.Context, generate *dispatch.Dispatcher, job domain.Job) (genOutcome, error) {
	text, err := dispatch.Do(ctx, generate, func(key, model string) func(context.Context) (string, error) {
		return func(ctx context.Context) (string, error) {
			return p.Client.GenerateText(ctx, key, model, job.Prompt)
		}
	})
	if err != nil {
		return genOutcome{}, err
	}
	artifact := domain.Artifact{
		JobID:   job.ID,
		BatchID: job.BatchID,
		Kind:    domain.ArtifactKindText,
		Prompt:  job.Prompt,
		MIME:    "text/plain",
		Bytes:   int64(len(text)),
	}
	stored, err := p.persistArtifact(ctx, &artifact, []byte(text), 0)
	if err != nil {
		return genOutcome{}, err
	}
	return genOutcome{artifacts: []domain.Artifact{stored}}, nil
}

// upscale runs an enhancement dispatch with the generated image as reference.
// Failures keep the original asset; the batch should not lose an artifact to
// a failed post-processing step.
func (p *Pipeline) upscale(ctx context.Context, generate *dispatch.Dispatcher, notifier dispatch.Notifier, job domain.Job, asset genai.ImageAsset) genai.ImageAsset {
	enhanced, err := dispatch.Do(ctx, generate, func(key, model string) func(context.Context) (genai.ImageAsset, error) {
		return func(ctx context.Context) (genai.ImageAsset, error) {
			assets, err := p.Client.GenerateImages(ctx, key, model, genai.ImageRequest{
				Prompt:        "Upscale this image to a higher resolution, preserving every detail.",
				Quantity:      1,
				Reference:     asset.Data,
				ReferenceMIME: asset.MIME,
			})
			if err != nil {
				return genai.ImageAsset{}, err
			}
			if len(assets) == 0 {
				return genai.ImageAsset{}, fmt.Errorf("no upscaled image returned")
			}
			return assets[0], nil
		}
	})
	if err != nil {
		notifier.Notify(dispatch.SeverityError, fmt.Sprintf("upscale failed, keeping original: %v", err))
		return asset
	}
	return enhanced
}

// enrich derives metadata for an artifact. Enrichment failures are notices,
// not job failures.
func (p *Pipeline) enrich(ctx context.Context, enricher *metadata.Enricher, notifier dispatch.Notifier, prompt string) domain.Metadata {
	meta, err := enricher.Enrich(ctx, prompt)
	if err != nil {
		notifier.Notify(dispatch.SeverityError, fmt.Sprintf("metadata enrichment failed: %v", err))
		return domain.Metadata{}
	}
	return meta
}

func (p *Pipeline) persistArtifact(ctx context.Context, artifact *domain.Artifact, data []byte, index int) (domain.Artifact, error) {
	key := fmt.Sprintf("batches/%s/%s-%02d.%s", artifact.BatchID, artifact.JobID, index+1, extFromMIME(artifact.MIME))
	savedKey, err := p.Store.Write(ctx, key, data)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("persist artifact: %w", err)
	}
	artifact.StorageKey = savedKey

	metaJSON, err := json.Marshal(artifact.Metadata)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("marshal metadata: %w", err)
	}
	row := p.SQL.QueryRow(ctx, sqlinline.QInsertArtifact,
		artifact.JobID,
		artifact.BatchID,
		string(artifact.Kind),
		artifact.Model,
		artifact.Prompt,
		artifact.StorageKey,
		artifact.MIME,
		artifact.Bytes,
		artifact.Width,
		artifact.Height,
		artifact.Upscaled,
		metaJSON,
	)
	if err := row.Scan(&artifact.ID); err != nil {
		return domain.Artifact{}, fmt.Errorf("insert artifact: %w", err)
	}
	return *artifact, nil
}

func (p *Pipeline) recordJobOutcome(ctx context.Context, jobID string, jobErr error) {
	status := "succeeded"
	message := ""
	if jobErr != nil {
		status = "failed"
		message = jobErr.Error()
	}
	if _, err := p.SQL.Exec(ctx, sqlinline.QUpdateJobOutcome, jobID, status, message); err != nil {
		p.Logger.Error().Err(err).Str("job_id", jobID).Msg("pipeline: update job outcome failed")
	}
}

func (p *Pipeline) bumpCounter(ctx context.Context, name string, delta int) {
	day := time.Now().UTC().Format("2006-01-02")
	if _, err := p.SQL.Exec(ctx, sqlinline.QBumpAnalyticsCounter, day, name, delta); err != nil {
		p.Logger.Warn().Err(err).Str("counter", name).Msg("pipeline: bump analytics counter failed")
	}
}

func extFromMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "video/mp4":
		return "mp4"
	case "text/plain":
		return "txt"
	default:
		return "bin"
	}
}

// noticeRecorder persists progress notices per batch and mirrors them into
// the worker log. Persistence failures downgrade to log-only; progress must
// never fail a batch.
type noticeRecorder struct {
	sql     infra.SQLExecutor
	batchID string
	logger  infra.Logger
}

func (n *noticeRecorder) Notify(severity dispatch.Severity, message string) {
	event := n.logger.Info()
	if severity == dispatch.SeverityError {
		event = n.logger.Error()
	}
	event.Str("batch_id", n.batchID).Msg(message)

	if _, err := n.sql.Exec(context.Background(), sqlinline.QInsertNotice, n.batchID, string(severity), message); err != nil {
		n.logger.Warn().Err(err).Str("batch_id", n.batchID).Msg("pipeline: persist notice failed")
	}
}
