package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"genconsole/internal/dispatch"
	"genconsole/internal/domain"
	"genconsole/internal/infra"
	"genconsole/internal/infra/keys"
	"genconsole/internal/pipeline"
	"genconsole/internal/providers/genai"
	"genconsole/internal/sqlinline"
	"genconsole/internal/storage"
)

const claimInterval = 2 * time.Second

var errNoBatchAvailable = errors.New("no batch available")

type batchWorker struct {
	runner *infra.SQLRunner
	keys   *keys.Store
	client *genai.Client
	store  *storage.FileStore
	cfg    *infra.Config
	logger infra.Logger
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	if err := sqlinline.EnsureSchema(ctx, runner); err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to apply schema")
	}

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to open storage")
	}

	w := &batchWorker{
		runner: runner,
		keys:   keys.NewStore(runner),
		client: genai.NewClient(genai.Options{BaseURL: cfg.GeminiBaseURL, Logger: &logger}),
		store:  store,
		cfg:    cfg,
		logger: logger,
	}

	logger.Info().Msg("worker started")
	w.run(ctx)
	logger.Info().Msg("worker stopped")
}

func (w *batchWorker) run(ctx context.Context) {
	ticker := time.NewTicker(claimInterval)
	defer ticker.Stop()

	for {
		batch, err := w.claim(ctx)
		switch {
		case err == nil:
			w.process(ctx, batch)
			continue
		case errors.Is(err, errNoBatchAvailable):
		case ctx.Err() != nil:
			return
		default:
			w.logger.Error().Err(err).Msg("worker: claim failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// claim moves the oldest queued batch to running and returns it. Concurrent
// workers skip each other's rows via for update skip locked.
func (w *batchWorker) claim(ctx context.Context) (domain.Batch, error) {
	row := w.runner.QueryRow(ctx, sqlinline.QClaimBatch)
	var b domain.Batch
	var class string
	if err := row.Scan(&b.ID, &class, &b.Model, &b.JobCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Batch{}, errNoBatchAvailable
		}
		return domain.Batch{}, err
	}
	b.Class = domain.RequestClass(class)
	b.Status = domain.BatchStatusRunning
	return b, nil
}

func (w *batchWorker) process(ctx context.Context, batch domain.Batch) {
	values, err := w.keys.List(ctx)
	if err != nil {
		w.logger.Error().Err(err).Str("batch_id", batch.ID).Msg("worker: failed to load api keys")
		w.finishFailed(ctx, batch)
		return
	}
	if len(values) == 0 {
		w.logger.Error().Str("batch_id", batch.ID).Msg("worker: no api keys configured")
		w.finishFailed(ctx, batch)
		return
	}

	p := &pipeline.Pipeline{
		SQL:    w.runner,
		Client: w.client,
		Store:  w.store,
		Keys:   dispatch.NewKeyPool(values),
		Cfg:    w.cfg,
		Logger: w.logger,
	}
	if err := p.ProcessBatch(ctx, batch); err != nil {
		w.logger.Error().Err(err).Str("batch_id", batch.ID).Msg("worker: batch processing failed")
	}
}

func (w *batchWorker) finishFailed(ctx context.Context, batch domain.Batch) {
	_, err := w.runner.Exec(ctx, sqlinline.QFinishBatch, batch.ID, 0, batch.JobCount, string(domain.BatchStatusFailed))
	if err != nil {
		w.logger.Error().Err(err).Str("batch_id", batch.ID).Msg("worker: failed to mark batch failed")
	}
}
