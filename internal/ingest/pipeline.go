package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/msarisk/internal/config"
	"github.com/gyeh/msarisk/internal/model"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run executes the full staging pipeline: preflight → stage → finalize →
// cleanup.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config) (*model.IngestSummary, error) {
	totalStart := time.Now()

	// Phase 1: Preflight
	log.Info().Str("root", cfg.DataDir).Strs("datasets", cfg.Datasets).Msg("starting preflight")
	pf, err := Preflight(ctx, pool, log, cfg.DataDir, cfg.DatasetDirs, cfg.Datasets, cfg.Force)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}

	if pf.AlreadyLoaded {
		log.Info().
			Str("load_id", pf.IngestBatchID.String()).
			Str("fingerprint", pf.Fingerprint).
			Msg("shards already staged, skipping (use --force to re-stage)")
		return &model.IngestSummary{
			IngestBatchID: pf.IngestBatchID.String(),
			Fingerprint:   pf.Fingerprint,
			AlreadyLoaded: true,
			ShardsRead:    pf.Shards(),
			DurationTotal: time.Since(totalStart),
		}, nil
	}

	// Phase 2: Stage
	log.Info().Msg("starting staging")
	if err := UpdateStatus(ctx, pool, pf.IngestBatchID, "staging"); err != nil {
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	stageResult, err := Stage(ctx, pool, log, pf)
	if err != nil {
		_ = UpdateStatus(context.WithoutCancel(ctx), pool, pf.IngestBatchID, "failed")
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	if err := UpdateStatus(ctx, pool, pf.IngestBatchID, "staged"); err != nil {
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	// Phase 3: Finalize
	log.Info().Msg("finalizing")
	if _, err := Finalize(ctx, pool, log, pf.IngestBatchID); err != nil {
		_ = UpdateStatus(context.WithoutCancel(ctx), pool, pf.IngestBatchID, "failed")
		return nil, &PipelineError{Phase: "finalize", Err: err}
	}

	// Phase 4: Cleanup load history
	if !cfg.KeepHistory {
		log.Info().Msg("pruning load history")
		if err := Cleanup(ctx, pool, log, pf.IngestBatchID); err != nil {
			log.Warn().Err(err).Msg("load history cleanup failed (non-fatal)")
		}
	}

	summary := &model.IngestSummary{
		IngestBatchID: pf.IngestBatchID.String(),
		Fingerprint:   pf.Fingerprint,
		ShardsRead:    pf.Shards(),
		RowsStaged:    stageResult.RowsStaged,
		DurationStage: stageResult.Duration,
		DurationTotal: time.Since(totalStart),
	}

	ev := log.Info()
	for name, n := range summary.RowsStaged {
		ev = ev.Int64("rows_"+name, n)
	}
	ev.Int("shards", summary.ShardsRead).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("ingest pipeline complete")

	return summary, nil
}
