package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/msarisk/internal/db"
	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/parquetread"
	embedsql "github.com/gyeh/msarisk/internal/sql"
)

const readBatchSize = 1024

// StageResult holds metrics from the staging phase.
type StageResult struct {
	RowsStaged map[string]int64
	Duration   time.Duration
}

// Stage replaces the contents of every planned claims table with the rows of
// its shards. All datasets are written in one transaction, so readers see
// either the previous load or this one.
func Stage(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, pf *PreflightResult) (*StageResult, error) {
	start := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin stage: %w", err)
	}
	defer tx.Rollback(ctx)

	result := &StageResult{RowsStaged: make(map[string]int64)}
	for _, plan := range pf.Datasets {
		if _, err := tx.Exec(ctx, "TRUNCATE "+pgx.Identifier{"claims", plan.Dataset.Table}.Sanitize()); err != nil {
			return nil, fmt.Errorf("truncate %s: %w", plan.Dataset.Table, err)
		}

		dsStart := time.Now()
		var n int64
		switch plan.Dataset.Name {
		case model.Services.Name:
			n, err = copyDataset[model.ServiceRow](ctx, tx, plan)
		case model.Members.Name:
			n, err = copyDataset[model.MemberRow](ctx, tx, plan)
		case model.Enrollment.Name:
			n, err = copyDataset[model.EnrollmentRow](ctx, tx, plan)
		case model.Providers.Name:
			n, err = copyDataset[model.ProviderRow](ctx, tx, plan)
		default:
			err = fmt.Errorf("no stager for dataset %q", plan.Dataset.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", plan.Dataset.Name, err)
		}
		if n != plan.NumRows {
			return nil, fmt.Errorf("stage %s: copied %d rows, shards report %d", plan.Dataset.Name, n, plan.NumRows)
		}

		dur := time.Since(dsStart)
		log.Info().
			Str("dataset", plan.Dataset.Name).
			Int64("rows_staged", n).
			Str("duration", dur.String()).
			Float64("rows_per_sec", float64(n)/dur.Seconds()).
			Msg("dataset staged")
		result.RowsStaged[plan.Dataset.Name] = n
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit stage: %w", err)
	}
	result.Duration = time.Since(start)
	return result, nil
}

// copyDataset streams every shard of plan through a channel into COPY.
func copyDataset[T any, PT interface {
	*T
	model.CopyRow
}](ctx context.Context, tx pgx.Tx, plan DatasetPlan) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan model.CopyRow, readBatchSize)
	errCh := make(chan error, 1)

	// Producer goroutine: read Parquet shards in order → push to channel
	go func() {
		defer close(ch)
		buf := make([]T, readBatchSize)
		for _, shard := range plan.Shards {
			if err := produceShard[T, PT](ctx, shard.Path, buf, ch); err != nil {
				errCh <- err
				return
			}
		}
		errCh <- nil
	}()

	// Consumer: COPY from channel into the dataset table
	source := db.NewChannelSource(ch)
	n, copyErr := tx.CopyFrom(ctx,
		pgx.Identifier{"claims", plan.Dataset.Table},
		plan.Dataset.Columns(),
		source,
	)
	if copyErr != nil {
		// Unblock the producer if COPY stopped early.
		cancel()
		for range ch {
		}
	}

	// Wait for producer to finish
	if prodErr := <-errCh; prodErr != nil && copyErr == nil {
		return 0, fmt.Errorf("stage producer: %w", prodErr)
	}
	if copyErr != nil {
		return 0, fmt.Errorf("stage copy: %w", copyErr)
	}
	return n, nil
}

func produceShard[T any, PT interface {
	*T
	model.CopyRow
}](ctx context.Context, path string, buf []T, ch chan<- model.CopyRow) error {
	reader, err := parquetread.Open[T](path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer reader.Close()

	var rowNum int64
	for {
		n, readErr := reader.Read(buf)
		for i := 0; i < n; i++ {
			rowNum++
			row := buf[i]
			select {
			case ch <- PT(&row):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read %s at row %d: %w", path, rowNum, readErr)
		}
	}
}

// UpdateStatus updates a load's status in claims.loads.
func UpdateStatus(ctx context.Context, pool *pgxpool.Pool, loadID uuid.UUID, status string) error {
	_, err := pool.Exec(ctx, embedsql.UpdateLoadStatus, loadID, status)
	return err
}
