package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/msarisk/internal/sql"
)

// Finalize runs ANALYZE on the claims tables and marks the load complete.
func Finalize(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, loadID uuid.UUID) (time.Duration, error) {
	start := time.Now()

	if _, err := pool.Exec(ctx, embedsql.AnalyzeClaims); err != nil {
		return 0, fmt.Errorf("analyze claims: %w", err)
	}
	log.Info().Msg("ANALYZE complete")

	if err := UpdateStatus(ctx, pool, loadID, "complete"); err != nil {
		return 0, fmt.Errorf("update status to complete: %w", err)
	}
	log.Info().Str("load_id", loadID.String()).Msg("load marked complete")

	return time.Since(start), nil
}
