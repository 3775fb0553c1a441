package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/msarisk/internal/sql"
)

// HistoryDays is how long finished load records are kept.
const HistoryDays = 30

// Cleanup deletes finished load records older than HistoryDays, keeping the
// current load.
func Cleanup(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, keep uuid.UUID) error {
	start := time.Now()

	tag, err := pool.Exec(ctx, embedsql.PruneLoads, keep, int32(HistoryDays))
	if err != nil {
		return err
	}

	log.Info().
		Int64("loads_deleted", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("load history cleanup complete")

	return nil
}
