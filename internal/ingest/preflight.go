package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/msarisk/internal/model"
	"github.com/gyeh/msarisk/internal/parquetread"
	embedsql "github.com/gyeh/msarisk/internal/sql"
	"github.com/gyeh/msarisk/internal/store"
)

// ShardInfo describes one parquet shard found during planning.
type ShardInfo struct {
	Path    string
	SHA256  string
	Size    int64
	NumRows int64
}

// DatasetPlan lists the shards of one dataset.
type DatasetPlan struct {
	Dataset model.Dataset
	Shards  []ShardInfo
	NumRows int64
}

// PreflightResult holds all context resolved during the preflight phase.
type PreflightResult struct {
	// Root is the data directory the shards were found under.
	Root string
	// Datasets holds one plan per dataset, in the order requested.
	Datasets []DatasetPlan
	// Fingerprint is the SHA-256 over every shard's dataset, base name and
	// digest. Identical shard sets produce the same fingerprint.
	Fingerprint string
	// IngestBatchID is a freshly generated UUIDv4 that identifies this run in
	// claims.loads. Zero for dry-run plans.
	IngestBatchID uuid.UUID
	// AlreadyLoaded is true when a completed load with the same fingerprint
	// exists and force mode is off.
	AlreadyLoaded bool
}

// Shards returns the total shard count across datasets.
func (p *PreflightResult) Shards() int {
	n := 0
	for _, d := range p.Datasets {
		n += len(d.Shards)
	}
	return n
}

// Plan lists, hashes and schema-checks the shards of the named datasets
// without touching the database.
func Plan(ctx context.Context, log zerolog.Logger, root string, dirs map[string]string, names []string) (*PreflightResult, error) {
	start := time.Now()
	src := &store.FileSource{Root: root, Dirs: dirs}

	result := &PreflightResult{Root: root}
	fp := sha256.New()
	for _, name := range names {
		ds, ok := model.DatasetByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown dataset %q", name)
		}
		paths, err := src.Shards(ds)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ds.Name, err)
		}

		plan := DatasetPlan{Dataset: ds}
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			shard, err := inspectShard(path, ds.Required)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", ds.Name, err)
			}
			plan.Shards = append(plan.Shards, shard)
			plan.NumRows += shard.NumRows
			fmt.Fprintf(fp, "%s/%s:%s\n", ds.Name, filepath.Base(path), shard.SHA256)
		}
		log.Info().
			Str("dataset", ds.Name).
			Int("shards", len(plan.Shards)).
			Int64("rows", plan.NumRows).
			Msg("dataset planned")
		result.Datasets = append(result.Datasets, plan)
	}
	result.Fingerprint = fmt.Sprintf("%x", fp.Sum(nil))

	log.Info().
		Int("shards", result.Shards()).
		Str("fingerprint", result.Fingerprint).
		Dur("duration", time.Since(start)).
		Msg("plan complete")
	return result, nil
}

// hashShard returns the hex SHA-256 of a shard and the number of bytes read.
func hashShard(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open shard: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func inspectShard(path string, required []string) (ShardInfo, error) {
	sha, size, err := hashShard(path)
	if err != nil {
		return ShardInfo{}, err
	}
	numRows, schema, err := parquetread.Inspect(path)
	if err != nil {
		return ShardInfo{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := parquetread.ValidateSchema(schema, required); err != nil {
		return ShardInfo{}, fmt.Errorf("%s: %w", path, err)
	}
	return ShardInfo{Path: path, SHA256: sha, Size: size, NumRows: numRows}, nil
}

// Preflight plans the shards, checks whether the same shard set is already
// loaded, and registers a new load.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, root string, dirs map[string]string, names []string, force bool) (*PreflightResult, error) {
	pf, err := Plan(ctx, log, root, dirs, names)
	if err != nil {
		return nil, err
	}

	var existing uuid.UUID
	err = pool.QueryRow(ctx, embedsql.LookupLoad, pf.Fingerprint).Scan(&existing)
	switch {
	case err == nil && !force:
		pf.IngestBatchID = existing
		pf.AlreadyLoaded = true
		return pf, nil
	case err != nil && !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("lookup load: %w", err)
	}

	pf.IngestBatchID = uuid.New()
	if err := registerLoad(ctx, pool, pf); err != nil {
		return nil, err
	}
	return pf, nil
}

func registerLoad(ctx context.Context, pool *pgxpool.Pool, pf *PreflightResult) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin register: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, embedsql.RegisterLoad, pf.IngestBatchID, pf.Fingerprint, pf.Root); err != nil {
		return fmt.Errorf("register load: %w", err)
	}
	for _, d := range pf.Datasets {
		for _, s := range d.Shards {
			if _, err := tx.Exec(ctx, embedsql.RecordShard,
				pf.IngestBatchID, d.Dataset.Name, s.Path, s.SHA256, s.Size, s.NumRows,
			); err != nil {
				return fmt.Errorf("record shard %s: %w", s.Path, err)
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit register: %w", err)
	}
	return nil
}

// Describe renders the plan as a human-readable table.
func (p *PreflightResult) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "root:        %s\n", p.Root)
	fmt.Fprintf(&b, "fingerprint: %s\n", p.Fingerprint)
	for _, d := range p.Datasets {
		fmt.Fprintf(&b, "\n%s (%d shards, %d rows)\n", d.Dataset.Name, len(d.Shards), d.NumRows)
		for _, s := range d.Shards {
			fmt.Fprintf(&b, "  %-40s %10d rows  %s\n", filepath.Base(s.Path), s.NumRows, s.SHA256[:12])
		}
	}
	return b.String()
}
