package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/msarisk/internal/db"
	"github.com/gyeh/msarisk/internal/exitcode"
	"github.com/gyeh/msarisk/internal/ingest"
	"github.com/gyeh/msarisk/internal/logging"
	"github.com/gyeh/msarisk/internal/model"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Stage parquet shards into Postgres via COPY",
	RunE:  runStage,
}

func init() {
	f := stageCmd.Flags()
	f.StringSliceVar(&cfg.Datasets, "dataset", nil, "Datasets to stage (default all)")
	f.BoolVar(&cfg.Force, "force", false, "Re-stage even if the same shard set is already loaded")
	f.BoolVar(&cfg.KeepHistory, "keep-history", false, "Keep load records older than the retention window")
	rootCmd.AddCommand(stageCmd)
}

func runStage(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.ValidateStage(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN, true)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	if _, err := db.ApplyMigrations(ctx, pool, log); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(exitcode.LoadError)
	}

	summary, err := ingest.Run(ctx, pool, log, &cfg)
	if err != nil {
		var pe *ingest.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("stage failed")
			switch pe.Phase {
			case "preflight":
				os.Exit(exitcode.ValidationError)
			case "stage":
				os.Exit(exitcode.CopyError)
			}
		}
		log.Error().Err(err).Msg("stage failed")
		os.Exit(exitcode.LoadError)
	}

	if summary.AlreadyLoaded {
		fmt.Printf("Already staged as load %s (use --force to re-stage)\n", summary.IngestBatchID)
		return nil
	}
	var total int64
	for _, ds := range model.AllDatasets {
		if n, ok := summary.RowsStaged[ds.Name]; ok {
			fmt.Printf("  %-12s %d rows\n", ds.Name, n)
			total += n
		}
	}
	fmt.Printf("Stage complete: %d rows from %d shards (%.1fs)\n",
		total, summary.ShardsRead, summary.DurationTotal.Seconds())
	return nil
}
