package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/msarisk/internal/exitcode"
	"github.com/gyeh/msarisk/internal/ingest"
	"github.com/gyeh/msarisk/internal/logging"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run validation: list shards, hashes, row counts and schema checks (no writes)",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringSliceVar(&cfg.Datasets, "dataset", nil, "Datasets to plan (default all)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if err := cfg.ValidatePlan(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pf, err := ingest.Plan(context.Background(), log, cfg.DataDir, cfg.DatasetDirs, cfg.Datasets)
	if err != nil {
		log.Error().Err(err).Msg("plan failed")
		os.Exit(exitcode.ValidationError)
	}

	fmt.Println("=== msarisk plan ===")
	fmt.Print(pf.Describe())
	fmt.Printf("\nTotal shards: %d\n", pf.Shards())
	fmt.Println("Schema validation: OK")
	return nil
}
