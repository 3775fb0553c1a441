package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/msarisk/internal/config"
	"github.com/gyeh/msarisk/internal/exitcode"
)

// cfg starts from the environment; persistent flags and --config override it.
var cfg = loadEnv()

var configPath string

var rootCmd = &cobra.Command{
	Use:   "msarisk",
	Short: "Regional health-risk profiles from claims data",
	Long: "Loads claims, member, enrollment and provider tables, computes per-MSA disease\n" +
		"prevalence, cost barriers and utilization, and serves risk profiles and\n" +
		"demographic disparity analysis over HTTP or the command line.",
	SilenceUsage:      true,
	PersistentPreRunE: applyConfigFile,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML file overriding data_dir, workers and dataset directories")
	pf.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Root directory of the parquet shards (or set DATA_DIR)")
	pf.StringVar(&cfg.DSN, "dsn", cfg.DSN, "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.Source, "source", cfg.Source, "Record source: files or postgres (or set SOURCE)")
	pf.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent shard reads per dataset (or set LOAD_WORKERS)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
}

func loadEnv() config.Config {
	c, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load environment: %v\n", err)
		os.Exit(exitcode.UsageError)
	}
	return *c
}

// applyConfigFile merges --config into cfg without overriding explicit flags.
func applyConfigFile(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		return nil
	}
	dataDir, workers := cfg.DataDir, cfg.Workers
	if err := cfg.LoadFromFile(configPath); err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	return nil
}
