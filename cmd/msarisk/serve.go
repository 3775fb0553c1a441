package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/msarisk/internal/api"
	"github.com/gyeh/msarisk/internal/exitcode"
	"github.com/gyeh/msarisk/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the data and serve the HTTP API",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&cfg.Port, "port", cfg.Port, "Listen port (or set PORT)")
	f.StringSliceVar(&cfg.CORSOrigins, "cors-origin", cfg.CORSOrigins, "Allowed CORS origins (or set CORS_ORIGINS)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, closeSrc := mustLoadEngine(ctx, log, newNarrative(log))
	defer closeSrc()

	srv := api.New(eng, api.Options{CORSOrigins: cfg.CORSOrigins}, logging.Component(log, "http"))
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(exitcode.UsageError)
	}
	return nil
}
