package main

import (
	"context"
	"time"

	"picturechain/internal/config"
	"picturechain/internal/db"
	"picturechain/internal/engine"
	"picturechain/internal/jobs"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// The one-shot sweep runs the same fallback pass as the serve loop. Useful
// from cron or for recovering after a job-system outage.
func newSweepCmd(logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one expiration sweep and exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				logger.Warn().Err(err).Msg("failed to load .env")
			}
			cfg := config.Load()

			conn, err := db.Open(cfg)
			if err != nil {
				return err
			}
			store := db.NewStore(conn)

			registry := jobs.NewRegistry()
			queue, err := jobs.NewQueue(cfg.RedisURL, registry, cfg.WorkerCount, logger)
			if err != nil {
				return err
			}

			eng := engine.New(store, queue, engine.LogNotifier{Log: logger}, cfg, logger)
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			return eng.PerformExpirations(ctx)
		},
	}
}
