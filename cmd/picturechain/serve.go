package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"picturechain/internal/config"
	"picturechain/internal/db"
	"picturechain/internal/engine"
	"picturechain/internal/jobs"
	"picturechain/internal/server"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd(logger zerolog.Logger) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine with its HTTP surface, job consumers and fallback sweep.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(logger, port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port")
	return cmd
}

func serve(logger zerolog.Logger, port int) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		logger.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()

	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}
	if err := db.SeedDefaultConfigs(conn, cfg); err != nil {
		return err
	}
	store := db.NewStore(conn)

	registry := jobs.NewRegistry()
	queue, err := jobs.NewQueue(cfg.RedisURL, registry, cfg.WorkerCount, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := queue.Ping(ctx); err != nil {
		logger.Warn().Err(err).Msg("job system unreachable at startup, sweep will cover")
	}

	notifier := engine.LogNotifier{Log: logger}
	eng := engine.New(store, queue, notifier, cfg, logger)
	if err := eng.RegisterJobHandlers(func(kind string, handler func(ctx context.Context, entityID uint) error) error {
		return registry.Register(kind, handler)
	}); err != nil {
		return err
	}

	queue.Start(ctx)
	sweeper := jobs.NewSweeper(time.Duration(cfg.SweepIntervalSeconds)*time.Second, eng.PerformExpirations, logger)
	go sweeper.Start(ctx)

	srv := server.New(eng, store, logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: srv.Router(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	logger.Info().Int("port", port).Msg("picturechain listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	queue.Stop()
	return nil
}
