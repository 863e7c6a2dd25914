package main

import (
	"errors"
	"os"

	"picturechain/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newMigrateCmd(logger zerolog.Logger) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				logger.Warn().Err(err).Msg("failed to load .env")
			}
			dsn := os.Getenv("DATABASE_URL")
			if dsn == "" {
				return errors.New("DATABASE_URL is not set")
			}
			m, err := migrate.New(source, dsn)
			if err != nil {
				return err
			}
			if err := m.Up(); err != nil && err != migrate.ErrNoChange {
				return err
			}
			logger.Info().Msg("database migrations applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "file://db/migrations", "migration source URL")
	return cmd
}
