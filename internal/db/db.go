package db

import (
	"errors"
	"log"
	"os"
	"time"

	"picturechain/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres using DATABASE_URL and applies pool settings.
func Open(cfg config.Config) (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second)
	return conn, nil
}

// Migrate runs GORM auto-migrations for the core tables.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	if err := conn.AutoMigrate(
		&GameConfig{},
		&Game{},
		&Turn{},
		&TurnFlag{},
		&Season{},
		&PlayerInSeason{},
		&Event{},
	); err != nil {
		return err
	}
	log.Println("database migration complete")
	return nil
}

// SeedDefaultConfigs inserts the fallback rulesets used by non-party games,
// one per content filter, when the rows do not exist yet.
func SeedDefaultConfigs(conn *gorm.DB, cfg config.Config) error {
	for _, seed := range []struct {
		name string
		lewd bool
	}{
		{name: "default"},
		{name: "default-lewd", lewd: true},
	} {
		record := GameConfig{
			Name:                  seed.name,
			MinTurns:              cfg.DefaultMinTurns,
			MaxTurns:              cfg.DefaultMaxTurns,
			WritingTimeoutSeconds: cfg.WritingTimeoutSeconds,
			DrawingTimeoutSeconds: cfg.DrawingTimeoutSeconds,
			GameTimeoutSeconds:    cfg.GameTimeoutSeconds,
			IsLewd:                seed.lewd,
		}
		if err := conn.Where(GameConfig{Name: seed.name}).FirstOrCreate(&record).Error; err != nil {
			return err
		}
	}
	return nil
}
