package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	WritingTimeoutSeconds    int
	DrawingTimeoutSeconds    int
	GameTimeoutSeconds       int
	DefaultMinTurns          int
	DefaultMaxTurns          int
	SweepIntervalSeconds     int
	WorkerCount              int
	MatchTxTimeoutSeconds    int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	RedisURL                 string
}

func Default() Config {
	return Config{
		WritingTimeoutSeconds:    600,
		DrawingTimeoutSeconds:    1800,
		GameTimeoutSeconds:       604800,
		DefaultMinTurns:          4,
		DefaultMaxTurns:          12,
		SweepIntervalSeconds:     300,
		WorkerCount:              4,
		MatchTxTimeoutSeconds:    5,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		RedisURL:                 "redis://localhost:6379/0",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("WRITING_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WritingTimeoutSeconds = value
		}
	}
	if raw := os.Getenv("DRAWING_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DrawingTimeoutSeconds = value
		}
	}
	if raw := os.Getenv("GAME_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.GameTimeoutSeconds = value
		}
	}
	if raw := os.Getenv("DEFAULT_MIN_TURNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DefaultMinTurns = value
		}
	}
	if raw := os.Getenv("DEFAULT_MAX_TURNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DefaultMaxTurns = value
		}
	}
	if raw := os.Getenv("SWEEP_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SweepIntervalSeconds = value
		}
	}
	if raw := os.Getenv("WORKER_COUNT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WorkerCount = value
		}
	}
	if raw := os.Getenv("MATCH_TX_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.MatchTxTimeoutSeconds = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		cfg.RedisURL = raw
	}
	return cfg
}
