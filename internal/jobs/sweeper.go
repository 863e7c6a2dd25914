package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically runs the engine's fallback sweep. Scheduled delivery
// is push, the sweeper is pull; either path alone produces correct
// expiration outcomes, so a job-system outage or process restart only delays
// them.
type Sweeper struct {
	interval time.Duration
	run      func(ctx context.Context) error
	log      zerolog.Logger
}

func NewSweeper(interval time.Duration, run func(ctx context.Context) error, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{interval: interval, run: run, log: logger}
}

// Start blocks until ctx is done, sweeping once immediately and then on
// every tick. Run it in its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	if err := s.run(ctx); err != nil {
		s.log.Error().Err(err).Msg("sweep failed")
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.run(ctx); err != nil {
				s.log.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}
