package engine

import "context"

// PerformExpirations is the fallback sweep: it recomputes every expiration
// that should already have fired and enacts it through the same idempotent
// entry points the scheduled jobs use. Safe to call repeatedly and from
// multiple processes; job delivery is only best-effort, so this pull path
// must independently produce correct outcomes.
func (e *Engine) PerformExpirations(ctx context.Context) error {
	now := e.now()

	turns, err := e.store.ListExpiredTurns(ctx, now)
	if err != nil {
		return err
	}
	for _, turn := range turns {
		if err := e.DeleteTurnIfExpired(ctx, turn.ID); err != nil {
			e.log.Error().Err(err).Uint("turn_id", turn.ID).Msg("sweep: turn expiration failed")
		}
	}

	games, err := e.store.ListExpiredGames(ctx, now)
	if err != nil {
		return err
	}
	for _, game := range games {
		if err := e.ExpireGame(ctx, game.ID); err != nil {
			e.log.Error().Err(err).Uint("game_id", game.ID).Msg("sweep: game expiration failed")
		}
	}

	seasons, err := e.store.ListDueSeasons(ctx, now)
	if err != nil {
		return err
	}
	for _, season := range seasons {
		if err := e.StartSeason(ctx, season.ID); err != nil {
			e.log.Error().Err(err).Uint("season_id", season.ID).Msg("sweep: season start failed")
		}
	}
	return nil
}

// RegisterJobHandlers binds the engine's expiration entry points to the
// job registry. Construct the registry once in the composition root and
// register before the consumers start.
func (e *Engine) RegisterJobHandlers(register func(kind string, handler func(ctx context.Context, entityID uint) error) error) error {
	if err := register(JobTurnExpire, e.DeleteTurnIfExpired); err != nil {
		return err
	}
	if err := register(JobGameExpire, e.ExpireGame); err != nil {
		return err
	}
	return register(JobSeasonStart, e.StartSeason)
}
