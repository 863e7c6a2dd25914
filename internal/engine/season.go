package engine

import (
	"context"
	"time"

	"picturechain/internal/db"
)

// CreateSeason registers a party starting at startsAt. Chains are not built
// until the start deadline passes; the scheduler and the sweep both know how
// to fire it.
func (e *Engine) CreateSeason(ctx context.Context, name string, startsAt time.Time, configID *uint) (*db.Season, error) {
	if name == "" {
		return nil, ErrMissingName
	}
	var cfg *db.GameConfig
	var err error
	if configID != nil {
		cfg, err = e.store.GetConfig(ctx, *configID)
	} else {
		cfg, err = e.store.DefaultConfig(ctx, false)
	}
	if err != nil {
		return nil, err
	}

	now := e.now()
	season := &db.Season{
		Name:      name,
		ConfigID:  cfg.ID,
		StartsAt:  startsAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreateSeason(ctx, season); err != nil {
		return nil, err
	}
	season.Config = *cfg
	e.scheduleAfterCommit(ctx, JobSeasonStart, season.ID, startsAt)
	return season, nil
}

// JoinSeason records a player on the roster. Joining after the season has
// started is rejected; roster order is fixed once chains exist.
func (e *Engine) JoinSeason(ctx context.Context, seasonID, playerID uint) error {
	season, err := e.store.GetSeason(ctx, seasonID)
	if err != nil {
		return notFound(err, ErrSeasonNotFound)
	}
	if season.StartedAt != nil {
		return ErrSeasonStarted
	}
	now := e.now()
	return e.store.UpsertSeasonPlayer(ctx, &db.PlayerInSeason{
		SeasonID:  seasonID,
		PlayerID:  playerID,
		InvitedAt: now,
		JoinedAt:  &now,
	})
}

// StartSeason fires the party start deadline: one chain per rotation row is
// created, each with a pending first turn for that row's opening player.
// Rosters sequenced by the rotation matrix get one chain per member; small
// rosters run a single round-robin chain. Idempotent, so the scheduled job
// and the sweep can both fire it.
func (e *Engine) StartSeason(ctx context.Context, seasonID uint) error {
	season, err := e.store.GetSeason(ctx, seasonID)
	if err != nil {
		if notFound(err, ErrSeasonNotFound) == ErrSeasonNotFound {
			return nil
		}
		return err
	}
	if season.StartedAt != nil {
		return nil
	}
	if e.now().Before(season.StartsAt) {
		e.scheduleAfterCommit(ctx, JobSeasonStart, season.ID, season.StartsAt)
		return nil
	}

	roster, err := e.store.SeasonRoster(ctx, seasonID)
	if err != nil {
		return err
	}
	if len(roster) == 0 {
		e.log.Info().Uint("season_id", seasonID).Msg("season start deadline passed with empty roster")
		now := e.now()
		season.StartedAt = &now
		return e.store.SaveSeason(ctx, season)
	}

	rows := 1
	if UsesMatrix(len(roster)) {
		rows = len(roster)
	}

	var created []db.Turn
	var games []db.Game
	err = e.store.InTx(ctx, func(tx db.Store) error {
		for i := 0; i < rows; i++ {
			game, err := e.createGameTx(ctx, tx, &season.Config, &seasonID, ptr(i))
			if err != nil {
				return err
			}
			turn, err := e.createTurnTx(ctx, tx, roster[i], game)
			if err != nil {
				return err
			}
			created = append(created, *turn)
			games = append(games, *game)
		}
		now := e.now()
		season.StartedAt = &now
		season.UpdatedAt = now
		return tx.SaveSeason(ctx, season)
	})
	if err != nil {
		return err
	}

	for i := range created {
		e.scheduleAfterCommit(ctx, JobTurnExpire, created[i].ID, *created[i].ExpiresAt)
		e.scheduleAfterCommit(ctx, JobGameExpire, games[i].ID, *games[i].ExpiresAt)
	}
	e.log.Info().Uint("season_id", seasonID).Int("chains", rows).Int("roster", len(roster)).Msg("season started")
	return nil
}
