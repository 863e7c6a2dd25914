package engine

import (
	"context"

	"picturechain/internal/db"
)

// rotationAssigner owns the rotation engine. It reacts to TurnCompleted
// events for party games and creates the next player's turn. Everything here
// is best-effort: the completion that triggered it has already committed,
// and a failure only logs. The fallback sweep and moderation tooling can
// recover a stalled chain.
type rotationAssigner struct {
	engine *Engine
}

func (a *rotationAssigner) onTurnCompleted(ctx context.Context, ev TurnCompleted) {
	if ev.Game.SeasonID == nil || ev.Game.CompletedAt != nil {
		return
	}
	e := a.engine

	season, err := e.store.GetSeason(ctx, *ev.Game.SeasonID)
	if err != nil {
		e.log.Error().Err(err).Uint("game_id", ev.Game.ID).Msg("rotation: season lookup failed")
		return
	}
	roster, err := e.store.SeasonRoster(ctx, season.ID)
	if err != nil {
		e.log.Error().Err(err).Uint("season_id", season.ID).Msg("rotation: roster lookup failed")
		return
	}
	if len(roster) == 0 {
		return
	}

	// The chain position of the turn that just completed is the number of
	// surviving completed turns minus one, not its raw order index; rejected
	// and deleted turns do not advance the rotation.
	completed, err := e.store.CountCompletedTurns(ctx, ev.Game.ID)
	if err != nil {
		e.log.Error().Err(err).Uint("game_id", ev.Game.ID).Msg("rotation: count failed")
		return
	}
	pos := completed - 1
	if pos < 0 {
		return
	}

	var next uint
	if UsesMatrix(len(roster)) {
		row := 0
		if ev.Game.RotationRow != nil {
			row = *ev.Game.RotationRow
		}
		assignee, ok := NextPlayer(SeedFor(season.ID), roster, row, pos)
		if !ok {
			// Chain filled its final slot; completion is handled by the
			// ruleset's turn count.
			return
		}
		next = assignee
	} else {
		assignee, err := NextRoundRobin(roster, ev.Turn.PlayerID)
		if err != nil {
			e.log.Error().Err(err).Uint("game_id", ev.Game.ID).Uint("player_id", ev.Turn.PlayerID).
				Msg("rotation: round-robin failed")
			return
		}
		next = assignee
	}

	var turn *db.Turn
	err = e.store.InTx(ctx, func(tx db.Store) error {
		game, err := tx.GetGameAdmin(ctx, ev.Game.ID)
		if err != nil {
			return err
		}
		if game.CompletedAt != nil || game.DeletedAt.Valid {
			return nil
		}
		game.Config = ev.Game.Config
		created, err := e.createTurnTx(ctx, tx, next, game)
		if err != nil {
			return err
		}
		turn = created
		return nil
	})
	if err != nil {
		e.log.Error().Err(err).Uint("game_id", ev.Game.ID).Uint("player_id", next).
			Msg("rotation: next turn creation failed")
		return
	}
	if turn == nil {
		return
	}

	e.scheduleAfterCommit(ctx, JobTurnExpire, turn.ID, *turn.ExpiresAt)
	e.log.Info().Uint("game_id", ev.Game.ID).Uint("player_id", next).Int("order_index", turn.OrderIndex).
		Msg("rotation assigned next turn")
}
