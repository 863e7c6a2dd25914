package engine

import (
	"context"
	"strings"

	"picturechain/internal/db"
)

// TurnType selects which side of the writing/drawing alternation a caller
// wants, or forces a brand-new chain.
type TurnType string

const (
	TurnAny     TurnType = ""
	TurnFirst   TurnType = "first"
	TurnWriting TurnType = "writing"
	TurnDrawing TurnType = "drawing"
)

// createGameTx inserts a new game under cfg inside the current transaction.
func (e *Engine) createGameTx(ctx context.Context, tx db.Store, cfg *db.GameConfig, seasonID *uint, rotationRow *int) (*db.Game, error) {
	now := e.now()
	expires := now.Add(cfg.GameTimeout())
	game := &db.Game{
		ConfigID:    cfg.ID,
		SeasonID:    seasonID,
		RotationRow: rotationRow,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   &expires,
	}
	if err := tx.CreateGame(ctx, game); err != nil {
		return nil, err
	}
	game.Config = *cfg
	e.recordEvent(ctx, tx, "game_created", ptr(game.ID), nil, nil, map[string]any{
		"config": cfg.Name,
	})
	return game, nil
}

// createTurnTx appends a pending turn for playerID to game inside the
// current transaction. The order index is the count of all turns ever
// created in the game; the drawing role comes from the count of completed,
// non-rejected turns, which can diverge from index parity after moderation
// rejects a turn. That divergence is intended: the chain alternates based on
// what survived review, not on raw position.
func (e *Engine) createTurnTx(ctx context.Context, tx db.Store, playerID uint, game *db.Game) (*db.Turn, error) {
	total, err := tx.CountTurns(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	completed, err := tx.CountCompletedTurns(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	isDrawing := completed%2 == 1
	timeout := game.Config.WritingTimeout()
	if isDrawing {
		timeout = game.Config.DrawingTimeout()
	}
	now := e.now()
	expires := now.Add(timeout)
	turn := &db.Turn{
		GameID:     game.ID,
		PlayerID:   playerID,
		OrderIndex: total,
		IsDrawing:  isDrawing,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  &expires,
	}
	if err := tx.CreateTurn(ctx, turn); err != nil {
		return nil, err
	}
	e.recordEvent(ctx, tx, "turn_created", ptr(game.ID), ptr(turn.ID), ptr(playerID), map[string]any{
		"order_index": turn.OrderIndex,
		"is_drawing":  turn.IsDrawing,
	})
	return turn, nil
}

// CompleteTurn validates and persists a submission, completing the game when
// the ruleset's turn count is reached. Party rotation runs after commit and
// can never unwind the completion.
func (e *Engine) CompleteTurn(ctx context.Context, turnID uint, turnType TurnType, content string) (*db.Turn, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	turn, err := e.store.GetTurn(ctx, turnID)
	if err != nil {
		return nil, notFound(err, ErrTurnNotFound)
	}
	game, err := e.store.GetGame(ctx, turn.GameID)
	if err != nil {
		return nil, notFound(err, ErrGameNotFound)
	}
	if game.CompletedAt != nil {
		return nil, ErrGameCompleted
	}
	if !turn.Pending() {
		return nil, ErrTurnNotFound
	}
	if turnType != TurnWriting && turnType != TurnDrawing {
		return nil, ErrWrongTurnType
	}
	if (turnType == TurnDrawing) != turn.IsDrawing {
		return nil, ErrWrongTurnType
	}
	if turn.ExpiresAt != nil && !e.now().Before(*turn.ExpiresAt) {
		if err := e.DeleteTurnIfExpired(ctx, turnID); err != nil {
			e.log.Error().Err(err).Uint("turn_id", turnID).Msg("expiration cascade failed")
		}
		return nil, ErrTurnExpired
	}

	var gameCompleted bool
	err = e.store.InTx(ctx, func(tx db.Store) error {
		current, err := tx.GetTurnAdmin(ctx, turnID)
		if err != nil {
			return notFound(err, ErrTurnNotFound)
		}
		if !current.Pending() {
			return ErrTurnNotFound
		}
		now := e.now()
		current.Content = content
		current.CompletedAt = &now
		current.ExpiresAt = nil
		current.UpdatedAt = now
		if err := tx.SaveTurn(ctx, current); err != nil {
			return err
		}
		turn = current

		completed, err := tx.CountCompletedTurns(ctx, game.ID)
		if err != nil {
			return err
		}
		if completed >= game.Config.MaxTurns {
			game.CompletedAt = &now
			gameCompleted = true
			turns, err := tx.TurnsForGame(ctx, game.ID)
			if err != nil {
				return err
			}
			// The latest surviving drawing represents the finished chain.
			for i := len(turns) - 1; i >= 0; i-- {
				if turns[i].IsDrawing && turns[i].Counts() {
					game.PosterTurnID = ptr(turns[i].ID)
					break
				}
			}
		} else {
			expires := now.Add(game.Config.GameTimeout())
			game.ExpiresAt = &expires
		}
		game.UpdatedAt = now
		if err := tx.SaveGame(ctx, game); err != nil {
			return err
		}
		e.recordEvent(ctx, tx, "turn_completed", ptr(game.ID), ptr(turn.ID), ptr(turn.PlayerID), map[string]any{
			"order_index":    turn.OrderIndex,
			"game_completed": gameCompleted,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.cancelJob(ctx, JobTurnExpire, turn.ID)
	e.notifier.TurnCompleted(ctx, *turn)
	if gameCompleted {
		e.cancelJob(ctx, JobGameExpire, game.ID)
		e.notifier.GameCompleted(ctx, *game)
	} else {
		e.scheduleAfterCommit(ctx, JobGameExpire, game.ID, *game.ExpiresAt)
		e.bus.PublishTurnCompleted(ctx, TurnCompleted{Turn: *turn, Game: *game})
	}
	return turn, nil
}

// DeleteTurnIfExpired enacts a turn deadline. It is the shared entry point
// for scheduled jobs and the fallback sweep, so every branch is idempotent:
// a missing or completed turn is a no-op, a deadline still in the future
// just reschedules, an expired founding turn deletes the whole game, and any
// other expired turn is deleted alone to free the slot.
func (e *Engine) DeleteTurnIfExpired(ctx context.Context, turnID uint) error {
	turn, err := e.store.GetTurnAdmin(ctx, turnID)
	if err != nil {
		if notFound(err, ErrTurnNotFound) == ErrTurnNotFound {
			return nil
		}
		return err
	}
	if !turn.Pending() || turn.ExpiresAt == nil {
		return nil
	}
	if e.now().Before(*turn.ExpiresAt) {
		e.scheduleAfterCommit(ctx, JobTurnExpire, turn.ID, *turn.ExpiresAt)
		return nil
	}

	if turn.OrderIndex == 0 {
		// A chain that never got its first contribution is pointless.
		err = e.store.InTx(ctx, func(tx db.Store) error {
			if err := tx.DeleteTurn(ctx, turn.ID); err != nil {
				return err
			}
			if err := tx.SoftDeleteGame(ctx, turn.GameID); err != nil {
				return err
			}
			e.recordEvent(ctx, tx, "game_expired", ptr(turn.GameID), ptr(turn.ID), nil, map[string]any{
				"reason": "founding turn expired",
			})
			return nil
		})
		if err != nil {
			return err
		}
		e.cancelJob(ctx, JobGameExpire, turn.GameID)
		e.log.Info().Uint("game_id", turn.GameID).Uint("turn_id", turn.ID).Msg("game deleted, founding turn expired")
		return nil
	}

	err = e.store.InTx(ctx, func(tx db.Store) error {
		if err := tx.DeleteTurn(ctx, turn.ID); err != nil {
			return err
		}
		e.recordEvent(ctx, tx, "turn_expired", ptr(turn.GameID), ptr(turn.ID), ptr(turn.PlayerID), map[string]any{
			"order_index": turn.OrderIndex,
		})
		return nil
	})
	if err != nil {
		return err
	}
	e.log.Info().Uint("game_id", turn.GameID).Uint("turn_id", turn.ID).Msg("turn deleted after deadline")
	return nil
}

// ExpireGame enacts a game-level deadline, soft-deleting a chain that
// stalled before reaching its turn count. Idempotent for the same reasons as
// DeleteTurnIfExpired.
func (e *Engine) ExpireGame(ctx context.Context, gameID uint) error {
	game, err := e.store.GetGameAdmin(ctx, gameID)
	if err != nil {
		if notFound(err, ErrGameNotFound) == ErrGameNotFound {
			return nil
		}
		return err
	}
	if game.CompletedAt != nil || game.DeletedAt.Valid || game.ExpiresAt == nil {
		return nil
	}
	if e.now().Before(*game.ExpiresAt) {
		e.scheduleAfterCommit(ctx, JobGameExpire, game.ID, *game.ExpiresAt)
		return nil
	}
	err = e.store.InTx(ctx, func(tx db.Store) error {
		// Pending turns go with the game so their players can match again.
		if err := tx.DeletePendingTurnsAfter(ctx, game.ID, -1); err != nil {
			return err
		}
		if err := tx.SoftDeleteGame(ctx, game.ID); err != nil {
			return err
		}
		e.recordEvent(ctx, tx, "game_expired", ptr(game.ID), nil, nil, map[string]any{
			"reason": "game deadline passed",
		})
		return nil
	})
	if err != nil {
		return err
	}
	e.log.Info().Uint("game_id", game.ID).Msg("game deleted after deadline")
	return nil
}
