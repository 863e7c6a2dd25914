package engine

import (
	"context"
	"errors"
	"strings"

	"picturechain/internal/db"
)

// FlagTurn files a moderation report against a turn. The game's pending
// turns created after the flagged one are deleted in the same transaction so
// the chain cannot advance past content under review; the game itself stays
// hidden from ordinary queries until the flag resolves. A reporter may hold
// only one unresolved flag at a time, globally.
func (e *Engine) FlagTurn(ctx context.Context, turnID, reporterID uint, reason, explanation string) (*db.TurnFlag, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrMissingReason
	}

	var flag *db.TurnFlag
	err := e.store.InTx(ctx, func(tx db.Store) error {
		if _, err := tx.PendingFlagForPlayer(ctx, reporterID); err == nil {
			return ErrDuplicatePendingFlag
		} else if !errors.Is(err, db.ErrNotFound) {
			return err
		}

		turn, err := tx.GetTurnAdmin(ctx, turnID)
		if err != nil {
			return notFound(err, ErrTurnNotFound)
		}
		if err := tx.DeletePendingTurnsAfter(ctx, turn.GameID, turn.OrderIndex); err != nil {
			return err
		}

		now := e.now()
		flag = &db.TurnFlag{
			TurnID:      turn.ID,
			PlayerID:    reporterID,
			Reason:      reason,
			Explanation: explanation,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreateFlag(ctx, flag); err != nil {
			return err
		}
		e.recordEvent(ctx, tx, "turn_flagged", ptr(turn.GameID), ptr(turn.ID), ptr(reporterID), map[string]any{
			"reason": reason,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notifier.FlagCreated(ctx, *flag)
	return flag, nil
}

// ConfirmFlag upholds a report: the turn is rejected and the flag resolved
// in one transaction. A rejected turn no longer counts toward completion or
// the writing/drawing alternation, and stays visible only to admin queries.
func (e *Engine) ConfirmFlag(ctx context.Context, flagID uint, adminID *uint) (*db.TurnFlag, error) {
	var flag *db.TurnFlag
	err := e.store.InTx(ctx, func(tx db.Store) error {
		current, err := tx.GetFlag(ctx, flagID)
		if err != nil {
			return notFound(err, ErrFlagNotFound)
		}
		if current.ResolvedAt != nil {
			return ErrFlagResolved
		}
		turn, err := tx.GetTurnAdmin(ctx, current.TurnID)
		if err != nil {
			return notFound(err, ErrTurnNotFound)
		}
		if turn.RejectedAt != nil {
			return ErrTurnRejected
		}

		now := e.now()
		turn.RejectedAt = &now
		turn.UpdatedAt = now
		if err := tx.SaveTurn(ctx, turn); err != nil {
			return err
		}
		current.ResolvedAt = &now
		current.UpdatedAt = now
		if err := tx.SaveFlag(ctx, current); err != nil {
			return err
		}
		flag = current
		e.recordEvent(ctx, tx, "flag_confirmed", ptr(turn.GameID), ptr(turn.ID), adminID, map[string]any{
			"flag_id": current.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notifier.FlagResolved(ctx, *flag, true)
	return flag, nil
}

// RejectFlag dismisses a report. The turn stays valid and the game returns
// to normal visibility and matching, except that the reporter remains
// permanently excluded from rejoining it.
func (e *Engine) RejectFlag(ctx context.Context, flagID uint, adminID *uint) (*db.TurnFlag, error) {
	var flag *db.TurnFlag
	err := e.store.InTx(ctx, func(tx db.Store) error {
		current, err := tx.GetFlag(ctx, flagID)
		if err != nil {
			return notFound(err, ErrFlagNotFound)
		}
		if current.ResolvedAt != nil {
			return ErrFlagResolved
		}
		turn, err := tx.GetTurnAdmin(ctx, current.TurnID)
		if err != nil {
			return notFound(err, ErrTurnNotFound)
		}

		now := e.now()
		current.ResolvedAt = &now
		current.UpdatedAt = now
		if err := tx.SaveFlag(ctx, current); err != nil {
			return err
		}
		flag = current
		e.recordEvent(ctx, tx, "flag_rejected", ptr(turn.GameID), ptr(turn.ID), adminID, map[string]any{
			"flag_id": current.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notifier.FlagResolved(ctx, *flag, false)
	return flag, nil
}
