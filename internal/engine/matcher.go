package engine

import (
	"context"
	"errors"
	"time"

	"picturechain/internal/db"

	"github.com/jackc/pgx/v5/pgconn"
)

// MatchOptions narrows which games a player can be routed into.
type MatchOptions struct {
	Lewd     bool
	TurnType TurnType
}

// FindOrCreateTurn routes a player into the oldest eligible open game, or
// creates a fresh one when nothing qualifies. Matching and turn creation run
// in one short read-committed transaction so two players cannot take the
// same slot; eligibility is evaluated inside that transaction. Expiration
// scheduling happens after commit.
func (e *Engine) FindOrCreateTurn(ctx context.Context, playerID uint, opts MatchOptions) (*db.Turn, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.MatchTxTimeoutSeconds)*time.Second)
	defer cancel()

	turn, game, err := e.matchOnce(ctx, playerID, opts)
	if isUniqueViolation(err) {
		// Another player claimed the slot between candidate selection and
		// insert. One more pass lands on the next candidate or a new game.
		turn, game, err = e.matchOnce(ctx, playerID, opts)
	}
	if err != nil {
		return nil, err
	}

	e.scheduleAfterCommit(ctx, JobTurnExpire, turn.ID, *turn.ExpiresAt)
	if turn.OrderIndex == 0 && game.ExpiresAt != nil {
		e.scheduleAfterCommit(ctx, JobGameExpire, game.ID, *game.ExpiresAt)
	}
	return turn, nil
}

func (e *Engine) matchOnce(ctx context.Context, playerID uint, opts MatchOptions) (*db.Turn, *db.Game, error) {
	var (
		turn *db.Turn
		game *db.Game
	)
	err := e.store.InTx(ctx, func(tx db.Store) error {
		if _, err := tx.PendingTurnForPlayer(ctx, playerID); err == nil {
			return ErrPendingGameExists
		} else if !errors.Is(err, db.ErrNotFound) {
			return err
		}

		if opts.TurnType != TurnFirst {
			candidate, err := e.pickCandidate(ctx, tx, playerID, opts)
			if err != nil {
				return err
			}
			if candidate != nil {
				game = candidate
				created, err := e.createTurnTx(ctx, tx, playerID, game)
				if err != nil {
					return err
				}
				turn = created
				return nil
			}
		}

		cfg, err := tx.DefaultConfig(ctx, opts.Lewd)
		if err != nil {
			return err
		}
		created, err := e.createGameTx(ctx, tx, cfg, nil, nil)
		if err != nil {
			return err
		}
		game = created
		first, err := e.createTurnTx(ctx, tx, playerID, game)
		if err != nil {
			return err
		}
		turn = first
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return turn, game, nil
}

// pickCandidate scans open games oldest-first and returns the first one the
// player may join, or nil when none qualifies.
func (e *Engine) pickCandidate(ctx context.Context, tx db.Store, playerID uint, opts MatchOptions) (*db.Game, error) {
	candidates, err := tx.ListJoinableGames(ctx, opts.Lewd)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		candidate := &candidates[i]
		if playerHasTurn(candidate.Turns, playerID) {
			continue
		}
		flagged, err := tx.HasPlayerFlaggedGame(ctx, playerID, candidate.ID)
		if err != nil {
			return nil, err
		}
		if flagged {
			// A flagger never rejoins a game they reported, even after
			// the flag resolves.
			continue
		}
		completed := 0
		for _, t := range candidate.Turns {
			if t.Counts() {
				completed++
			}
		}
		if completed >= candidate.Config.MaxTurns {
			continue
		}
		nextIsDrawing := completed%2 == 1
		switch opts.TurnType {
		case TurnWriting:
			if nextIsDrawing {
				continue
			}
		case TurnDrawing:
			if !nextIsDrawing {
				continue
			}
		}
		return candidate, nil
	}
	return nil, nil
}

func playerHasTurn(turns []db.Turn, playerID uint) bool {
	for _, t := range turns {
		if t.PlayerID == playerID {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
