package db

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record is not found or is hidden from the
// requesting scope.
var ErrNotFound = gorm.ErrRecordNotFound

// Store is the transactional persistence surface consumed by the engine.
// Player-facing reads go through a visibility scope that hides soft-deleted
// games and games with an unresolved flag; Admin variants bypass it.
type Store interface {
	// InTx runs fn inside a read-committed transaction. The Store handed to
	// fn is scoped to that transaction.
	InTx(ctx context.Context, fn func(Store) error) error

	DefaultConfig(ctx context.Context, lewd bool) (*GameConfig, error)
	GetConfig(ctx context.Context, id uint) (*GameConfig, error)

	CreateGame(ctx context.Context, game *Game) error
	GetGame(ctx context.Context, id uint) (*Game, error)
	GetGameAdmin(ctx context.Context, id uint) (*Game, error)
	SaveGame(ctx context.Context, game *Game) error
	SoftDeleteGame(ctx context.Context, id uint) error
	ListJoinableGames(ctx context.Context, lewd bool) ([]Game, error)
	ListExpiredGames(ctx context.Context, now time.Time) ([]Game, error)

	CreateTurn(ctx context.Context, turn *Turn) error
	GetTurn(ctx context.Context, id uint) (*Turn, error)
	GetTurnAdmin(ctx context.Context, id uint) (*Turn, error)
	SaveTurn(ctx context.Context, turn *Turn) error
	DeleteTurn(ctx context.Context, id uint) error
	TurnsForGame(ctx context.Context, gameID uint) ([]Turn, error)
	PendingTurnForPlayer(ctx context.Context, playerID uint) (*Turn, error)
	CountTurns(ctx context.Context, gameID uint) (int, error)
	CountCompletedTurns(ctx context.Context, gameID uint) (int, error)
	DeletePendingTurnsAfter(ctx context.Context, gameID uint, orderIndex int) error
	ListExpiredTurns(ctx context.Context, now time.Time) ([]Turn, error)

	CreateFlag(ctx context.Context, flag *TurnFlag) error
	GetFlag(ctx context.Context, id uint) (*TurnFlag, error)
	SaveFlag(ctx context.Context, flag *TurnFlag) error
	PendingFlagForPlayer(ctx context.Context, playerID uint) (*TurnFlag, error)
	HasPlayerFlaggedGame(ctx context.Context, playerID, gameID uint) (bool, error)
	HasUnresolvedFlag(ctx context.Context, gameID uint) (bool, error)

	CreateSeason(ctx context.Context, season *Season) error
	GetSeason(ctx context.Context, id uint) (*Season, error)
	SaveSeason(ctx context.Context, season *Season) error
	SeasonRoster(ctx context.Context, seasonID uint) ([]uint, error)
	SeasonChains(ctx context.Context, seasonID uint) ([]Game, error)
	ListDueSeasons(ctx context.Context, now time.Time) ([]Season, error)
	UpsertSeasonPlayer(ctx context.Context, row *PlayerInSeason) error

	CreateEvent(ctx context.Context, event *Event) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm connection in the Store interface.
func NewStore(conn *gorm.DB) Store {
	return &gormStore{db: conn}
}

func (s *gormStore) InTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// visibleGames excludes games containing a turn with an unresolved flag.
// Soft-deleted games are excluded by gorm's DeletedAt handling.
func visibleGames(tx *gorm.DB) *gorm.DB {
	return tx.Where(
		"NOT EXISTS (SELECT 1 FROM turn_flags"+
			" JOIN turns ON turns.id = turn_flags.turn_id"+
			" WHERE turns.game_id = games.id AND turn_flags.resolved_at IS NULL)")
}
