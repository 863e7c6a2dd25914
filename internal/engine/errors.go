package engine

import (
	"context"
	"errors"

	"picturechain/internal/db"
)

var (
	ErrPendingGameExists    = errors.New("pending game exists")
	ErrGameNotFound         = errors.New("game not found")
	ErrTurnNotFound         = errors.New("turn not found")
	ErrFlagNotFound         = errors.New("flag not found")
	ErrSeasonNotFound       = errors.New("season not found")
	ErrGameCompleted        = errors.New("game already completed")
	ErrWrongTurnType        = errors.New("wrong turn type")
	ErrTurnExpired          = errors.New("turn expired")
	ErrEmptyContent         = errors.New("content is empty")
	ErrMissingReason        = errors.New("flag reason is required")
	ErrMissingName          = errors.New("name is required")
	ErrDuplicatePendingFlag = errors.New("player already has an unresolved flag")
	ErrFlagResolved         = errors.New("flag already resolved")
	ErrTurnRejected         = errors.New("turn already rejected")
	ErrSeasonStarted        = errors.New("season already started")
	ErrPlayerNotInRoster    = errors.New("player not in roster")
)

// Kind buckets engine errors for callers that map them to transport codes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindExpired
	KindTransient
)

// KindOf classifies err. Store misses always classify as not-found whether
// the record is absent or merely hidden by moderation.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrMissingReason),
		errors.Is(err, ErrMissingName),
		errors.Is(err, ErrWrongTurnType):
		return KindValidation
	case errors.Is(err, ErrPendingGameExists),
		errors.Is(err, ErrDuplicatePendingFlag),
		errors.Is(err, ErrFlagResolved),
		errors.Is(err, ErrTurnRejected),
		errors.Is(err, ErrGameCompleted),
		errors.Is(err, ErrSeasonStarted):
		return KindConflict
	case errors.Is(err, ErrGameNotFound),
		errors.Is(err, ErrTurnNotFound),
		errors.Is(err, ErrFlagNotFound),
		errors.Is(err, ErrSeasonNotFound),
		errors.Is(err, db.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrTurnExpired):
		return KindExpired
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTransient
	default:
		return KindInternal
	}
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, db.ErrNotFound) {
		return sentinel
	}
	return err
}
