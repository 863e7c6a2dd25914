package engine

import (
	"context"

	"picturechain/internal/db"

	"github.com/rs/zerolog"
)

// Notifier receives fire-and-forget notifications. Implementations must not
// block the caller; failures are theirs to log.
type Notifier interface {
	TurnCompleted(ctx context.Context, turn db.Turn)
	GameCompleted(ctx context.Context, game db.Game)
	FlagCreated(ctx context.Context, flag db.TurnFlag)
	FlagResolved(ctx context.Context, flag db.TurnFlag, confirmed bool)
}

// LogNotifier is the default Notifier. Deployments swap in an email or push
// dispatcher behind the same interface.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) TurnCompleted(ctx context.Context, turn db.Turn) {
	n.Log.Info().Uint("turn_id", turn.ID).Uint("game_id", turn.GameID).Msg("turn completed")
}

func (n LogNotifier) GameCompleted(ctx context.Context, game db.Game) {
	n.Log.Info().Uint("game_id", game.ID).Msg("game completed")
}

func (n LogNotifier) FlagCreated(ctx context.Context, flag db.TurnFlag) {
	n.Log.Info().Uint("flag_id", flag.ID).Uint("turn_id", flag.TurnID).Msg("flag created")
}

func (n LogNotifier) FlagResolved(ctx context.Context, flag db.TurnFlag, confirmed bool) {
	n.Log.Info().Uint("flag_id", flag.ID).Bool("confirmed", confirmed).Msg("flag resolved")
}
