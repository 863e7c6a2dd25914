package engine

import (
	"context"
	"sync"

	"picturechain/internal/db"
)

// TurnCompleted is published after a turn completion commits. Subscribers
// react to already-durable state; nothing they do can unwind the completion.
type TurnCompleted struct {
	Turn db.Turn
	Game db.Game
}

// Bus is a single-process dispatcher for domain events. It exists to keep
// turn completion and party rotation from depending on each other directly:
// the lifecycle publishes, the rotation assigner subscribes.
type Bus struct {
	mu   sync.Mutex
	subs []func(context.Context, TurnCompleted)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) SubscribeTurnCompleted(fn func(context.Context, TurnCompleted)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// PublishTurnCompleted invokes subscribers in order. Subscribers handle and
// log their own failures.
func (b *Bus) PublishTurnCompleted(ctx context.Context, ev TurnCompleted) {
	b.mu.Lock()
	subs := make([]func(context.Context, TurnCompleted), len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()
	for _, fn := range subs {
		fn(ctx, ev)
	}
}
