package engine

import (
	"context"
	"encoding/json"
	"time"

	"picturechain/internal/config"
	"picturechain/internal/db"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// Job kinds handed to the background scheduler.
const (
	JobTurnExpire  = "turn.expire"
	JobGameExpire  = "game.expire"
	JobSeasonStart = "season.start"
)

// Scheduler is the background job collaborator. Delivery is at-least-once
// and unordered; every handler the engine registers is idempotent, and the
// fallback sweep covers jobs that never fire. Scheduling the same kind and
// entity again replaces the earlier deadline.
type Scheduler interface {
	Schedule(ctx context.Context, kind string, entityID uint, runAt time.Time) error
	Cancel(ctx context.Context, kind string, entityID uint) error
}

// Engine orchestrates matching, turn lifecycle, rotation and moderation over
// the persistent store.
type Engine struct {
	store    db.Store
	sched    Scheduler
	bus      *Bus
	notifier Notifier
	cfg      config.Config
	log      zerolog.Logger

	now func() time.Time
}

func New(store db.Store, sched Scheduler, notifier Notifier, cfg config.Config, logger zerolog.Logger) *Engine {
	e := &Engine{
		store:    store,
		sched:    sched,
		bus:      NewBus(),
		notifier: notifier,
		cfg:      cfg,
		log:      logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	assigner := &rotationAssigner{engine: e}
	e.bus.SubscribeTurnCompleted(assigner.onTurnCompleted)
	return e
}

// Bus exposes the domain event bus for additional subscribers wired by the
// composition root.
func (e *Engine) Bus() *Bus {
	return e.bus
}

// scheduleAfterCommit schedules a job outside any open transaction. The
// scheduler talks to the job system over the network; a failure here only
// degrades to the fallback sweep and is never surfaced to the caller.
func (e *Engine) scheduleAfterCommit(ctx context.Context, kind string, entityID uint, runAt time.Time) {
	if err := e.sched.Schedule(ctx, kind, entityID, runAt); err != nil {
		e.log.Error().Err(err).Str("kind", kind).Uint("entity_id", entityID).
			Msg("schedule failed, sweep will cover")
	}
}

func (e *Engine) cancelJob(ctx context.Context, kind string, entityID uint) {
	if err := e.sched.Cancel(ctx, kind, entityID); err != nil {
		e.log.Error().Err(err).Str("kind", kind).Uint("entity_id", entityID).
			Msg("cancel failed")
	}
}

// recordEvent writes an audit row inside the given store scope. Event rows
// are advisory; failures only log.
func (e *Engine) recordEvent(ctx context.Context, store db.Store, eventType string, gameID, turnID, playerID *uint, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("{}")
	}
	event := db.Event{
		GameID:    gameID,
		TurnID:    turnID,
		PlayerID:  playerID,
		Type:      eventType,
		Payload:   datatypes.JSON(raw),
		CreatedAt: e.now(),
	}
	if err := store.CreateEvent(ctx, &event); err != nil {
		e.log.Error().Err(err).Str("type", eventType).Msg("event write failed")
	}
}

func ptr[T any](v T) *T {
	return &v
}
