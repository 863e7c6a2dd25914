package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"picturechain/internal/config"
	"picturechain/internal/db"

	"github.com/rs/zerolog"
)

type scheduledJob struct {
	Kind     string
	EntityID uint
	RunAt    time.Time
}

// fakeScheduler records schedule and cancel calls.
type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []scheduledJob
	canceled  []string
	failWith  error
}

func (f *fakeScheduler) Schedule(ctx context.Context, kind string, entityID uint, runAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.scheduled = append(f.scheduled, scheduledJob{Kind: kind, EntityID: entityID, RunAt: runAt})
	return nil
}

func (f *fakeScheduler) Cancel(ctx context.Context, kind string, entityID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, fmt.Sprintf("%s:%d", kind, entityID))
	return nil
}

func (f *fakeScheduler) jobsOfKind(kind string) []scheduledJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []scheduledJob
	for _, job := range f.scheduled {
		if job.Kind == kind {
			out = append(out, job)
		}
	}
	return out
}

type noopNotifier struct{}

func (noopNotifier) TurnCompleted(context.Context, db.Turn)          {}
func (noopNotifier) GameCompleted(context.Context, db.Game)          {}
func (noopNotifier) FlagCreated(context.Context, db.TurnFlag)        {}
func (noopNotifier) FlagResolved(context.Context, db.TurnFlag, bool) {}

type testEnv struct {
	engine *Engine
	store  *fakeStore
	sched  *fakeScheduler
	clock  *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	store.addConfig(db.GameConfig{
		Name:                  "default",
		MinTurns:              4,
		MaxTurns:              6,
		WritingTimeoutSeconds: 600,
		DrawingTimeoutSeconds: 1800,
		GameTimeoutSeconds:    604800,
	})
	store.addConfig(db.GameConfig{
		Name:                  "default-lewd",
		MinTurns:              4,
		MaxTurns:              6,
		WritingTimeoutSeconds: 600,
		DrawingTimeoutSeconds: 1800,
		GameTimeoutSeconds:    604800,
		IsLewd:                true,
	})
	sched := &fakeScheduler{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	eng := New(store, sched, noopNotifier{}, config.Default(), zerolog.Nop())
	eng.now = clock.Now
	return &testEnv{engine: eng, store: store, sched: sched, clock: clock}
}

func (env *testEnv) mustFindOrCreate(playerID uint, opts MatchOptions) *db.Turn {
	turn, err := env.engine.FindOrCreateTurn(context.Background(), playerID, opts)
	if err != nil {
		panic(err)
	}
	return turn
}
