package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpiresOverdueTurns(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first := env.mustFindOrCreate(1, MatchOptions{})
	_, err := env.engine.CompleteTurn(ctx, first.ID, TurnWriting, "a prompt")
	require.NoError(t, err)
	stale := env.mustFindOrCreate(2, MatchOptions{})

	env.clock.Advance(30 * time.Minute)
	abandoned := env.mustFindOrCreate(3, MatchOptions{TurnType: TurnFirst})

	env.clock.Advance(11 * time.Minute)
	require.NoError(t, env.engine.PerformExpirations(ctx))

	// The overdue drawing slot opened up again; its game survives.
	_, err = env.store.GetTurnAdmin(ctx, stale.ID)
	assert.Error(t, err)
	_, err = env.store.GetGame(ctx, first.GameID)
	assert.NoError(t, err)

	// The never-started chain is gone with its founding turn.
	_, err = env.store.GetGame(ctx, abandoned.GameID)
	assert.Error(t, err)
}

func TestSweepLeavesFreshTurnsAlone(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	turn := env.mustFindOrCreate(1, MatchOptions{})
	env.clock.Advance(time.Minute)
	require.NoError(t, env.engine.PerformExpirations(ctx))

	_, err := env.store.GetTurnAdmin(ctx, turn.ID)
	assert.NoError(t, err)
}

func TestSweepExpiresStalledGames(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	turn := env.mustFindOrCreate(1, MatchOptions{})
	_, err := env.engine.CompleteTurn(ctx, turn.ID, TurnWriting, "a prompt")
	require.NoError(t, err)

	env.clock.Advance(8 * 24 * time.Hour)
	require.NoError(t, env.engine.PerformExpirations(ctx))

	_, err = env.store.GetGame(ctx, turn.GameID)
	assert.Error(t, err)

	// Repeat runs stay quiet.
	require.NoError(t, env.engine.PerformExpirations(ctx))
}

func TestSweepStartsDueSeasons(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	seasonID := env.seedSeason(t, 1, 2, 3, 4)
	env.clock.Advance(2 * time.Hour)
	require.NoError(t, env.engine.PerformExpirations(ctx))

	season, err := env.store.GetSeason(ctx, seasonID)
	require.NoError(t, err)
	assert.NotNil(t, season.StartedAt)
	chains, err := env.store.SeasonChains(ctx, seasonID)
	require.NoError(t, err)
	assert.Len(t, chains, 4)
}

func TestRegisterJobHandlersBindsAllKinds(t *testing.T) {
	env := newTestEnv()

	kinds := map[string]bool{}
	err := env.engine.RegisterJobHandlers(func(kind string, handler func(ctx context.Context, entityID uint) error) error {
		require.NotNil(t, handler)
		kinds[kind] = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		JobTurnExpire:  true,
		JobGameExpire:  true,
		JobSeasonStart: true,
	}, kinds)
}
