package game_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
)

var poolEpoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestPool() *game.ResourcePool {
	return game.NewResourcePool(5, 10*time.Minute, 1, poolEpoch)
}

func TestPoolConsume(t *testing.T) {
	pool := newTestPool()

	ok := pool.Consume(poolEpoch, 2)
	require.True(t, ok)
	assert.Equal(t, 3, pool.Current)

	// Insufficient balance leaves the pool untouched
	ok = pool.Consume(poolEpoch, 4)
	assert.False(t, ok)
	assert.Equal(t, 3, pool.Current)
}

func TestPoolLazyRegen(t *testing.T) {
	pool := newTestPool()
	require.True(t, pool.Consume(poolEpoch, 5))
	assert.Equal(t, 0, pool.Current)

	// 25 minutes later: two whole ticks, fractional progress kept
	now := poolEpoch.Add(25 * time.Minute)
	pool.Recompute(now)
	assert.Equal(t, 2, pool.Current)
	assert.Equal(t, poolEpoch.Add(20*time.Minute), pool.LastRegenAt)
	assert.Equal(t, 5*time.Minute, pool.TimeUntilNextRegen(now))
}

func TestPoolRegenClampsAtMax(t *testing.T) {
	pool := newTestPool()
	require.True(t, pool.Consume(poolEpoch, 1))

	// A week-long gap must not overflow the cap
	pool.Recompute(poolEpoch.Add(7 * 24 * time.Hour))
	assert.Equal(t, 5, pool.Current)
	assert.LessOrEqual(t, pool.Current, pool.Max)
}

func TestPoolRegenIdempotent(t *testing.T) {
	pool := newTestPool()
	require.True(t, pool.Consume(poolEpoch, 3))

	now := poolEpoch.Add(42 * time.Minute)
	pool.Recompute(now)
	snapshot := *pool

	// Re-reading at the same instant yields identical state
	pool.Recompute(now)
	assert.Equal(t, snapshot, *pool)
}

func TestPoolInvariantUnderOperationSequences(t *testing.T) {
	pool := newTestPool()
	now := poolEpoch

	steps := []struct {
		advance time.Duration
		cost    int
	}{
		{0, 2}, {3 * time.Minute, 1}, {45 * time.Minute, 4},
		{time.Second, 3}, {26 * time.Hour, 5}, {0, 1}, {9 * time.Minute, 2},
	}

	for _, step := range steps {
		now = now.Add(step.advance)
		pool.Consume(now, step.cost)
		assert.GreaterOrEqual(t, pool.Current, 0)
		assert.LessOrEqual(t, pool.Current, pool.Max)
	}
}

func TestPoolHasEnough(t *testing.T) {
	pool := newTestPool()
	require.True(t, pool.Consume(poolEpoch, 5))

	assert.False(t, pool.HasEnough(poolEpoch.Add(time.Minute), 1))
	assert.True(t, pool.HasEnough(poolEpoch.Add(10*time.Minute), 1))
}

func TestPoolWithoutRegenIsStatic(t *testing.T) {
	pool := game.NewResourcePool(3, 0, 0, poolEpoch)
	require.True(t, pool.Consume(poolEpoch, 2))

	pool.Recompute(poolEpoch.Add(100 * time.Hour))
	assert.Equal(t, 1, pool.Current)
	assert.Equal(t, time.Duration(0), pool.TimeUntilNextRegen(poolEpoch.Add(100*time.Hour)))
}
