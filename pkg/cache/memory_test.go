package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JBK2116/CollaBoard/pkg/clock"
)

func TestMemoryStoreSetExistsDelete(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	store := NewMemoryStore(clk)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "meeting_locked_12345678")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Set(ctx, "meeting_locked_12345678", time.Hour))

	exists, err = store.Exists(ctx, "meeting_locked_12345678")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "meeting_locked_12345678"))
	exists, err = store.Exists(ctx, "meeting_locked_12345678")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	store := NewMemoryStore(clk)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "flag", time.Hour))

	clk.Advance(59 * time.Minute)
	exists, err := store.Exists(ctx, "flag")
	require.NoError(t, err)
	assert.True(t, exists)

	clk.Advance(time.Minute)
	exists, err = store.Exists(ctx, "flag")
	require.NoError(t, err)
	assert.False(t, exists, "flag should expire once its TTL elapses")
}

func TestMemoryStoreSetRefreshesTTL(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	store := NewMemoryStore(clk)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "flag", time.Minute))
	clk.Advance(45 * time.Second)
	require.NoError(t, store.Set(ctx, "flag", time.Minute))
	clk.Advance(30 * time.Second)

	exists, err := store.Exists(ctx, "flag")
	require.NoError(t, err)
	assert.True(t, exists, "re-set should restart the TTL")
}

func TestMemoryStoreSweep(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	store := NewMemoryStore(clk)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", time.Minute))
	require.NoError(t, store.Set(ctx, "long", time.Hour))

	clk.Advance(2 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	exists, err := store.Exists(ctx, "long")
	require.NoError(t, err)
	assert.True(t, exists)
}
