package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLeaderboard(t *testing.T) *LeaderboardManager {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLeaderboardManager(client)
}

func TestRecordMatchResult(t *testing.T) {
	t.Parallel()

	lm := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lm.RecordMatchResult(ctx, "alice", "bob", 42))
	require.NoError(t, lm.RecordMatchResult(ctx, "alice", "carol", 8))

	alice, err := lm.GetPlayerStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), alice.Wins)
	assert.Equal(t, int64(50), alice.Points)
	assert.Zero(t, alice.Losses)

	bob, err := lm.GetPlayerStats(ctx, "bob")
	require.NoError(t, err)
	assert.Zero(t, bob.Wins)
	assert.Equal(t, int64(1), bob.Losses)
}

func TestGetPlayerStats_Unknown(t *testing.T) {
	t.Parallel()

	lm := newTestLeaderboard(t)

	// Unknown players read as all zeros, not an error
	stats, err := lm.GetPlayerStats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", stats.PlayerID)
	assert.Zero(t, stats.Wins)
	assert.Zero(t, stats.Losses)
	assert.Zero(t, stats.Points)
}

func TestGetTopPlayers(t *testing.T) {
	t.Parallel()

	lm := newTestLeaderboard(t)
	ctx := context.Background()

	// alice 3 wins, bob 2, carol 1
	for range 3 {
		require.NoError(t, lm.RecordMatchResult(ctx, "alice", "dave", 10))
	}
	for range 2 {
		require.NoError(t, lm.RecordMatchResult(ctx, "bob", "dave", 10))
	}
	require.NoError(t, lm.RecordMatchResult(ctx, "carol", "dave", 10))

	top, err := lm.GetTopPlayers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, LeaderboardEntry{PlayerID: "alice", Wins: 3}, top[0])
	assert.Equal(t, LeaderboardEntry{PlayerID: "bob", Wins: 2}, top[1])
}
