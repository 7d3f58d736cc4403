package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestBlacklistExpiresWithTTL(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	SetBlacklistClient(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	defer SetBlacklistClient(nil)

	ctx := context.Background()
	require.NoError(t, BlacklistAccessToken(ctx, "revoked-token", 2*time.Second))

	revoked, err := IsAccessTokenBlacklisted(ctx, "revoked-token")
	require.NoError(t, err)
	require.True(t, revoked)

	// an unrelated token is untouched
	revoked, err = IsAccessTokenBlacklisted(ctx, "other-token")
	require.NoError(t, err)
	require.False(t, revoked)

	// the entry falls out once the TTL elapses
	m.FastForward(3 * time.Second)
	revoked, err = IsAccessTokenBlacklisted(ctx, "revoked-token")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestBlacklistWithoutRedisIsNoop(t *testing.T) {
	SetBlacklistClient(nil)
	ctx := context.Background()
	require.NoError(t, BlacklistAccessToken(ctx, "any-token", time.Second))
	revoked, err := IsAccessTokenBlacklisted(ctx, "any-token")
	require.NoError(t, err)
	require.False(t, revoked)
}
