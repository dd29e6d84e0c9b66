package redis_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authredis "campusauth/internal/auth/adapters/redis"
	"campusauth/internal/auth/ports/services"
	redisdb "campusauth/pkg/db/redis"
)

const testToken = "access-token-123"

func setupBlacklist(t *testing.T) (services.TokenBlacklist, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	host, portStr, err := net.SplitHostPort(server.Addr())
	require.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := redisdb.DefaultConfig()
	cfg.Host = host
	cfg.Port = port

	client, err := redisdb.NewClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return authredis.NewTokenBlacklist(client), server
}

func TestBlacklistAndCheck(t *testing.T) {
	ctx := context.Background()
	blacklist, server := setupBlacklist(t)

	revoked, err := blacklist.IsBlacklisted(ctx, testToken)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, blacklist.Blacklist(ctx, testToken, time.Hour))

	revoked, err = blacklist.IsBlacklisted(ctx, testToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := blacklist.TTL(ctx, testToken)
	require.NoError(t, err)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	// Запись исчезает вместе с истечением TTL.
	server.FastForward(2 * time.Hour)

	revoked, err = blacklist.IsBlacklisted(ctx, testToken)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBlacklistSkipsExpiredToken(t *testing.T) {
	ctx := context.Background()
	blacklist, _ := setupBlacklist(t)

	// Токен с истекшим сроком не попадает в список.
	require.NoError(t, blacklist.Blacklist(ctx, testToken, -time.Minute))

	revoked, err := blacklist.IsBlacklisted(ctx, testToken)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBlacklistRemove(t *testing.T) {
	ctx := context.Background()
	blacklist, _ := setupBlacklist(t)

	require.NoError(t, blacklist.Blacklist(ctx, testToken, time.Hour))
	require.NoError(t, blacklist.Remove(ctx, testToken))

	revoked, err := blacklist.IsBlacklisted(ctx, testToken)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBlacklistTTLUnknownToken(t *testing.T) {
	ctx := context.Background()
	blacklist, _ := setupBlacklist(t)

	_, err := blacklist.TTL(ctx, "unknown-token")
	require.ErrorIs(t, err, authredis.ErrTokenNotBlacklisted)
}
