package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molnotation/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molnotation/internal/testutil"
	"github.com/turtacn/molnotation/pkg/errors"
)

func newMiniClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), &RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestNewClient_Standalone(t *testing.T) {
	client, _ := newMiniClient(t)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewClient_UnknownModeFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := testutil.NewMockLogger()

	client, err := NewClient(context.Background(), &RedisConfig{Mode: "mesh", Addr: mr.Addr()}, logger)
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, logger.HasMessage("warn", "unknown redis mode, using standalone"))
	assert.True(t, logger.HasMessage("info", "redis client connected"))
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	cfg := &RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond}
	client, err := NewClient(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
	assert.Contains(t, err.Error(), "addr=127.0.0.1:1")
}

func TestNewClient_MissingCAFile(t *testing.T) {
	cfg := &RedisConfig{Addr: "127.0.0.1:1", TLSEnabled: true, TLSCAFile: "/nonexistent/ca.pem"}
	_, err := NewClient(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfig))
}

func TestApplyDefaults(t *testing.T) {
	cfg := &RedisConfig{}
	applyDefaults(cfg)
	assert.Equal(t, ModeStandalone, cfg.Mode)
	assert.Positive(t, cfg.PoolSize)
	assert.Equal(t, 2*time.Second, cfg.DialTimeout)
	assert.Equal(t, 2, cfg.MaxRetries)
}

func TestClient_Commands(t *testing.T) {
	client, _ := newMiniClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "foo", "bar", 0).Err())
	val, err := client.Get(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, "bar", val)

	n, err := client.Exists(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = client.Del(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClient_Close(t *testing.T) {
	client, _ := newMiniClient(t)
	ctx := context.Background()

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	assert.Equal(t, ErrClientClosed, client.Get(ctx, "foo").Err())
	assert.Equal(t, ErrClientClosed, client.Set(ctx, "foo", "x", 0).Err())
	assert.Equal(t, ErrClientClosed, client.Del(ctx, "foo").Err())
	assert.Equal(t, ErrClientClosed, client.Exists(ctx, "foo").Err())
	assert.Equal(t, ErrClientClosed, client.Ping(ctx))
}
