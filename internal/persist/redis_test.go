package persist

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Redis tests need a live server; set CARTWHEEL_REDIS_ADDR to run them:
//
//	CARTWHEEL_REDIS_ADDR=localhost:6379 go test ./internal/persist/
func openTestRedis(t *testing.T) *RedisStorage {
	t.Helper()
	addr := os.Getenv("CARTWHEEL_REDIS_ADDR")
	if addr == "" {
		t.Skip("CARTWHEEL_REDIS_ADDR not set")
	}
	// Unique prefix per test run so parallel CI runs don't collide.
	storage, err := OpenRedis(addr, "cartwheel-test:"+uuid.NewString()+":")
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestRedisStorage_SaveLoad(t *testing.T) {
	ctx := context.Background()
	storage := openTestRedis(t)

	require.NoError(t, storage.Save(ctx, "cart", []byte(`{"revision":1}`)))

	data, err := storage.Load(ctx, "cart")
	require.NoError(t, err)
	assert.JSONEq(t, `{"revision":1}`, string(data))
}

func TestRedisStorage_Load_MissingKey(t *testing.T) {
	storage := openTestRedis(t)

	_, err := storage.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := openTestRedis(t)

	require.NoError(t, storage.Save(ctx, "cart", []byte(`{}`)))
	require.NoError(t, storage.Delete(ctx, "cart"))

	_, err := storage.Load(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)
}
