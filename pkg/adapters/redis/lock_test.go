package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/dfa/pkg/adapters/redis"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "reload", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:reload"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:reload"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := setup(t)
	locker := redis.NewLocker(client, "test:")

	unlock, err := locker.Lock(context.Background(), "reload", 5*time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "reload", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)

	require.NoError(t, unlock(context.Background()))

	unlock2, err := locker.Lock(context.Background(), "reload", 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock2(context.Background()))
}
