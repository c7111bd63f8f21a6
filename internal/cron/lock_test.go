package cron

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedisStore struct {
	values map[string]string

	setNXErr error
	getErr   error
	delErr   error
	deletes  int
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: map[string]string{}}
}

func (s *fakeRedisStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.setNXErr != nil {
		return false, s.setNXErr
	}
	if _, exists := s.values[key]; exists {
		return false, nil
	}
	s.values[key] = fmt.Sprint(value)
	return true, nil
}

func (s *fakeRedisStore) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	value, exists := s.values[key]
	if !exists {
		return "", redis.Nil
	}
	return value, nil
}

func (s *fakeRedisStore) Del(ctx context.Context, keys ...string) error {
	if s.delErr != nil {
		return s.delErr
	}
	s.deletes++
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestNewRedisLockValidation(t *testing.T) {
	_, err := NewRedisLock(nil, "key", time.Minute)
	require.Error(t, err)

	_, err = NewRedisLock(newFakeRedisStore(), "", time.Minute)
	require.Error(t, err)

	lock, err := NewRedisLock(newFakeRedisStore(), "key", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, lock.ttl)
}

func TestRedisLockAcquireAndRelease(t *testing.T) {
	store := newFakeRedisStore()
	ctx := context.Background()

	lock, err := NewRedisLock(store, "jm:lock:cron-worker:test", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second instance cannot acquire while the first holds the lock.
	other, err := NewRedisLock(store, "jm:lock:cron-worker:test", time.Minute)
	require.NoError(t, err)
	ok, err = other.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(ctx))
	assert.Empty(t, store.values)

	ok, err = other.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockReleaseOnlyWhenOwner(t *testing.T) {
	store := newFakeRedisStore()
	ctx := context.Background()

	lock, err := NewRedisLock(store, "jm:lock:cron-worker:test", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// The TTL expired and another instance took over.
	store.values["jm:lock:cron-worker:test"] = "someone-else"

	require.NoError(t, lock.Release(ctx))
	assert.Equal(t, 0, store.deletes, "a lock owned by another instance must not be deleted")
	assert.Equal(t, "someone-else", store.values["jm:lock:cron-worker:test"])
}

func TestRedisLockReleaseWithoutAcquire(t *testing.T) {
	lock, err := NewRedisLock(newFakeRedisStore(), "key", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, lock.Release(context.Background()))
}

func TestRedisLockReleaseExpiredKey(t *testing.T) {
	store := newFakeRedisStore()
	ctx := context.Background()

	lock, err := NewRedisLock(store, "key", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// Key expired between acquire and release.
	delete(store.values, "key")
	assert.NoError(t, lock.Release(ctx))
}
