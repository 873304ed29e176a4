package redlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T) redis.UniversalClient {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestLockAndUnlock(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	locker := NewLocker(client, "account:acc_1", "holder-1")
	assert.NoError(t, locker.Lock(ctx, time.Minute))

	other := NewLocker(client, "account:acc_1", "holder-2")
	assert.Error(t, other.Lock(ctx, time.Minute))

	assert.NoError(t, locker.Unlock(ctx))
	assert.NoError(t, other.Lock(ctx, time.Minute))
}

func TestUnlockRequiresHolder(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	locker := NewLocker(client, "account:acc_2", "holder-1")
	assert.NoError(t, locker.Lock(ctx, time.Minute))

	imposter := NewLocker(client, "account:acc_2", "holder-2")
	assert.Error(t, imposter.Unlock(ctx))
	assert.NoError(t, locker.Unlock(ctx))
}

func TestExtendLock(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	locker := NewLocker(client, "account:acc_3", "holder-1")
	assert.NoError(t, locker.Lock(ctx, time.Minute))
	assert.NoError(t, locker.ExtendLock(ctx, 2*time.Minute))

	imposter := NewLocker(client, "account:acc_3", "holder-2")
	assert.Error(t, imposter.ExtendLock(ctx, time.Minute))
}

func TestWaitLockAcquiresAfterRelease(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	first := NewLocker(client, "account:acc_4", "holder-1")
	assert.NoError(t, first.Lock(ctx, time.Minute))

	done := make(chan error, 1)
	second := NewLocker(client, "account:acc_4", "holder-2")
	go func() {
		done <- second.WaitLock(ctx, time.Minute, 2*time.Second)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, first.Unlock(ctx))
	assert.NoError(t, <-done)
}

func TestWaitLockHonorsContextCancellation(t *testing.T) {
	client := newTestClient(t)

	holder := NewLocker(client, "account:acc_5", "holder-1")
	assert.NoError(t, holder.Lock(context.Background(), time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	waiter := NewLocker(client, "account:acc_5", "holder-2")
	start := time.Now()
	err := waiter.WaitLock(ctx, time.Minute, 10*time.Second)
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}
