package ctxsync_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vinicius-lino-figueiredo/jsondb/pkg/ctxsync"
)

// queue starts fn in a goroutine for each of n workers, giving each one time
// to block before starting the next.
func queue(n int, fn func(i int)) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(i)
		}()
		time.Sleep(time.Millisecond)
	}
	return &wg
}

// Concurrent holders should never overlap.
func TestMutexExclusive(t *testing.T) {
	const workers = 500
	mu := ctxsync.NewMutex()
	ctx := context.Background()
	n := 0

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, mu.LockWithContext(ctx))
			n++
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, workers, n)
}

// Waiters should get the lock in the order they asked for it.
func TestMutexOrder(t *testing.T) {
	const workers = 50
	mu := ctxsync.NewMutex()
	var got []int

	mu.Lock()
	wg := queue(workers, func(i int) {
		mu.Lock()
		got = append(got, i)
		mu.Unlock()
	})
	mu.Unlock()
	wg.Wait()

	assert.Len(t, got, workers)
	assert.True(t, slices.IsSorted(got))
}

// A waiter that gives up should leave the queue without holding the lock or
// blocking the waiters behind it.
func TestMutexCanceledWaiter(t *testing.T) {
	mu := ctxsync.NewMutex()
	ctx, cancel := context.WithCancel(context.Background())

	mu.Lock()

	var canceledErr error
	var acquired sync.WaitGroup
	acquired.Add(1)
	wg := queue(2, func(i int) {
		if i == 0 {
			canceledErr = mu.LockWithContext(ctx)
			return
		}
		mu.Lock()
		acquired.Done()
	})

	cancel()
	time.Sleep(time.Millisecond)
	assert.False(t, mu.TryLock())

	mu.Unlock()
	acquired.Wait()
	wg.Wait()
	assert.ErrorIs(t, canceledErr, context.Canceled)

	mu.Unlock()
	assert.True(t, mu.TryLock())
}

// A timed out waiter should not keep a share of the lock.
func TestMutexTimeout(t *testing.T) {
	mu := ctxsync.NewMutex()
	mu.Lock()

	timeout, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, mu.LockWithContext(timeout), context.DeadlineExceeded)

	assert.False(t, mu.TryLock())
	mu.Unlock()
	assert.True(t, mu.TryLock())
	mu.Unlock()
}

// A cancelled context should fail even when the mutex is free.
func TestMutexCanceledContext(t *testing.T) {
	mu := ctxsync.NewMutex()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for range 10 {
		assert.ErrorIs(t, mu.LockWithContext(ctx), context.Canceled)
	}
	assert.True(t, mu.TryLock())
	mu.Unlock()
}

func TestMutexTryLock(t *testing.T) {
	mu := ctxsync.NewMutex()

	assert.True(t, mu.TryLock())
	assert.False(t, mu.TryLock())

	done := make(chan struct{})
	go func() {
		mu.Lock()
		close(done)
	}()
	mu.Unlock()
	<-done
	assert.False(t, mu.TryLock())
}

// Should panic if Unlock is called without a matching Lock.
func TestMutexUnlockWithoutLock(t *testing.T) {
	mu := ctxsync.NewMutex()
	assert.Panics(t, func() {
		mu.Unlock()
	})

	mu.Lock()
	mu.Unlock()
	assert.Panics(t, func() {
		mu.Unlock()
	})
}

func BenchmarkLockUnlock(b *testing.B) {
	mu := ctxsync.NewMutex()
	ctx := context.Background()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = mu.LockWithContext(ctx)
			mu.Unlock()
		}
	})
}

func BenchmarkTimeoutLock(b *testing.B) {
	mu := ctxsync.NewMutex()
	mu.Lock()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
			_ = mu.LockWithContext(ctx)
			cancel()
		}
	})
}
