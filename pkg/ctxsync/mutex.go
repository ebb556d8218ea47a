// Package ctxsync provides synchronization primitives whose blocking calls
// can be abandoned through a [context.Context].
package ctxsync

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// NewMutex creates a new instance of Mutex.
func NewMutex() *Mutex {
	return &Mutex{
		sem: semaphore.NewWeighted(1),
	}
}

// A Mutex is a mutual exclusion lock. Waiters acquire it in the order they
// called Lock.
type Mutex struct {
	sem *semaphore.Weighted
}

// Lock locks the mutex with a context.Background()
func (m *Mutex) Lock() {
	_ = m.LockWithContext(context.Background())
}

// LockWithContext locks until Unlock is called or context is cancelled. An
// already cancelled context never acquires the lock.
func (m *Mutex) LockWithContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.sem.Acquire(ctx, 1)
}

// TryLock tries to lock m and reports whether it succeeded.
func (m *Mutex) TryLock() bool {
	return m.sem.TryAcquire(1)
}

// Unlock unlocks m. It panics if m is not locked.
func (m *Mutex) Unlock() {
	m.sem.Release(1)
}
