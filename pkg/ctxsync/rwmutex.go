package ctxsync

import (
	"context"

	"golang.org/x/sync/semaphore"
)

const rwMaxReaders = 1 << 30

// NewRWMutex creates a new instance of RWMutex.
func NewRWMutex() *RWMutex {
	return &RWMutex{
		sem: semaphore.NewWeighted(rwMaxReaders),
	}
}

// A RWMutex is a reader/writer mutual exclusion lock. Readers share the lock,
// writers hold it alone. Requests are served in arrival order, so a waiting
// writer keeps new readers out until it is done.
type RWMutex struct {
	sem *semaphore.Weighted
}

// RLockWithContext locks m for reading until the context is cancelled.
func (m *RWMutex) RLockWithContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.sem.Acquire(ctx, 1)
}

// RUnlock undoes a single RLockWithContext call.
func (m *RWMutex) RUnlock() {
	m.sem.Release(1)
}

// LockWithContext locks m for writing until the context is cancelled.
func (m *RWMutex) LockWithContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.sem.Acquire(ctx, rwMaxReaders)
}

// TryLock tries to lock m for writing and reports whether it succeeded.
func (m *RWMutex) TryLock() bool {
	return m.sem.TryAcquire(rwMaxReaders)
}

// Unlock unlocks m for writing.
func (m *RWMutex) Unlock() {
	m.sem.Release(rwMaxReaders)
}
