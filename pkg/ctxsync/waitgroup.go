package ctxsync

import (
	"context"
	"sync"
)

// NewWaitGroup creates a ready-to-use WaitGroup.
func NewWaitGroup() *WaitGroup {
	return &WaitGroup{}
}

// A WaitGroup waits for a collection of operations to finish. Unlike
// [sync.WaitGroup], Add may be called while another goroutine waits, and
// waiting can be abandoned through a context.
type WaitGroup struct {
	m    sync.Mutex
	n    int
	done chan struct{}
}

// Add adds delta, which may be negative, to the [WaitGroup] counter. If the
// counter becomes zero, all goroutines blocked on [WaitGroup.Wait] are
// released. If the counter goes negative, Add panics.
func (wg *WaitGroup) Add(delta int) {
	wg.m.Lock()
	defer wg.m.Unlock()
	if wg.n == 0 && delta > 0 {
		wg.done = make(chan struct{})
	}
	wg.n += delta
	if wg.n < 0 {
		panic("ctxsync: negative WaitGroup counter")
	}
	if wg.n == 0 && wg.done != nil {
		close(wg.done)
		wg.done = nil
	}
}

// Done decrements the [WaitGroup] counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Wait blocks until the WaitGroup counter is zero. Equivalent to calling
// WaitWithContext with a background context.
func (wg *WaitGroup) Wait() {
	_ = wg.WaitWithContext(context.Background())
}

// WaitWithContext blocks until the WaitGroup counter is zero or the context is
// done. Returns an error if the context is canceled or times out before the
// wait completes.
func (wg *WaitGroup) WaitWithContext(ctx context.Context) error {
	wg.m.Lock()
	done := wg.done
	wg.m.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
