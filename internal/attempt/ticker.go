package attempt

import (
	"context"
	"sync"
	"time"
)

// Ticker runs a callback at a fixed interval until stopped. The callback
// runs on the ticker's own goroutine and may call Stop.
type Ticker struct {
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	gen     int
	cancel  context.CancelFunc
	resetCh chan struct{}
}

// NewTicker creates a stopped Ticker.
func NewTicker(interval time.Duration, fn func()) *Ticker {
	return &Ticker{interval: interval, fn: fn}
}

// Start begins ticking. It is a no-op if the ticker is already running.
// Cancelling ctx stops the ticker.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	t.gen++
	t.cancel = cancel
	t.resetCh = make(chan struct{}, 1)
	go t.run(ctx, t.gen, t.resetCh)
}

// Stop halts the ticker. No callback starts after Stop returns, except one
// already in flight.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel == nil {
		return
	}
	t.cancel()
	t.cancel = nil
}

// Reset restarts the current interval so the next tick is a full interval
// away.
func (t *Ticker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel == nil {
		return
	}
	select {
	case t.resetCh <- struct{}{}:
	default:
	}
}

// Running reports whether the ticker is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Ticker) run(ctx context.Context, gen int, reset <-chan struct{}) {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	defer t.finished(gen)

	for {
		select {
		case <-ctx.Done():
			return
		case <-reset:
			tk.Reset(t.interval)
		case <-tk.C:
			if ctx.Err() != nil {
				return
			}
			t.fn()
		}
	}
}

// finished clears the running state when the parent context ended the run.
func (t *Ticker) finished(gen int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen == gen && t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
