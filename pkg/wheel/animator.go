package wheel

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned to a spin that was replaced by a newer one.
var ErrSuperseded = errors.New("wheel: spin superseded")

// DefaultFrameInterval is roughly 60 frames per second.
const DefaultFrameInterval = 16 * time.Millisecond

// Animator drives a Wheel on a ticker, for callers without their own frame
// loop (CLI, MCP). Only one spin runs at a time; starting another cancels
// the first and waits for it to stop before replanning.
type Animator[T any] struct {
	wheel    *Wheel[T]
	interval time.Duration
	clock    func() time.Time

	mu     sync.Mutex
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// NewAnimator wraps w. A non-positive interval uses DefaultFrameInterval.
func NewAnimator[T any](w *Wheel[T], interval time.Duration) *Animator[T] {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Animator[T]{wheel: w, interval: interval, clock: time.Now}
}

// Wheel is the driven wheel.
func (a *Animator[T]) Wheel() *Wheel[T] {
	return a.wheel
}

// Spin plans a new spin and blocks until it resolves, ctx is done or a
// later Spin supersedes it. onFrame, when set, sees every sampled frame
// including the final one.
func (a *Animator[T]) Spin(ctx context.Context, onFrame func(Frame[T])) (T, error) {
	var zero T

	ctx, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})
	a.mu.Lock()
	prevCancel, prevDone := a.cancel, a.done
	a.cancel, a.done = cancel, done
	a.mu.Unlock()
	if prevCancel != nil {
		prevCancel(ErrSuperseded)
		<-prevDone
	}

	defer func() {
		cancel(nil)
		close(done)
		a.mu.Lock()
		if a.done == done {
			a.cancel, a.done = nil, nil
		}
		a.mu.Unlock()
	}()

	if cause := context.Cause(ctx); cause != nil {
		return zero, cause
	}
	id, _, err := a.wheel.Spin(a.clock())
	if err != nil {
		return zero, err
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			cause := context.Cause(ctx)
			if !errors.Is(cause, ErrSuperseded) {
				a.wheel.Cancel()
			}
			return zero, cause
		case <-ticker.C:
			f := a.wheel.Sample(a.clock())
			if f.Spin != id {
				return zero, ErrSuperseded
			}
			if onFrame != nil {
				onFrame(f)
			}
			if f.Done {
				return f.Winner, nil
			}
		}
	}
}

// Stop cancels the in-flight spin, if any, and waits for it to exit.
func (a *Animator[T]) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.mu.Unlock()
	if cancel != nil {
		cancel(ErrSuperseded)
		<-done
	}
	a.wheel.Cancel()
}
