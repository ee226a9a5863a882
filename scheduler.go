package revue

import (
	"context"
	"sync"
	"time"
)

// Scheduler is the host bridge for everything that outlives a dispatch call:
// asynchronous tasks, one-shot and repeating timers, and marshaling a
// callback back onto the component's logical owner turn.
//
// Implementations must deliver After and Every callbacks on the owner turn,
// the same way Marshal does. RunAsync callbacks run off-turn and are
// expected to call Marshal themselves before touching dispatch.
type Scheduler interface {
	// RunAsync runs fn on its own goroutine under ctx.
	RunAsync(ctx context.Context, fn func(context.Context))

	// After schedules fn once after d. The returned cancel is best-effort:
	// if the deadline has already elapsed and the callback is queued, it may
	// still fire.
	After(d time.Duration, fn func()) (cancel func())

	// Every schedules fn repeatedly, approximately every d, until cancelled.
	// No drift correction is guaranteed.
	Every(d time.Duration, fn func()) (cancel func())

	// Marshal runs fn on the owner turn.
	Marshal(fn func())
}

// immediateScheduler marshals inline on the calling goroutine. It is the
// default for components whose host already guarantees single-turn delivery
// (and for tests); hosts with real concurrency should use a RunLoop.
type immediateScheduler struct{}

// Immediate returns a Scheduler that runs marshaled callbacks inline.
func Immediate() Scheduler {
	return immediateScheduler{}
}

func (immediateScheduler) RunAsync(ctx context.Context, fn func(context.Context)) {
	go fn(ctx)
}

func (immediateScheduler) After(d time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

func (immediateScheduler) Every(d time.Duration, fn func()) (cancel func()) {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (immediateScheduler) Marshal(fn func()) {
	fn()
}
