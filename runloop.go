package revue

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RunLoop is a single-goroutine Scheduler: marshaled callbacks are queued
// FIFO and drained by Run, which must be called from exactly one goroutine.
// That goroutine is the component's logical owner - every dispatch executes
// on it, so model reads and writes need no lock.
//
// Thread-safety model:
//   - Marshal: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//   - Close: safe from any goroutine, idempotent
//
// The queue is unbounded so cascading dispatches can enqueue follow-on work
// without blocking. A buffered signal channel of size 1 coalesces wakeups.
type RunLoop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	signal chan struct{}
	log    *slog.Logger
}

// NewRunLoop creates an empty run loop.
func NewRunLoop() *RunLoop {
	return &RunLoop{
		queue:  make([]func(), 0, 64),
		signal: make(chan struct{}, 1),
		log:    slog.Default(),
	}
}

// Run drains the loop until ctx is cancelled or Close is called.
// Callbacks execute in FIFO order on the calling goroutine.
func (l *RunLoop) Run(ctx context.Context) error {
	l.log.Debug("run loop starting")

	for {
		fn, ok := l.tryDequeue()
		if ok {
			fn()
			continue
		}

		select {
		case <-ctx.Done():
			l.log.Debug("run loop stopping", "reason", "context cancelled")
			l.Close()
			return ctx.Err()

		case <-l.signal:
			// Wakeup received. The signal channel closes when the loop is
			// closed, so this case also fires on shutdown.
			if l.Len() == 0 && l.isClosed() {
				l.log.Debug("run loop stopping", "reason", "closed")
				return nil
			}
		}
	}
}

// Close stops accepting callbacks and wakes the Run goroutine.
// Already-queued callbacks are still drained before Run returns.
func (l *RunLoop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	close(l.signal)
}

// Marshal enqueues fn onto the owner turn. Callbacks enqueued after Close
// are dropped.
func (l *RunLoop) Marshal(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.queue = append(l.queue, fn)

	// Non-blocking: the buffer of 1 coalesces multiple wakeups. Sending
	// under the lock keeps the send ordered before any Close.
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

// RunAsync runs fn on its own goroutine under ctx.
func (l *RunLoop) RunAsync(ctx context.Context, fn func(context.Context)) {
	go fn(ctx)
}

// After schedules fn on the owner turn once after d.
func (l *RunLoop) After(d time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(d, func() { l.Marshal(fn) })
	return func() { t.Stop() }
}

// Every schedules fn on the owner turn approximately every d until
// cancelled.
func (l *RunLoop) Every(d time.Duration, fn func()) (cancel func()) {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				l.Marshal(fn)
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

// Len returns the number of queued callbacks.
func (l *RunLoop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *RunLoop) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *RunLoop) tryDequeue() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, false
	}

	fn := l.queue[0]

	// Nil out the slot so the closure (and whatever it captures) is
	// collectable before the underlying array is reallocated.
	l.queue[0] = nil
	if len(l.queue) == 1 {
		l.queue = l.queue[:0]
	} else {
		l.queue = l.queue[1:]
	}

	return fn, true
}
