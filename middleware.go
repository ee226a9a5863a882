package revue

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DispatchContext is the ephemeral record passed through the middleware
// chain for one dispatch. State tracks the published model: it holds the
// model at dispatch entry and is updated by the core step, so middleware
// code after next() observes the post-update model. Previous holds the
// model the step replaced. Seq is the dispatch's logical sequence number.
type DispatchContext[TModel, TMsg any] struct {
	Msg      TMsg
	State    TModel
	Previous TModel
	Seq      int64
}

// Middleware wraps one dispatch. It receives the context and a continuation
// and must call next() to let the update proceed - or deliberately not call
// it, short-circuiting the dispatch: the reducer never runs, no state
// changes, no command is interpreted, and subscriptions are not rebuilt.
//
// The first-registered middleware is outermost.
type Middleware[TModel, TMsg any] func(d *DispatchContext[TModel, TMsg], next func())

// runChain invokes the middleware list in registration order around core.
func runChain[TModel, TMsg any](chain []Middleware[TModel, TMsg], d *DispatchContext[TModel, TMsg], core func()) {
	var call func(i int)
	call = func(i int) {
		if i == len(chain) {
			core()
			return
		}
		chain[i](d, func() { call(i + 1) })
	}
	call(0)
}

// Combine folds several middlewares into one, preserving order: the first
// element is outermost.
func Combine[TModel, TMsg any](mws ...Middleware[TModel, TMsg]) Middleware[TModel, TMsg] {
	return func(d *DispatchContext[TModel, TMsg], next func()) {
		runChain(mws, d, next)
	}
}

// Logger logs the message and current state before the update and a
// completion record after it. A nil log uses slog.Default.
func Logger[TModel, TMsg any](log *slog.Logger) Middleware[TModel, TMsg] {
	if log == nil {
		log = slog.Default()
	}
	return func(d *DispatchContext[TModel, TMsg], next func()) {
		log.Debug("dispatching message",
			"seq", d.Seq,
			"msg", fmt.Sprintf("%+v", d.Msg),
			"state", fmt.Sprintf("%+v", d.State),
		)
		next()
		log.Debug("dispatch complete",
			"seq", d.Seq,
			"state", fmt.Sprintf("%+v", d.State),
		)
	}
}

// Timing measures the wall-clock duration of everything downstream of this
// point - the core update and all nested middleware - and reports it.
// A nil report logs the duration at debug level.
func Timing[TModel, TMsg any](report func(time.Duration)) Middleware[TModel, TMsg] {
	if report == nil {
		report = func(d time.Duration) {
			slog.Debug("dispatch timed", "duration", d)
		}
	}
	return func(d *DispatchContext[TModel, TMsg], next func()) {
		start := time.Now()
		next()
		report(time.Since(start))
	}
}

// Filter calls through only when pred holds for the message and current
// state; otherwise the dispatch is skipped entirely.
func Filter[TModel, TMsg any](pred func(msg TMsg, state TModel) bool) Middleware[TModel, TMsg] {
	return func(d *DispatchContext[TModel, TMsg], next func()) {
		if pred(d.Msg, d.State) {
			next()
		}
	}
}

// ErrorHandler recovers any panic raised downstream, hands it to handle,
// and swallows it - the panic is not re-raised and no message is produced.
// Callers needing a message-level representation of failure should use
// Result-carrying commands instead.
func ErrorHandler[TModel, TMsg any](handle func(error)) Middleware[TModel, TMsg] {
	return func(d *DispatchContext[TModel, TMsg], next func()) {
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("dispatch panic: %v", r)
				}
				handle(err)
			}
		}()
		next()
	}
}

// Debounce calls through only when at least delay has elapsed since the
// last time this middleware allowed a call through; otherwise the message
// is dropped silently.
//
// The timestamp is deliberately unguarded: it relies on the host delivering
// dispatches one turn at a time. Hosts that dispatch from concurrently
// resolving sources should use Throttle instead.
func Debounce[TModel, TMsg any](delay time.Duration) Middleware[TModel, TMsg] {
	var last time.Time
	return func(d *DispatchContext[TModel, TMsg], next func()) {
		now := time.Now()
		if !last.IsZero() && now.Sub(last) < delay {
			return
		}
		last = now
		next()
	}
}

// Throttle has the same pass-through rule as Debounce but guards the shared
// timestamp with a mutex, so the check-and-set stays correct when dispatches
// arrive from independently scheduled asynchronous callers.
func Throttle[TModel, TMsg any](interval time.Duration) Middleware[TModel, TMsg] {
	var mu sync.Mutex
	var last time.Time
	return func(d *DispatchContext[TModel, TMsg], next func()) {
		mu.Lock()
		now := time.Now()
		pass := last.IsZero() || now.Sub(last) >= interval
		if pass {
			last = now
		}
		mu.Unlock()

		if pass {
			next()
		}
	}
}
