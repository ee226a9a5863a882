package revue

import (
	"context"
	"errors"
	"time"
)

// execCmd interprets a command tree, eventually calling dispatch zero or
// more times with produced messages.
//
// Synchronous variants (OfMsg, OfFunc, OfEffect) run before execCmd
// returns, on the caller's turn. Asynchronous variants (OfTask, OfTaskUnit,
// Delay) are handed to the scheduler; their continuations marshal back onto
// the owner turn before dispatching, and observe ctx for cancellation.
//
// Failure semantics: only cancellation is swallowed. Any other task error
// goes to onErr, the host's unhandled-error channel.
func execCmd[TMsg any](ctx context.Context, sched Scheduler, cmd Cmd[TMsg], dispatch func(TMsg), onErr func(error)) {
	switch c := cmd.(type) {
	case nil:

	case batchCmd[TMsg]:
		for _, child := range c.children {
			execCmd(ctx, sched, child, dispatch, onErr)
		}

	case msgCmd[TMsg]:
		dispatch(c.msg)

	case funcCmd[TMsg]:
		dispatch(c.fn())

	case effectCmd[TMsg]:
		c.fn()

	case taskCmd[TMsg]:
		sched.RunAsync(ctx, func(ctx context.Context) {
			msg, err := c.fn(ctx)
			if err != nil {
				if !cancelled(ctx, err) {
					onErr(err)
				}
				return
			}
			if ctx.Err() != nil {
				return
			}
			sched.Marshal(func() { dispatch(msg) })
		})

	case taskUnitCmd[TMsg]:
		sched.RunAsync(ctx, func(ctx context.Context) {
			if err := c.fn(ctx); err != nil && !cancelled(ctx, err) {
				onErr(err)
			}
		})

	case delayCmd[TMsg]:
		sched.RunAsync(ctx, func(ctx context.Context) {
			t := time.NewTimer(c.after)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
				sched.Marshal(func() {
					if ctx.Err() != nil {
						return
					}
					execCmd(ctx, sched, c.inner, dispatch, onErr)
				})
			}
		})
	}
}

// cancelled reports whether err represents lifecycle-driven cancellation,
// which is always absorbed silently.
func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
