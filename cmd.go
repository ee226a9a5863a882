package revue

import (
	"context"
	"time"
)

// Cmd describes zero or more side effects to perform after an update step.
// A Cmd value is pure description: constructing one performs nothing, only
// the runtime's interpreter causes observable effects. Commands are created
// fresh by each update step, interpreted once, and discarded.
//
// The variant set is closed. Adding a variant means updating the interpreter
// in cmd_exec.go and nothing else.
//
// The marker method mentions TMsg so the compiler can infer the message type
// from a Cmd value at call sites like Batch and Delay.
type Cmd[TMsg any] interface {
	isCmd(TMsg)
}

type batchCmd[TMsg any] struct {
	children []Cmd[TMsg]
}

type msgCmd[TMsg any] struct {
	msg TMsg
}

type funcCmd[TMsg any] struct {
	fn func() TMsg
}

type effectCmd[TMsg any] struct {
	fn func()
}

type taskCmd[TMsg any] struct {
	fn func(context.Context) (TMsg, error)
}

type taskUnitCmd[TMsg any] struct {
	fn func(context.Context) error
}

type delayCmd[TMsg any] struct {
	after time.Duration
	inner Cmd[TMsg]
}

func (batchCmd[TMsg]) isCmd(TMsg)    {}
func (msgCmd[TMsg]) isCmd(TMsg)      {}
func (funcCmd[TMsg]) isCmd(TMsg)     {}
func (effectCmd[TMsg]) isCmd(TMsg)   {}
func (taskCmd[TMsg]) isCmd(TMsg)     {}
func (taskUnitCmd[TMsg]) isCmd(TMsg) {}
func (delayCmd[TMsg]) isCmd(TMsg)    {}

// None is the no-op command. A nil Cmd is interpreted identically.
func None[TMsg any]() Cmd[TMsg] {
	return nil
}

// Batch combines several commands into one. Children may run concurrently
// relative to each other; each child's internal effects keep their own order.
// Nil children are dropped at construction.
func Batch[TMsg any](cmds ...Cmd[TMsg]) Cmd[TMsg] {
	children := make([]Cmd[TMsg], 0, len(cmds))
	for _, c := range cmds {
		if c != nil {
			children = append(children, c)
		}
	}
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	}
	return batchCmd[TMsg]{children: children}
}

// OfMsg dispatches msg synchronously during command interpretation, before
// interpretation returns. This reenters dispatch while the outer dispatch is
// still unwinding; the runtime tolerates that by holding no lock around it.
func OfMsg[TMsg any](msg TMsg) Cmd[TMsg] {
	return msgCmd[TMsg]{msg: msg}
}

// OfFunc runs fn synchronously and dispatches its result.
func OfFunc[TMsg any](fn func() TMsg) Cmd[TMsg] {
	return funcCmd[TMsg]{fn: fn}
}

// OfEffect runs fn synchronously for its side effect alone.
func OfEffect[TMsg any](fn func()) Cmd[TMsg] {
	return effectCmd[TMsg]{fn: fn}
}

// OfTask runs fn asynchronously under the component's cancellation context
// and dispatches the produced message on completion. Cancellation is a
// silent no-op. Any other error escapes to the runtime's unhandled-error
// hook; tasks that want failures handled by the reducer should wrap them
// into a Result-carrying message instead (see OfTaskResult).
func OfTask[TMsg any](fn func(context.Context) (TMsg, error)) Cmd[TMsg] {
	return taskCmd[TMsg]{fn: fn}
}

// OfTaskUnit is OfTask for fire-and-forget work that produces no message.
func OfTaskUnit[TMsg any](fn func(context.Context) error) Cmd[TMsg] {
	return taskUnitCmd[TMsg]{fn: fn}
}

// OfTaskResult runs fn asynchronously and wraps its outcome - success or
// failure - into a Result carried by the message toMsg builds. This is the
// idiomatic way to make task failures visible to the reducer: the task
// itself never surfaces through the unhandled-error hook (cancellation
// remains a silent no-op).
func OfTaskResult[T, TMsg any](fn func(context.Context) (T, error), toMsg func(Result[T]) TMsg) Cmd[TMsg] {
	return taskCmd[TMsg]{fn: func(ctx context.Context) (TMsg, error) {
		v, err := fn(ctx)
		if err != nil {
			if ctx.Err() != nil {
				var zero TMsg
				return zero, ctx.Err()
			}
			return toMsg(Failure[T](err)), nil
		}
		return toMsg(Success(v)), nil
	}}
}

// Delay waits for the given duration, then interprets inner. Cancellation
// during the wait silently drops the inner command.
func Delay[TMsg any](after time.Duration, inner Cmd[TMsg]) Cmd[TMsg] {
	if inner == nil {
		return nil
	}
	return delayCmd[TMsg]{after: after, inner: inner}
}
