package revue

import (
	"context"
	"time"
)

// Sub describes zero or more long-lived listeners that may emit messages
// over time. Like Cmd it is pure description: nothing is established until
// the runtime interprets the tree.
//
// Subscriptions are recomputed from the model after every state-changing
// dispatch. The previous set is torn down unconditionally and the new tree
// is established from scratch - there is no diffing, so an unchanged timer
// is recreated on every state change. IDs are descriptive aids for logs and
// debugging only.
// The marker method mentions TMsg so the compiler can infer the message type
// from a Sub value at call sites like SubBatch.
type Sub[TMsg any] interface {
	isSub(TMsg)
}

type subBatch[TMsg any] struct {
	children []Sub[TMsg]
}

type everySub[TMsg any] struct {
	id       string
	interval time.Duration
	toMsg    func(time.Time) TMsg
}

type afterSub[TMsg any] struct {
	id    string
	delay time.Duration
	msg   TMsg
}

type eventSub[TMsg any] struct {
	kind  EventKind
	toMsg func(EventPayload) TMsg
}

type customSub[TMsg any] struct {
	id        string
	subscribe func(emit func(TMsg), ctx context.Context) (dispose func())
}

func (subBatch[TMsg]) isSub(TMsg)  {}
func (everySub[TMsg]) isSub(TMsg)  {}
func (afterSub[TMsg]) isSub(TMsg)  {}
func (eventSub[TMsg]) isSub(TMsg)  {}
func (customSub[TMsg]) isSub(TMsg) {}

// SubNone is the empty subscription. A nil Sub is interpreted identically.
func SubNone[TMsg any]() Sub[TMsg] {
	return nil
}

// SubBatch combines several subscriptions into one tree.
// Nil children are dropped at construction.
func SubBatch[TMsg any](subs ...Sub[TMsg]) Sub[TMsg] {
	children := make([]Sub[TMsg], 0, len(subs))
	for _, s := range subs {
		if s != nil {
			children = append(children, s)
		}
	}
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	}
	return subBatch[TMsg]{children: children}
}

// Every dispatches toMsg(now) approximately every interval until the
// subscription is torn down. id is a debugging label and may be empty.
func Every[TMsg any](id string, interval time.Duration, toMsg func(time.Time) TMsg) Sub[TMsg] {
	return everySub[TMsg]{id: id, interval: interval, toMsg: toMsg}
}

// After dispatches msg exactly once after delay, unless torn down first.
// Teardown is best-effort: a continuation already queued may still fire.
func After[TMsg any](id string, delay time.Duration, msg TMsg) Sub[TMsg] {
	return afterSub[TMsg]{id: id, delay: delay, msg: msg}
}

// OnResize dispatches on environment resize events.
func OnResize[TMsg any](toMsg func(width, height int) TMsg) Sub[TMsg] {
	return eventSub[TMsg]{kind: EventResize, toMsg: func(p EventPayload) TMsg {
		return toMsg(p.Width, p.Height)
	}}
}

// OnKeyDown dispatches on key-press events.
func OnKeyDown[TMsg any](toMsg func(key string) TMsg) Sub[TMsg] {
	return eventSub[TMsg]{kind: EventKeyDown, toMsg: func(p EventPayload) TMsg {
		return toMsg(p.Key)
	}}
}

// OnKeyUp dispatches on key-release events.
func OnKeyUp[TMsg any](toMsg func(key string) TMsg) Sub[TMsg] {
	return eventSub[TMsg]{kind: EventKeyUp, toMsg: func(p EventPayload) TMsg {
		return toMsg(p.Key)
	}}
}

// OnMouseMove dispatches on pointer-move events.
func OnMouseMove[TMsg any](toMsg func(x, y int) TMsg) Sub[TMsg] {
	return eventSub[TMsg]{kind: EventMouseMove, toMsg: func(p EventPayload) TMsg {
		return toMsg(p.X, p.Y)
	}}
}

// OnVisibilityChange dispatches when the hosting surface becomes visible or
// hidden.
func OnVisibilityChange[TMsg any](toMsg func(visible bool) TMsg) Sub[TMsg] {
	return eventSub[TMsg]{kind: EventVisibility, toMsg: func(p EventPayload) TMsg {
		return toMsg(p.Visible)
	}}
}

// OnOnlineChange dispatches when the environment's connectivity changes.
func OnOnlineChange[TMsg any](toMsg func(online bool) TMsg) Sub[TMsg] {
	return eventSub[TMsg]{kind: EventOnline, toMsg: func(p EventPayload) TMsg {
		return toMsg(p.Online)
	}}
}

// Custom is the escape hatch for arbitrary event sources. subscribe is
// called once with an emit function and the component's lifecycle context;
// it returns a disposer (may be nil). Emitted messages are routed through
// the same marshaling discipline as every other dispatch origin.
func Custom[TMsg any](id string, subscribe func(emit func(TMsg), ctx context.Context) (dispose func())) Sub[TMsg] {
	return customSub[TMsg]{id: id, subscribe: subscribe}
}
