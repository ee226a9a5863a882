package revue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSub_BatchDropsNil(t *testing.T) {
	assert.Nil(t, SubNone[string]())
	assert.Nil(t, SubBatch[string](nil, nil))

	// A single surviving child collapses to itself, not a one-element
	// batch. Compared by the leaf's plain fields: the toMsg func makes the
	// whole value unfit for deep equality.
	only := Every("t", time.Second, func(time.Time) string { return "tick" })
	collapsed, ok := SubBatch(nil, only).(everySub[string])
	require.True(t, ok, "single child must collapse, not wrap in a batch")
	assert.Equal(t, "t", collapsed.id)
	assert.Equal(t, time.Second, collapsed.interval)
}

func TestSub_ConstructorsInferMsgType(t *testing.T) {
	s := SubBatch(
		Every("t", time.Second, func(time.Time) string { return "tick" }),
		After("o", time.Minute, "done"),
	)

	batch, ok := s.(subBatch[string])
	require.True(t, ok)
	assert.Len(t, batch.children, 2)
}

func TestComponent_SubscriptionRebuildOnEveryStateChange(t *testing.T) {
	established := 0
	disposed := 0

	subs := func(n int) Sub[string] {
		return Custom("probe", func(emit func(string), ctx context.Context) func() {
			established++
			return func() { disposed++ }
		})
	}
	update := func(msg string, n int) (int, Cmd[string]) {
		switch msg {
		case "toA":
			return 1, nil
		case "toB":
			return 2, nil
		}
		return n, nil
	}

	c := New(func() (int, Cmd[string]) { return 1, nil }, update,
		WithSubscriptions(subs),
	)
	require.NoError(t, c.Run())
	assert.Equal(t, 1, established)
	assert.Equal(t, 0, disposed)

	// A -> B: teardown and rebuild.
	c.Dispatch("toB")
	assert.Equal(t, 2, established)
	assert.Equal(t, 1, disposed)

	// B -> A: rebuilt again, including for a value seen before.
	c.Dispatch("toA")
	assert.Equal(t, 3, established)
	assert.Equal(t, 2, disposed)

	// A -> A: value unchanged, no rebuild.
	c.Dispatch("toA")
	assert.Equal(t, 3, established)
	assert.Equal(t, 2, disposed)

	c.Dispose()
	assert.Equal(t, 3, disposed, "dispose tears down the active set")
}

func TestComponent_DisposeDuringRebuildTearsDownFreshHandles(t *testing.T) {
	disposed := 0
	var c *Component[int, string]

	subs := func(n int) Sub[string] {
		return Custom("feed", func(emit func(string), ctx context.Context) func() {
			if n == 1 {
				// Teardown lands while the new set is still being
				// established; the fresh handles must not leak.
				c.Dispose()
			}
			return func() { disposed++ }
		})
	}

	c = New(counterInit, counterUpdate, WithSubscriptions(subs))
	require.NoError(t, c.Run())
	require.Equal(t, 0, disposed)

	c.Dispatch("inc")

	assert.Equal(t, PhaseDisposed, c.Phase())
	assert.Equal(t, 2, disposed, "both the old set and the freshly established handles are torn down")
}

func TestComponent_TimerSubscriptionFires(t *testing.T) {
	loop := NewRunLoop()
	go loop.Run(context.Background())
	defer loop.Close()

	update := func(msg string, n int) (int, Cmd[string]) {
		if msg == "tick" {
			return n + 1, nil
		}
		return n, nil
	}
	subs := func(n int) Sub[string] {
		return Every("ticker", 10*time.Millisecond, func(time.Time) string { return "tick" })
	}

	c := New(counterInit, update,
		WithScheduler[int, string](loop),
		WithSubscriptions(subs),
	)
	done := make(chan error, 1)
	loop.Marshal(func() { done <- c.Run() })
	require.NoError(t, <-done)

	require.Eventually(t, func() bool {
		return loopState(loop, c) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	c.Dispose()
	after := loopState(loop, c)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, loopState(loop, c), "no ticks after dispose")
}

func TestComponent_AfterSubscriptionFiresOnce(t *testing.T) {
	loop := NewRunLoop()
	go loop.Run(context.Background())
	defer loop.Close()

	update := func(msg string, n int) (int, Cmd[string]) {
		if msg == "bump" {
			return n + 1, nil
		}
		return n, nil
	}
	subs := func(n int) Sub[string] {
		// Armed only in the initial state; the rebuild after the bump
		// establishes nothing.
		if n == 0 {
			return After("once", 10*time.Millisecond, "bump")
		}
		return nil
	}

	c := New(counterInit, update,
		WithScheduler[int, string](loop),
		WithSubscriptions(subs),
	)
	done := make(chan error, 1)
	loop.Marshal(func() { done <- c.Run() })
	require.NoError(t, <-done)
	defer c.Dispose()

	require.Eventually(t, func() bool {
		return loopState(loop, c) == 1
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, loopState(loop, c), "one-shot fires exactly once")
}

func TestComponent_CustomSubscriptionEmits(t *testing.T) {
	var emit func(string)
	subs := func(n int) Sub[string] {
		return Custom("feed", func(e func(string), ctx context.Context) func() {
			if emit == nil {
				emit = e
			}
			return nil
		})
	}
	update := func(msg string, n int) (int, Cmd[string]) {
		if msg == "inc" {
			return n + 1, nil
		}
		return n, nil
	}

	c := New(counterInit, update, WithSubscriptions(subs))
	require.NoError(t, c.Run())
	defer c.Dispose()
	require.NotNil(t, emit)

	emit("inc")

	assert.Equal(t, 1, c.State())
}

type stubBridge struct {
	handlers     map[EventKind]func(EventPayload)
	subscribes   int
	unsubscribes atomic.Int32
}

func newStubBridge() *stubBridge {
	return &stubBridge{handlers: map[EventKind]func(EventPayload){}}
}

func (b *stubBridge) Subscribe(kind EventKind, handler func(EventPayload)) func() {
	b.subscribes++
	b.handlers[kind] = handler
	return func() { b.unsubscribes.Add(1) }
}

func (b *stubBridge) fire(kind EventKind, p EventPayload) {
	if h, ok := b.handlers[kind]; ok {
		h(p)
	}
}

func TestComponent_EventBridgeRoutesThroughDispatch(t *testing.T) {
	bridge := newStubBridge()

	type keyModel struct{ Last string }
	update := func(msg string, m keyModel) (keyModel, Cmd[string]) {
		m.Last = msg
		return m, nil
	}
	subs := func(keyModel) Sub[string] {
		return OnKeyDown(func(key string) string { return key })
	}

	c := New(func() (keyModel, Cmd[string]) { return keyModel{}, nil }, update,
		WithSubscriptions(subs),
		WithEventBridge[keyModel, string](bridge),
	)
	require.NoError(t, c.Run())
	defer c.Dispose()
	require.Equal(t, 1, bridge.subscribes)

	bridge.fire(EventKeyDown, EventPayload{Key: "x"})

	assert.Equal(t, "x", c.State().Last)
	// The state change rebuilt the subscription set from scratch.
	assert.Equal(t, 2, bridge.subscribes)
	assert.Equal(t, int32(1), bridge.unsubscribes.Load())
}

func TestComponent_NamedSubscriptionWithoutBridgeIsNoop(t *testing.T) {
	subs := func(n int) Sub[string] {
		return SubBatch(
			OnResize(func(w, h int) string { return "resize" }),
			OnVisibilityChange(func(v bool) string { return "vis" }),
			OnOnlineChange(func(o bool) string { return "online" }),
			OnMouseMove(func(x, y int) string { return "move" }),
			OnKeyUp(func(k string) string { return "up" }),
		)
	}

	c := New(counterInit, counterUpdate, WithSubscriptions(subs))
	require.NoError(t, c.Run())
	defer c.Dispose()

	c.Dispatch("inc")
	assert.Equal(t, 1, c.State())
}
