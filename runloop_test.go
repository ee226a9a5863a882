package revue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLoop_FIFOOrder(t *testing.T) {
	loop := NewRunLoop()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		loop.Marshal(func() { order = append(order, i) })
	}
	loop.Close()

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRunLoop_DrainsQueueBeforeReturning(t *testing.T) {
	loop := NewRunLoop()

	ran := 0
	loop.Marshal(func() { ran++ })
	loop.Marshal(func() { ran++ })
	loop.Close()

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, 2, ran, "callbacks queued before Close still run")
}

func TestRunLoop_MarshalAfterCloseDropped(t *testing.T) {
	loop := NewRunLoop()
	loop.Close()

	loop.Marshal(func() { t.Error("must not run") })

	assert.Equal(t, 0, loop.Len())
	require.NoError(t, loop.Run(context.Background()))
}

func TestRunLoop_CloseIdempotent(t *testing.T) {
	loop := NewRunLoop()

	loop.Close()
	assert.NotPanics(t, loop.Close)
}

func TestRunLoop_ContextCancellation(t *testing.T) {
	loop := NewRunLoop()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("run loop did not stop on context cancellation")
	}
}

func TestRunLoop_MarshalFromAnotherGoroutine(t *testing.T) {
	loop := NewRunLoop()
	go loop.Run(context.Background())
	defer loop.Close()

	got := make(chan int, 1)
	go loop.Marshal(func() { got <- 42 })

	select {
	case v := <-got:
		assert.Equal(t, 42, v)
	case <-time.After(2 * time.Second):
		t.Fatal("marshaled callback never ran")
	}
}

func TestRunLoop_AfterDeliversOnOwnerTurn(t *testing.T) {
	loop := NewRunLoop()
	go loop.Run(context.Background())
	defer loop.Close()

	got := make(chan struct{})
	loop.After(5*time.Millisecond, func() { close(got) })

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("After callback never ran")
	}
}

func TestRunLoop_AfterCancelled(t *testing.T) {
	loop := NewRunLoop()
	go loop.Run(context.Background())
	defer loop.Close()

	cancel := loop.After(50*time.Millisecond, func() { t.Error("cancelled timer fired") })
	cancel()

	time.Sleep(100 * time.Millisecond)
}

func TestRunLoop_EveryRepeatsUntilCancelled(t *testing.T) {
	loop := NewRunLoop()
	go loop.Run(context.Background())
	defer loop.Close()

	ticks := make(chan struct{}, 16)
	cancel := loop.Every(10*time.Millisecond, func() { ticks <- struct{}{} })

	for i := 0; i < 2; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatal("tick never arrived")
		}
	}
	cancel()
	assert.NotPanics(t, cancel, "cancel is safe to call twice")
}
