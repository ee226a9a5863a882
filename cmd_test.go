package revue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmd_ConstructionIsPure(t *testing.T) {
	ran := false

	OfFunc(func() string { ran = true; return "x" })
	OfEffect[string](func() { ran = true })
	OfTask(func(context.Context) (string, error) { ran = true; return "x", nil })
	OfTaskUnit[string](func(context.Context) error { ran = true; return nil })
	Delay(0, OfEffect[string](func() { ran = true }))

	assert.False(t, ran, "constructing a Cmd must perform no effect")
}

func TestCmd_None(t *testing.T) {
	assert.Nil(t, None[string]())
}

func TestCmd_BatchDropsNil(t *testing.T) {
	assert.Nil(t, Batch[string](nil, nil))
	assert.Nil(t, Batch[string]())
}

func TestCmd_BatchSingleChildCollapses(t *testing.T) {
	inner := OfMsg("only")
	assert.Equal(t, inner, Batch(nil, inner))
}

func TestCmd_BatchKeepsChildren(t *testing.T) {
	b := Batch(OfMsg("a"), nil, OfMsg("b"))

	batch, ok := b.(batchCmd[string])
	require.True(t, ok)
	assert.Len(t, batch.children, 2)
}

func TestCmd_DelayNilInner(t *testing.T) {
	assert.Nil(t, Delay[string](0, nil))
}

func TestCmd_ConstructorsInferMsgType(t *testing.T) {
	// Composition must not require explicit instantiation: the message type
	// flows from the leaves into Batch and Delay.
	cmd := Batch(
		OfMsg("a"),
		Delay(time.Millisecond, OfMsg("b")),
	)

	batch, ok := cmd.(batchCmd[string])
	require.True(t, ok)
	assert.Len(t, batch.children, 2)
}
