package revue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_Success(t *testing.T) {
	r := Success(42)

	assert.True(t, r.IsSuccess())
	assert.Equal(t, 42, r.Value())
	assert.NoError(t, r.Err())

	v, err := r.Unpack()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestResult_Failure(t *testing.T) {
	cause := fmt.Errorf("fetch failed")
	r := Failure[string](cause)

	assert.False(t, r.IsSuccess())
	assert.Equal(t, "", r.Value(), "failure carries the zero value")
	assert.ErrorIs(t, r.Err(), cause)
}

func TestResult_FailureNilError(t *testing.T) {
	r := Failure[int](nil)

	assert.False(t, r.IsSuccess())
	assert.Error(t, r.Err(), "nil failure cause is replaced so the failure stays visible")
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "Success(7)", Success(7).String())
	assert.Equal(t, "Failure(boom)", Failure[int](fmt.Errorf("boom")).String())
}
