package revue

import "fmt"

// Result carries the outcome of an effectful operation back into a message.
// Exactly one of the value or the error is meaningful, governed by the
// success flag. Construct with Success or Failure, never directly.
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

// Success wraps a value produced by a completed operation.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Failure wraps the error of a failed operation.
// A nil err is replaced with a generic error so the failure stays visible.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = fmt.Errorf("operation failed")
	}
	return Result[T]{err: err}
}

// IsSuccess reports whether the result carries a value.
func (r Result[T]) IsSuccess() bool { return r.ok }

// Value returns the carried value. Only meaningful when IsSuccess is true;
// otherwise it is the zero value of T.
func (r Result[T]) Value() T { return r.value }

// Err returns the carried error, or nil for a success.
func (r Result[T]) Err() error { return r.err }

// Unpack returns the value and error in Go's usual two-return shape.
func (r Result[T]) Unpack() (T, error) { return r.value, r.err }

// String renders the result for logs and debug output.
func (r Result[T]) String() string {
	if r.ok {
		return fmt.Sprintf("Success(%v)", r.value)
	}
	return fmt.Sprintf("Failure(%v)", r.err)
}
