// Package testutil provides deterministic time sources for tests.
package testutil

import (
	"sync"
	"time"
)

// StepClock is a deterministic timestamp source: every call to Now returns
// the current instant and advances it by a fixed step. This gives history
// entries (and anything else that stamps wall-clock times) reproducible
// values, which golden-file comparisons depend on.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	at   time.Time
	step time.Duration
}

// NewStepClock creates a clock starting at start, advancing by step per
// call to Now.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{at: start, step: step}
}

// Now returns the current instant and advances the clock.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.at
	c.at = c.at.Add(c.step)
	return t
}

// Reset moves the clock back to start for test reuse.
func (c *StepClock) Reset(start time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = start
}
