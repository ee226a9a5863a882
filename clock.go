package revue

import "sync/atomic"

// Clock is a monotonic logical clock used to stamp dispatches with a
// strictly increasing sequence number. Sequence numbers make interleaved
// reentrant dispatches legible in logs: delivery order is explicit rather
// than inferred from wall-clock timestamps.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though under the single-logical-owner discipline only one goroutine
// typically calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments the clock and returns the new sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
