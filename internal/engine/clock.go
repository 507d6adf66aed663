package engine

import "sync/atomic"

// Clock is a monotonic logical clock stamping every state transition with a
// revision number. Revisions order persisted snapshots across tabs and
// processes sharing the same storage key: last full-object write wins.
//
// Thread-safety: safe for concurrent use (atomic operations), though the
// single-writer design means only the Run loop normally calls Next().
type Clock struct {
	rev atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific revision.
// Used after rehydration to resume from the persisted revision.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.rev.Store(start)
	return c
}

// Next returns the next revision and increments the clock.
func (c *Clock) Next() int64 {
	return c.rev.Add(1)
}

// Current returns the current revision without incrementing.
func (c *Clock) Current() int64 {
	return c.rev.Load()
}
