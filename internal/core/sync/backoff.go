package sync

import "time"

const (
	// DefaultBackoffMin is the delay before the first retry after a failed
	// cycle.
	DefaultBackoffMin = 1 * time.Second
	// DefaultBackoffMax caps the retry delay.
	DefaultBackoffMax = 60 * time.Second
)

// Backoff produces the retry delays used after failed cycles: each call to
// Next doubles the delay until it reaches the cap, Reset starts over. It is
// not safe for concurrent use; the coordinator's run loop owns it.
type Backoff struct {
	min time.Duration
	max time.Duration
	cur time.Duration
}

// NewBackoff creates a doubling backoff between min and max. Non-positive
// bounds fall back to the defaults.
func NewBackoff(min, max time.Duration) *Backoff {
	if min <= 0 {
		min = DefaultBackoffMin
	}
	if max <= 0 {
		max = DefaultBackoffMax
	}
	if max < min {
		max = min
	}
	return &Backoff{min: min, max: max}
}

// Next returns the delay to wait before the next retry and advances the
// sequence.
func (b *Backoff) Next() time.Duration {
	if b.cur == 0 {
		b.cur = b.min
		return b.cur
	}
	b.cur *= 2
	if b.cur > b.max {
		b.cur = b.max
	}
	return b.cur
}

// Reset starts the sequence over from the minimum delay.
func (b *Backoff) Reset() {
	b.cur = 0
}
