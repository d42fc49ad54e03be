package enrichment

import (
	"time"

	"github.com/tphakala/mediaseed/internal/randomness"
)

// Gap bounds between consecutive processes, in whole seconds.
const (
	MinGapSeconds = 1
	MaxGapSeconds = 5
)

// Chain hands out non-overlapping time slots. Every slot after the first
// starts a positive gap after the previous slot completed.
type Chain struct {
	rnd       *randomness.Source
	cursor    time.Time
	completed time.Time
	started   bool
}

// NewChain returns a chain whose first slot starts at first.
func NewChain(rnd *randomness.Source, first time.Time) *Chain {
	return &Chain{rnd: rnd, cursor: first}
}

// Next reserves a slot of length d and returns its bounds.
func (c *Chain) Next(d time.Duration) (start, completed time.Time) {
	start = c.cursor
	if c.started {
		start = c.completed.Add(c.rnd.Seconds(MinGapSeconds, MaxGapSeconds))
	}
	completed = start.Add(max(d, 0))
	c.completed = completed
	c.started = true
	return start, completed
}

// Completed returns the completion time of the last slot, or the zero time
// when no slot has been reserved.
func (c *Chain) Completed() time.Time {
	return c.completed
}
