// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the subset of the time package that pianobot's loops use.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives once d has elapsed. A
	// non-positive d delivers immediately.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a Ticker firing every d. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers periodic ticks on C. The channel holds one tick; a slow
// consumer misses ticks rather than accumulating them.
type Ticker struct {
	C <-chan time.Time

	stop func()
}

// Stop ends the ticker. C is not closed.
func (t *Ticker) Stop() { t.stop() }
