// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock frozen at start.
func Fake(start time.Time) *FakeClock {
	fake := &FakeClock{now: start}
	fake.changed = sync.NewCond(&fake.mu)
	return fake
}

// FakeClock is a Clock whose time moves only through Advance. It is safe
// for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*pendingTimer
	changed *sync.Cond
}

type pendingTimer struct {
	due      time.Time
	channel  chan time.Time
	period   time.Duration // zero for one-shot timers
	canceled bool
}

// Now returns the fake time.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After registers a one-shot timer due d from now.
func (f *FakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- f.now
		return channel
	}
	f.pending = append(f.pending, &pendingTimer{due: f.now.Add(d), channel: channel})
	f.changed.Broadcast()
	return channel
}

// NewTicker registers a periodic timer.
func (f *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: NewTicker called with non-positive period")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	timer := &pendingTimer{due: f.now.Add(d), channel: make(chan time.Time, 1), period: d}
	f.pending = append(f.pending, timer)
	f.changed.Broadcast()

	return &Ticker{
		C: timer.channel,
		stop: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			timer.canceled = true
			f.changed.Broadcast()
		},
	}
}

// Advance moves the clock forward by d. Every timer due at or before the
// new time fires in due order; a ticker spanning several periods fires
// once per period, dropping ticks its one-slot channel cannot hold.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	target := f.now
	f.mu.Unlock()

	for {
		due := f.takeDue(target)
		if len(due) == 0 {
			return
		}
		for _, timer := range due {
			select {
			case timer.channel <- target:
			default:
			}
		}
	}
}

// takeDue removes fired one-shot timers, reschedules tickers, and returns
// everything that should fire now, ordered by due time.
func (f *FakeClock) takeDue(target time.Time) []*pendingTimer {
	f.mu.Lock()
	defer f.mu.Unlock()

	var due, remaining []*pendingTimer
	for _, timer := range f.pending {
		switch {
		case timer.canceled:
		case timer.due.After(target):
			remaining = append(remaining, timer)
		default:
			due = append(due, timer)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })
	for _, timer := range due {
		if timer.period > 0 {
			timer.due = timer.due.Add(timer.period)
			remaining = append(remaining, timer)
		}
	}
	f.pending = remaining
	return due
}

// WaitForTimers blocks until at least n timers are pending.
func (f *FakeClock) WaitForTimers(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.countLocked() < n {
		f.changed.Wait()
	}
}

// PendingCount reports the number of live timers.
func (f *FakeClock) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countLocked()
}

func (f *FakeClock) countLocked() int {
	count := 0
	for _, timer := range f.pending {
		if !timer.canceled {
			count++
		}
	}
	return count
}
