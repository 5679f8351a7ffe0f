// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock is the time source for every loop in pianobot that waits:
// the heartbeat ticker, the fixed-rate tick loop, and the reconnect
// backoff sleep.
//
// Production code receives Real(). Tests receive Fake(), whose time only
// moves when the test calls Advance. A goroutine that asks the fake for a
// timer registers a pending waiter; WaitForTimers blocks the test until
// the expected number of waiters exists, so the test never races the
// goroutine it is driving:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go runner.Run(ctx)          // registers a backoff timer
//	fake.WaitForTimers(1)
//	fake.Advance(2 * time.Second)
package clock
