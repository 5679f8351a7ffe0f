// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import "time"

// Backoff returns the delay before reconnect attempt number attempt
// (zero-based): base doubled once per attempt, capped at limit.
func Backoff(attempt int, base, limit time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if limit < base {
		limit = base
	}
	delay := base
	for range attempt {
		if delay >= limit/2 {
			return limit
		}
		delay *= 2
	}
	return min(delay, limit)
}
