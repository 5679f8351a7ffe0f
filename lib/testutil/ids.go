// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var participantCounter atomic.Uint64

// ParticipantID returns a new id shaped like the ones the room service
// assigns: 24 lowercase hex digits.
func ParticipantID() string {
	return fmt.Sprintf("%024x", participantCounter.Add(1))
}

// Logger discards output unless PIANOBOT_TEST_LOG is non-empty, in which
// case it logs at debug level to stderr.
func Logger() *slog.Logger {
	if os.Getenv("PIANOBOT_TEST_LOG") == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
