// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds the small I/O helpers shared by the bot's two
// network paths: HTTP downloads for MIDI files and the WebSocket
// connection to the room service.
package netutil

import (
	"errors"
	"fmt"
	"io"
)

// ErrTooLarge is returned by ReadBounded when the body exceeds the limit.
var ErrTooLarge = errors.New("netutil: response body exceeds limit")

// ReadBounded reads body completely as long as it holds at most limit
// bytes. One extra byte is read to tell "exactly limit" from "more".
func ReadBounded(body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("netutil: reading body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}

// Drain discards what is left of body so the connection can be reused.
func Drain(body io.Reader, limit int64) {
	io.Copy(io.Discard, io.LimitReader(body, limit))
}
