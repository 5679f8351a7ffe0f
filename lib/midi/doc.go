// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package midi manages the bot's local library of MIDI files: fetching
// new ones over HTTP, storing them under safe names, and finding them
// again by fuzzy filename search.
//
// Everything here runs synchronously on the goroutine that handles the
// chat command, so a slow download delays the next command rather than
// racing it.
package midi
