// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint helper for pianobot binaries:
// reporting the error that ended run() on stderr, where the structured
// logger may not exist yet, and choosing the exit status.
package process
