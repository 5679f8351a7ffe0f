// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for pianobot packages.
//
// [RequireReceive], [RequireClosed] and [Eventually] are the only
// places tests wait on the wall clock; they exist to turn a hang into a
// failure. Timer-driven code under test runs on the fake clock from
// lib/clock instead.
//
// [ParticipantID] produces distinct ids in the 24-hex-digit shape the
// room service assigns, and [Logger] returns a logger that discards
// everything unless PIANOBOT_TEST_LOG is set.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
