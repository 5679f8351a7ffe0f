// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package bot runs one chat-room bot against the room service.
//
// [Bot.Run] owns the connection lifecycle. Each successful connection
// gets a fresh session: the transport plus an inbound and an outbound
// queue, served by five goroutines:
//
//   - receive reads frames, decodes them and pushes each batch onto
//     the inbound queue.
//   - send pops outbound batches in FIFO order and writes them.
//   - heartbeat enqueues a time ping immediately and then every
//     heartbeat interval.
//   - dispatch pops inbound batches and routes every message through a
//     static table keyed by message code. Chat messages that start with
//     the command prefix go through the command parser and the
//     authorization gate before their handler runs.
//   - tick runs registered [TickFunc]s at a fixed rate and tracks the
//     frame delta.
//
// When any of the five returns, the others are cancelled, the transport
// is closed and Run decides between reconnecting with capped
// exponential backoff and terminating. Only a [TerminationError]
// (including cancellation of the context passed to Run) or an
// [AuthError] terminates.
//
// The participant directory and the user store are touched only from
// the dispatch goroutine, so neither needs locking here.
package bot
