// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging speaks the room service's wire protocol.
//
// A frame is a JSON array of flat objects. Each object is one Message;
// its type code travels under the reserved key "m" and every other key
// is a field. One frame may carry several messages, and the pipeline
// treats a frame's messages as one batch.
//
// Two static catalogs list the message types: ServiceBound for what the
// bot may send and ClientBound for what the service sends. Decode is
// total over well-formed frames: a record whose code is missing or not
// in the client-bound catalog becomes a Message with CodeUnknown, and
// missing required fields are tolerated (Entry.Missing reports them for
// callers that care).
//
// The package also provides the transport: Dialer and Transport are the
// two interfaces the connection manager uses, and WebSocketDialer
// implements them with gorilla/websocket.
package messaging
