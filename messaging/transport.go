// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pianobot/pianobot/lib/netutil"
)

// ErrClosed wraps every read or write failure on an established
// transport. The connection manager treats it as the signal to
// reconnect.
var ErrClosed = errors.New("messaging: transport closed")

// Transport is an established, framed, bidirectional connection.
// ReadFrame is called from one goroutine only. WriteFrame may be called
// from several; implementations serialise writes. Close unblocks a
// pending ReadFrame and may be called more than once.
type Transport interface {
	// ReadFrame blocks until the next frame arrives or the transport
	// fails. Failures on an established connection wrap ErrClosed.
	ReadFrame(ctx context.Context) ([]byte, error)

	// WriteFrame sends frame as a single message. It returns once the
	// frame is written, the transport fails, or ctx ends while waiting
	// behind another writer.
	WriteFrame(ctx context.Context, frame []byte) error

	// Close releases the connection and fails pending reads and writes.
	Close() error
}

// Dialer opens Transports.
type Dialer interface {
	// Dial connects to address and returns an established Transport.
	Dial(ctx context.Context, address string) (Transport, error)
}

// MaxFrameSize bounds a single inbound frame. Channel rosters are the
// largest frames the service sends and stay far below this.
const MaxFrameSize = 4 << 20

// closeGrace bounds how long Close waits to deliver the close frame.
const closeGrace = time.Second

// WebSocketDialer dials the service over gorilla/websocket.
type WebSocketDialer struct {
	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
	Logger *slog.Logger
}

// Dial connects to address (ws:// or wss://). The Origin header is set
// to the service's own https origin, which the service requires.
func (d *WebSocketDialer) Dial(ctx context.Context, address string) (Transport, error) {
	parsed, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("messaging: invalid address %q: %w", address, err)
	}
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	header := http.Header{}
	header.Set("Origin", "https://"+parsed.Hostname())

	conn, response, err := dialer.DialContext(ctx, address, header)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("messaging: dialing %s: %w (HTTP %d)", address, err, response.StatusCode)
		}
		return nil, fmt.Errorf("messaging: dialing %s: %w", address, err)
	}
	conn.SetReadLimit(MaxFrameSize)
	return newWebSocketTransport(conn, logger), nil
}

type webSocketTransport struct {
	conn   *websocket.Conn
	logger *slog.Logger

	// writeSlot holds a token while a write is in progress;
	// gorilla/websocket allows one concurrent writer. A channel rather
	// than a mutex so a writer queued behind a stalled one can give up
	// when its context ends.
	writeSlot chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func newWebSocketTransport(conn *websocket.Conn, logger *slog.Logger) *webSocketTransport {
	return &webSocketTransport{conn: conn, logger: logger, writeSlot: make(chan struct{}, 1)}
}

// ReadFrame returns the next text or binary message, skipping anything
// else. Every read failure, including the one Close provokes, wraps
// ErrClosed.
func (t *webSocketTransport) ReadFrame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for {
		kind, data, err := t.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrClosed, err)
		}
		if kind == websocket.TextMessage || kind == websocket.BinaryMessage {
			return data, nil
		}
	}
}

// WriteFrame sends frame as one text message. Waiting for another
// writer ends with ctx; the write itself is bounded by ctx's deadline,
// if any. A writer stalled without a deadline is released by Close.
func (t *webSocketTransport) WriteFrame(ctx context.Context, frame []byte) error {
	select {
	case t.writeSlot <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("messaging: waiting to write: %w", ctx.Err())
	}
	defer func() { <-t.writeSlot }()

	deadline, _ := ctx.Deadline()
	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return nil
}

// Close sends a close frame, best effort and bounded by closeGrace,
// then closes the socket. Closing the socket fails any pending read or
// write. Later calls return the first call's result.
func (t *webSocketTransport) Close() error {
	t.closeOnce.Do(func() {
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := t.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(closeGrace)); err != nil &&
			!errors.Is(err, websocket.ErrCloseSent) && !netutil.IsExpectedCloseError(err) {
			t.logger.Debug("sending close frame failed", "error", err)
		}
		t.closeErr = t.conn.Close()
		if netutil.IsExpectedCloseError(t.closeErr) {
			t.closeErr = nil
		}
	})
	return t.closeErr
}
