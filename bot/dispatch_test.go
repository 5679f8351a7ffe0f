// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pianobot/pianobot/lib/roster"
	"github.com/pianobot/pianobot/lib/testutil"
	"github.com/pianobot/pianobot/messaging"
)

// newSession returns a session for calling dispatch directly, without
// running the loops.
func newSession() *session {
	return &session{transport: newFakeTransport(), inbound: NewQueue(), outbound: NewQueue()}
}

func TestDispatchUpdatesDirectory(t *testing.T) {
	h := newHarness(t, nil)
	s := newSession()
	ctx := context.Background()
	id := testutil.ParticipantID()

	join := messaging.Message{Code: messaging.CodeParticipant, Fields: map[string]any{
		"id": id, "_id": id, "name": "Alice", "color": "#ff0000", "x": 1.0, "y": 2.0,
	}}
	if err := h.bot.dispatch(ctx, s, join); err != nil {
		t.Fatalf("dispatch p: %v", err)
	}
	move := messaging.Message{Code: messaging.CodeMouse, Fields: map[string]any{"id": id, "x": "30.5", "y": 40.0}}
	if err := h.bot.dispatch(ctx, s, move); err != nil {
		t.Fatalf("dispatch m: %v", err)
	}

	participant, ok := h.bot.directory.Get(id)
	if !ok {
		t.Fatalf("participant %s not in directory", id)
	}
	if participant.Position != (roster.Vector{X: 30.5, Y: 40}) {
		t.Errorf("position = %+v, want {30.5 40}", participant.Position)
	}
	if exists, _ := h.store.UserExists(ctx, id); !exists {
		t.Errorf("participant not synced to the store")
	}
}

func TestDispatchContainsFailures(t *testing.T) {
	h := newHarness(t, nil)
	s := newSession()
	ctx := context.Background()

	// A handler error is counted, not returned.
	broken := messaging.Message{Code: messaging.CodeMouse, Fields: map[string]any{"id": "x"}}
	if err := h.bot.dispatch(ctx, s, broken); err != nil {
		t.Errorf("dispatch of a bad mouse update = %v, want nil", err)
	}
	if got := promtestutil.ToFloat64(h.bot.Metrics().DispatchErrors.WithLabelValues("mouse")); got != 1 {
		t.Errorf("dispatch errors for mouse = %v, want 1", got)
	}

	// So is a panic.
	previous := handlers[messaging.CodeCustom]
	handlers[messaging.CodeCustom] = func(*Bot, context.Context, *session, messaging.Message) error {
		panic("handler bug")
	}
	t.Cleanup(func() {
		if previous == nil {
			delete(handlers, messaging.CodeCustom)
		} else {
			handlers[messaging.CodeCustom] = previous
		}
	})
	custom := messaging.Message{Code: messaging.CodeCustom, Fields: map[string]any{}}
	if err := h.bot.dispatch(ctx, s, custom); err != nil {
		t.Errorf("dispatch of a panicking handler = %v, want nil", err)
	}
	if got := promtestutil.ToFloat64(h.bot.Metrics().DispatchErrors.WithLabelValues("custom")); got != 1 {
		t.Errorf("dispatch errors for custom = %v, want 1", got)
	}

	// Terminations pass through.
	handlers[messaging.CodeCustom] = func(*Bot, context.Context, *session, messaging.Message) error {
		return Terminate(errors.New("stop"))
	}
	if err := h.bot.dispatch(ctx, s, custom); !errors.Is(err, ErrTermination) {
		t.Errorf("dispatch of a terminating handler = %v, want ErrTermination", err)
	}

	// Unknown codes are ignored.
	if err := h.bot.dispatch(ctx, s, messaging.Message{Code: messaging.CodeUnknown, RawCode: "zz"}); err != nil {
		t.Errorf("dispatch of an unknown code = %v, want nil", err)
	}
}

func TestRedactHidesToken(t *testing.T) {
	batch := []messaging.Message{messaging.NewHello("hunter2")}
	frame, err := messaging.Encode(batch)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	redacted := string(redact(frame, batch))
	if redacted == string(frame) || !strings.Contains(redacted, redactedToken) || strings.Contains(redacted, "hunter2") {
		t.Errorf("redacted frame = %s", redacted)
	}
	if batch[0].Fields["token"] != "hunter2" {
		t.Errorf("redact modified the original message")
	}

	plain := []messaging.Message{messaging.NewChat("hello")}
	plainFrame, _ := messaging.Encode(plain)
	if string(redact(plainFrame, plain)) != string(plainFrame) {
		t.Errorf("frame without a token was rewritten")
	}

	// A channel cannot be encoded, so the batch falls back to a fixed
	// frame rather than an empty one.
	broken := []messaging.Message{
		messaging.NewHello("hunter2"),
		{Code: messaging.CodeChat, Fields: map[string]any{"message": make(chan int)}},
	}
	if got := string(redact([]byte("unused"), broken)); got != redactedFrame {
		t.Errorf("redact of an unencodable batch = %q, want %q", got, redactedFrame)
	}
}
