// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/pianobot/pianobot/lib/config"
	"github.com/pianobot/pianobot/lib/netutil"
	"github.com/pianobot/pianobot/lib/transcript"
	"github.com/pianobot/pianobot/messaging"
)

// disconnectTimeout bounds the farewell write in disconnect.
const disconnectTimeout = 2 * time.Second

// redactedToken replaces the token in transcripts and logs.
const redactedToken = "redacted"

// redactedFrame stands in for a frame carrying a token that could not
// be re-encoded without it.
const redactedFrame = `[{"m":"hi","token":"` + redactedToken + `"}]`

// session is the per-connection state shared by the five loops.
type session struct {
	transport messaging.Transport
	inbound   *Queue
	outbound  *Queue
}

// connect dials the service, authenticates, sets the bot's name and
// color and joins the configured channel. On success the reconnect
// counter is reset and a fresh session is returned. On failure the
// transport, if one was opened, is left for disconnect to close.
func (b *Bot) connect(ctx context.Context) (*session, error) {
	if b.token == nil || b.token.Len() == 0 {
		return nil, &AuthError{Reason: "no token configured"}
	}

	address := b.config.URL()
	b.setState(StateConnecting)
	b.logger.Info("connecting", "address", address)
	transport, err := b.dialer.Dial(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("bot: connecting to %s: %w", address, err)
	}
	b.mu.Lock()
	b.transport = transport
	b.mu.Unlock()

	b.setState(StateAuthenticating)
	if err := b.send(ctx, transport, []messaging.Message{messaging.NewHello(b.token.String())}); err != nil {
		return nil, fmt.Errorf("bot: authenticating: %w", err)
	}

	b.setState(StateJoining)
	identity := b.config.Identity
	join := []messaging.Message{
		messaging.NewUserSet(identity.Name, identity.Color),
		messaging.NewJoin(identity.Channel),
	}
	if err := b.send(ctx, transport, join); err != nil {
		return nil, fmt.Errorf("bot: joining %s: %w", identity.Channel, err)
	}

	b.directory.Reset()
	b.selfID = ""

	b.mu.Lock()
	b.attempts = 0
	b.mu.Unlock()
	b.setState(StateConnected)
	b.logger.Info("connected", "channel", identity.Channel, "name", identity.Name)

	return &session{
		transport: transport,
		inbound:   NewQueue(),
		outbound:  NewQueue(),
	}, nil
}

// disconnect says goodbye and closes the transport if one is open. It
// is safe to call at any time and any number of times.
func (b *Bot) disconnect() {
	b.mu.Lock()
	transport := b.transport
	b.transport = nil
	b.mu.Unlock()

	if transport != nil {
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if err := b.send(ctx, transport, []messaging.Message{messaging.NewBye()}); err != nil {
			b.logger.Debug("farewell not delivered", "error", err)
		}
		if err := transport.Close(); err != nil && !netutil.IsExpectedCloseError(err) {
			b.logger.Warn("closing transport", "error", err)
		}
		b.logger.Info("disconnected")
	}
	b.setState(StateDisconnected)
}

// send encodes batch and writes it as one frame.
func (b *Bot) send(ctx context.Context, transport messaging.Transport, batch []messaging.Message) error {
	frame, err := messaging.Encode(batch)
	if err != nil {
		return err
	}
	b.record(transcript.Outbound, frame, batch)
	if err := transport.WriteFrame(ctx, frame); err != nil {
		return err
	}
	b.metrics.FramesSent.Inc()
	for _, message := range batch {
		b.metrics.MessagesSent.WithLabelValues(message.Name(messaging.ServiceBound)).Inc()
	}
	return nil
}

// record writes frame to the transcript and the debug log, with any
// authentication token replaced.
func (b *Bot) record(direction transcript.Direction, frame []byte, batch []messaging.Message) {
	category := config.CategoryInbound
	if direction == transcript.Outbound {
		category = config.CategoryOutbound
	}
	logged := b.verbosity.Categories.Has(category)
	if b.recorder == nil && !logged {
		return
	}

	frame = redact(frame, batch)
	if b.recorder != nil {
		if err := b.recorder.Record(direction, b.clock.Now(), frame); err != nil {
			b.logger.Warn("transcript write failed", "error", err)
		}
	}
	if logged {
		b.logger.Debug("frame", "direction", direction, "frame", string(frame))
	}
}

// redact re-encodes batch without its token when it carries one.
func redact(frame []byte, batch []messaging.Message) []byte {
	secret := false
	for _, message := range batch {
		if _, ok := message.Fields["token"]; ok {
			secret = true
			break
		}
	}
	if !secret {
		return frame
	}

	cleaned := make([]messaging.Message, len(batch))
	for index, message := range batch {
		cleaned[index] = message
		if _, ok := message.Fields["token"]; ok {
			fields := make(map[string]any, len(message.Fields))
			for key, value := range message.Fields {
				fields[key] = value
			}
			fields["token"] = redactedToken
			cleaned[index].Fields = fields
		}
	}
	redacted, err := messaging.Encode(cleaned)
	if err != nil {
		return []byte(redactedFrame)
	}
	return redacted
}
