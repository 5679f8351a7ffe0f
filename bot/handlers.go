// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pianobot/pianobot/lib/roster"
	"github.com/pianobot/pianobot/messaging"
)

// handleChat looks for commands in chat messages. Messages the bot sent
// itself are ignored so a reply can never trigger another command. A
// message with no identifiable sender is still handled, with no roles.
func (b *Bot) handleChat(ctx context.Context, s *session, message messaging.Message) error {
	sender := chatSender(message)
	if sender != "" && sender == b.selfID {
		return nil
	}
	text, _ := message.String("a")
	text = strings.TrimSpace(text)
	prefix := b.config.Prefix
	if !strings.HasPrefix(text, prefix) || len(text) <= len(prefix) {
		return nil
	}
	messageID, _ := message.String("id")
	return b.handleCommand(ctx, s, text, messageID, sender)
}

// chatSender is the author of a chat message: the participant object's
// _id or id, or failing that the first id-shaped string in the record.
func chatSender(message messaging.Message) string {
	if participant, ok := message.Map("p"); ok {
		for _, key := range []string{"_id", "id"} {
			if id, ok := participant[key].(string); ok && id != "" {
				return id
			}
		}
	}
	id, _ := message.Sender()
	return id
}

// handleChannel takes the roster snapshot sent on join and on channel
// changes.
func (b *Bot) handleChannel(ctx context.Context, s *session, message messaging.Message) error {
	people, _ := message.Slice("ppl")
	participants, err := roster.DecodeRoster(people)
	if err != nil {
		b.logger.Warn("roster snapshot had undecodable entries", "error", err)
	}
	var errs []error
	for _, participant := range participants {
		if err := b.track(ctx, participant); err != nil {
			errs = append(errs, err)
		}
	}
	if channel, ok := message.Map("ch"); ok {
		b.logger.Info("channel roster received", "channel", channel["_id"], "participants", len(participants))
	}
	return errors.Join(errs...)
}

// handleParticipant handles a single join or participant update.
func (b *Bot) handleParticipant(ctx context.Context, s *session, message messaging.Message) error {
	participant, err := roster.DecodeParticipant(message.Fields)
	if err != nil {
		return err
	}
	return b.track(ctx, participant)
}

// track records participant in the session directory and the user
// store.
func (b *Bot) track(ctx context.Context, participant roster.Participant) error {
	b.directory.Upsert(participant)
	return b.syncer.Sync(ctx, participant)
}

// handleHello records the id the service assigned to the bot.
func (b *Bot) handleHello(ctx context.Context, s *session, message messaging.Message) error {
	user, ok := message.Map("u")
	if !ok {
		return errors.New("hello without user object")
	}
	for _, key := range []string{"_id", "id"} {
		if id, ok := user[key].(string); ok && id != "" {
			b.selfID = id
			break
		}
	}
	b.logger.Info("authenticated", "user_id", b.selfID, "user_name", user["name"])
	return nil
}

// handleMouse moves a participant's cursor in the directory.
func (b *Bot) handleMouse(ctx context.Context, s *session, message messaging.Message) error {
	id, _ := message.String("id")
	x, xok := message.Float("x")
	y, yok := message.Float("y")
	if id == "" || !xok || !yok {
		return fmt.Errorf("mouse update missing id or coordinates: %v", message.Fields)
	}
	b.directory.Move(id, roster.Vector{X: x, Y: y})
	return nil
}

// handleBye notes a departure. Directory entries are kept for the rest
// of the session.
func (b *Bot) handleBye(ctx context.Context, s *session, message messaging.Message) error {
	id, _ := message.String("p")
	b.logger.Debug("participant left", "participant_id", id)
	return nil
}

// handleTime measures heartbeat round trips from the echoed client
// timestamp.
func (b *Bot) handleTime(ctx context.Context, s *session, message messaging.Message) error {
	echoed, ok := message.Float("e")
	if !ok {
		return nil
	}
	rtt := sinceMillis(b.clock.Now(), echoed)
	if rtt >= 0 {
		b.metrics.HeartbeatRTT.Observe(rtt.Seconds())
	}
	return nil
}

// handleNotification logs service notices such as rate-limit
// warnings. They are not shown in the channel.
func (b *Bot) handleNotification(ctx context.Context, s *session, message messaging.Message) error {
	title, _ := message.String("title")
	text, _ := message.String("text")
	b.logger.Info("service notification", "title", title, "text", text)
	return nil
}
