// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/pianobot/pianobot/messaging"
)

// handlerFunc handles one inbound message.
type handlerFunc func(b *Bot, ctx context.Context, s *session, message messaging.Message) error

// handlers routes inbound messages by code. Codes without an entry are
// accepted and ignored.
var handlers = map[messaging.Code]handlerFunc{
	messaging.CodeChat:         (*Bot).handleChat,
	messaging.CodeChannel:      (*Bot).handleChannel,
	messaging.CodeParticipant:  (*Bot).handleParticipant,
	messaging.CodeHello:        (*Bot).handleHello,
	messaging.CodeMouse:        (*Bot).handleMouse,
	messaging.CodeBye:          (*Bot).handleBye,
	messaging.CodeTime:         (*Bot).handleTime,
	messaging.CodeNotification: (*Bot).handleNotification,
}

// dispatch runs the handler for message. Handler errors and panics are
// logged and counted; only a termination is returned.
func (b *Bot) dispatch(ctx context.Context, s *session, message messaging.Message) (err error) {
	handler, ok := handlers[message.Code]
	if !ok {
		return nil
	}
	name := message.Name(messaging.ClientBound)

	defer func() {
		if recovered := recover(); recovered != nil {
			b.metrics.DispatchErrors.WithLabelValues(name).Inc()
			b.logger.Error("handler panicked",
				"type", name,
				"panic", fmt.Sprint(recovered),
				"stack", string(debug.Stack()),
			)
			err = nil
		}
	}()

	if err := handler(b, ctx, s, message); err != nil {
		if errors.Is(err, ErrTermination) {
			return err
		}
		b.metrics.DispatchErrors.WithLabelValues(name).Inc()
		b.logger.Error("handler failed", "type", name, "error", err)
	}
	return nil
}
