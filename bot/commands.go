// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pianobot/pianobot/lib/authorization"
	"github.com/pianobot/pianobot/lib/command"
	"github.com/pianobot/pianobot/lib/midi"
	"github.com/pianobot/pianobot/messaging"
)

// listLimit caps the filenames shown by "gaming -l".
const listLimit = 10

// DefaultCommands is the command catalog the bot answers to.
func DefaultCommands() *command.Catalog {
	catalog, err := command.NewCatalog(
		command.Spec{
			Name:        "help",
			Description: "Prints usage of supported commands",
		},
		command.Spec{
			Name:        "echo",
			Description: "Echos a message back to the user",
			Roles:       []authorization.Role{authorization.RoleUser},
			Positionals: []command.Positional{
				{Name: "message", Type: command.String, Required: true, Trailing: true},
			},
			Options: []command.Option{
				{Name: "uppercase", Type: command.Bool, Flag: 'u', Exclusive: []string{"lowercase"}},
				{Name: "lowercase", Type: command.Bool, Flag: 'l', Exclusive: []string{"uppercase"}},
			},
		},
		command.Spec{
			Name:        "gaming",
			Description: "Rhythm gaming brought straight to your piano! Provide a link to or filename of a .mid and get rewarded with score based on your performance accuracy",
			Roles:       []authorization.Role{authorization.RoleUser},
			Positionals: []command.Positional{
				{Name: "midi", Type: command.String, Trailing: true},
			},
			Options: []command.Option{
				{Name: "list", Type: command.Bool, Flag: 'l'},
				{Name: "output", Type: command.String, Flag: 'o'},
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return catalog
}

// call is one authorized command invocation.
type call struct {
	invocation *command.Invocation
	messageID  string
	senderID   string
}

// commandFunc implements one command after parsing and authorization.
type commandFunc func(b *Bot, ctx context.Context, s *session, c call) error

// commandHandlers maps command names to their implementation. A catalog
// entry with no handler is accepted and does nothing.
var commandHandlers = map[string]commandFunc{
	"help":   (*Bot).commandHelp,
	"echo":   (*Bot).commandEcho,
	"gaming": (*Bot).commandGaming,
}

// handleCommand parses text, checks the sender's roles and runs the
// command. Parse, authorization and handler errors that carry a reply
// are answered in the channel as a reply to messageID.
func (b *Bot) handleCommand(ctx context.Context, s *session, text, messageID, senderID string) error {
	invocation, err := command.Parse(b.commands, b.config.Prefix, text)
	if err != nil {
		b.metrics.Commands.WithLabelValues(commandName(text, b.config.Prefix), outcomeInvalid).Inc()
		return b.replyError(ctx, s, err, messageID)
	}
	spec := invocation.Spec
	if spec.IsUnknown() {
		b.metrics.Commands.WithLabelValues(spec.Name, outcomeUnknown).Inc()
		return nil
	}

	roles, err := b.store.GetUserRoles(ctx, senderID)
	if err != nil {
		b.metrics.Commands.WithLabelValues(spec.Name, outcomeFailed).Inc()
		return fmt.Errorf("reading roles of %s: %w", senderID, err)
	}
	if err := authorization.Authorize(spec.Name, spec.Roles, roles); err != nil {
		b.metrics.Commands.WithLabelValues(spec.Name, outcomeDenied).Inc()
		b.logger.Info("command denied", "command", spec.Name, "sender_id", senderID, "roles", roles.String())
		return b.replyError(ctx, s, err, messageID)
	}

	handler, ok := commandHandlers[spec.Name]
	if !ok {
		return nil
	}
	err = handler(b, ctx, s, call{invocation: invocation, messageID: messageID, senderID: senderID})
	if err != nil {
		b.metrics.Commands.WithLabelValues(spec.Name, outcomeFailed).Inc()
		return b.replyError(ctx, s, err, messageID)
	}
	b.metrics.Commands.WithLabelValues(spec.Name, outcomeOK).Inc()
	return nil
}

// replyError answers err in the channel when it carries a reply. A
// termination reply is written directly, since the send loop stops with
// the session. Errors without a reply are returned for logging.
func (b *Bot) replyError(ctx context.Context, s *session, err error, messageID string) error {
	var withReply replier
	if !errors.As(err, &withReply) {
		return err
	}
	reply := []messaging.Message{messaging.NewReply(withReply.Reply(), messageID)}
	if errors.Is(err, ErrTermination) {
		if sendErr := b.send(ctx, s.transport, reply); sendErr != nil {
			b.logger.Debug("termination notice not delivered", "error", sendErr)
		}
		return err
	}
	s.outbound.Push(reply)
	return nil
}

// commandName guesses the command word of text for metric labels when
// parsing failed.
func commandName(text, prefix string) string {
	fields := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(fields) == 0 {
		return command.Unknown.Name
	}
	return strings.ToLower(fields[0])
}

// commandHelp posts the usage of every command, one chat line each.
func (b *Bot) commandHelp(ctx context.Context, s *session, c call) error {
	var batch []messaging.Message
	for _, spec := range b.commands.Commands() {
		batch = append(batch, messaging.NewChat(fmt.Sprintf("`%s`: %s", spec.Usage(b.config.Prefix), spec.Description)))
	}
	s.outbound.Push(batch)
	return nil
}

// commandEcho posts the message back, changing its case with -u or -l.
func (b *Bot) commandEcho(ctx context.Context, s *session, c call) error {
	message, _ := c.invocation.Arg("message")
	text := message.Text()
	switch {
	case c.invocation.Flag("uppercase"):
		text = strings.ToUpper(text)
	case c.invocation.Flag("lowercase"):
		text = strings.ToLower(text)
	}
	s.outbound.Push([]messaging.Message{messaging.NewChat(text)})
	return nil
}

// commandGaming lists, downloads or selects MIDI files:
//
//   - with -l, lists library files matching the optional query;
//   - with a URL, downloads the file into the library, named by -o or
//     by content hash;
//   - with anything else, picks the best fuzzy match in the library.
func (b *Bot) commandGaming(ctx context.Context, s *session, c call) error {
	if b.library == nil {
		return &ReplyError{Text: "**Error:** No MIDI library is configured"}
	}
	argument, _ := c.invocation.Arg("midi")
	query := strings.TrimSpace(argument.Text())
	reply := func(text string) {
		s.outbound.Push([]messaging.Message{messaging.NewReply(text, c.messageID)})
	}

	if c.invocation.Flag("list") {
		names, err := b.library.SearchFilenames(query)
		if err != nil {
			return fmt.Errorf("searching MIDI library: %w", err)
		}
		reply(formatList(names, query))
		return nil
	}

	if query == "" {
		return &command.ArgumentMissingError{Argument: "midi"}
	}

	if midi.IsURL(query) {
		if b.fetcher == nil {
			return &ReplyError{Text: "**Error:** Downloading is not enabled"}
		}
		data, err := b.fetcher.Fetch(ctx, query)
		var withReply replier
		if err != nil && !errors.As(err, &withReply) {
			return &ReplyError{Text: fmt.Sprintf("**Error:** Failed to retrieve webpage: *%s*", query), Err: err}
		}
		if err != nil {
			return err
		}
		output, _ := c.invocation.Option("output")
		name, err := b.library.Save(output.Text(), data)
		if errors.Is(err, midi.ErrNotMIDI) {
			return &ReplyError{Text: fmt.Sprintf("**Error:** *%s* is not a MIDI file", query), Err: err}
		}
		if err != nil {
			return fmt.Errorf("saving download from %s: %w", query, err)
		}
		b.logger.Info("midi file downloaded", "url", query, "file", name, "sender_id", c.senderID)
		reply(fmt.Sprintf("Saved `%s`", name))
		return nil
	}

	names, err := b.library.SearchFilenames(query)
	if err != nil {
		return fmt.Errorf("searching MIDI library: %w", err)
	}
	if len(names) == 0 {
		return &ReplyError{Text: fmt.Sprintf("**Error:** No MIDI file matches `%s`", query)}
	}
	reply(fmt.Sprintf("Selected `%s`", names[0]))
	return nil
}

// formatList renders "gaming -l" results, at most listLimit names.
func formatList(names []string, query string) string {
	if len(names) == 0 {
		if query == "" {
			return "The MIDI library is empty"
		}
		return fmt.Sprintf("No MIDI file matches `%s`", query)
	}
	shown := names
	if len(shown) > listLimit {
		shown = shown[:listLimit]
	}
	text := "MIDI files: `" + strings.Join(shown, "`, `") + "`"
	if extra := len(names) - len(shown); extra > 0 {
		text += fmt.Sprintf(" and %d more", extra)
	}
	return text
}
