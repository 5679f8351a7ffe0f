// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package roster tracks the participants of the bot's current channel
// and keeps the user store in step with them.
//
// The Directory is owned by the dispatch goroutine and is not locked.
// Syncer turns every roster sighting into a user-store upsert.
package roster

import (
	"errors"
	"fmt"

	"github.com/pianobot/pianobot/messaging"
)

// BotTagText is the tag the service shows on automated participants.
const BotTagText = "BOT"

// Vector is a cursor position.
type Vector struct {
	X, Y float64
}

// Tag is the badge the service may attach to a participant.
type Tag struct {
	Text  string
	Color string
}

// Participant is one member of the channel.
type Participant struct {
	ID       string
	Name     string
	Color    string
	Position Vector
	Tag      *Tag
	Vanished *bool
}

// IsBot reports whether the participant carries the BOT tag. The match
// is exact.
func (p Participant) IsBot() bool {
	return p.Tag != nil && p.Tag.Text == BotTagText
}

// ErrNoID is returned by DecodeParticipant for records without an id.
var ErrNoID = errors.New("roster: participant record has no id")

// DecodeParticipant reads a participant object as it appears in "p"
// messages and in the "ppl" list of "ch" messages. The id is taken from
// "id", falling back to "_id". Coordinates may be numbers or numeric
// strings; anything else leaves them at zero.
func DecodeParticipant(fields map[string]any) (Participant, error) {
	id, _ := fields["id"].(string)
	if id == "" {
		id, _ = fields["_id"].(string)
	}
	if id == "" {
		return Participant{}, ErrNoID
	}

	participant := Participant{ID: id}
	participant.Name, _ = fields["name"].(string)
	participant.Color, _ = fields["color"].(string)
	participant.Position.X, _ = messaging.AsFloat(fields["x"])
	participant.Position.Y, _ = messaging.AsFloat(fields["y"])

	if tag, ok := fields["tag"].(map[string]any); ok {
		text, _ := tag["text"].(string)
		color, _ := tag["color"].(string)
		participant.Tag = &Tag{Text: text, Color: color}
	}
	if vanished, ok := fields["vanished"].(bool); ok {
		participant.Vanished = &vanished
	}
	return participant, nil
}

// DecodeRoster decodes every element of a "ppl" list. Elements that
// are not participant objects are reported in the joined error and
// skipped; the rest are returned in order.
func DecodeRoster(people []any) ([]Participant, error) {
	participants := make([]Participant, 0, len(people))
	var errs []error
	for index, element := range people {
		fields, ok := element.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Errorf("roster: ppl[%d] is %T, not an object", index, element))
			continue
		}
		participant, err := DecodeParticipant(fields)
		if err != nil {
			errs = append(errs, fmt.Errorf("ppl[%d]: %w", index, err))
			continue
		}
		participants = append(participants, participant)
	}
	return participants, errors.Join(errs...)
}
