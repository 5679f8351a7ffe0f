// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Message is one protocol record.
type Message struct {
	Code Code

	// Fields holds every key of the record except "m". Values are
	// whatever encoding/json produces for the wire form: string,
	// float64, bool, nil, []any, map[string]any.
	Fields map[string]any

	// RawCode is the "m" value of a record decoded as CodeUnknown,
	// empty when the record had none. Encode sends it back out
	// unchanged.
	RawCode string
}

// String returns the field as a string.
func (m Message) String(key string) (string, bool) {
	value, ok := m.Fields[key].(string)
	return value, ok
}

// Float returns a numeric field. The service sends coordinates as
// numeric strings in some messages and as numbers in others, so both
// are accepted.
func (m Message) Float(key string) (float64, bool) {
	return AsFloat(m.Fields[key])
}

// Map returns a nested object field.
func (m Message) Map(key string) (map[string]any, bool) {
	value, ok := m.Fields[key].(map[string]any)
	return value, ok
}

// Slice returns an array field.
func (m Message) Slice(key string) ([]any, bool) {
	value, ok := m.Fields[key].([]any)
	return value, ok
}

// AsFloat converts a decoded JSON value to float64 when it is a number,
// a json.Number, or a string holding a number.
func AsFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case json.Number:
		parsed, err := typed.Float64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(typed, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

var senderPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// Sender returns the first string anywhere in the message, searched
// depth-first with object keys in sorted order, that looks like a
// participant id: exactly 24 lowercase hex digits.
func (m Message) Sender() (string, bool) {
	return findSender(m.Fields)
}

func findSender(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		if senderPattern.MatchString(typed) {
			return typed, true
		}
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if sender, ok := findSender(typed[key]); ok {
				return sender, true
			}
		}
	case []any:
		for _, element := range typed {
			if sender, ok := findSender(element); ok {
				return sender, true
			}
		}
	}
	return "", false
}

// Name is the catalog name of the message's type in direction, used as
// a log and metric label.
func (m Message) Name(direction Direction) string {
	entry, _ := Lookup(direction, m.Code)
	return entry.Name
}

// NewHello authenticates the connection.
func NewHello(token string) Message {
	return Message{Code: CodeHello, Fields: map[string]any{"token": token}}
}

// NewUserSet sets the bot's display name and color.
func NewUserSet(name, color string) Message {
	return Message{Code: CodeUserSet, Fields: map[string]any{
		"set": map[string]any{"name": name, "color": color},
	}}
}

// NewJoin moves the bot into channel.
func NewJoin(channel string) Message {
	return Message{Code: CodeChannel, Fields: map[string]any{"_id": channel}}
}

// NewBye announces a clean disconnect.
func NewBye() Message {
	return Message{Code: CodeBye, Fields: map[string]any{}}
}

// NewPing is the heartbeat, stamped with the sender's clock in
// milliseconds.
func NewPing(at time.Time) Message {
	return Message{Code: CodeTime, Fields: map[string]any{"e": at.UnixMilli()}}
}

// NewChat posts text to the channel.
func NewChat(text string) Message {
	return Message{Code: CodeChat, Fields: map[string]any{"message": text}}
}

// NewReply posts text as a reply to the chat message with id replyTo.
func NewReply(text, replyTo string) Message {
	if replyTo == "" {
		return NewChat(text)
	}
	return Message{Code: CodeChat, Fields: map[string]any{"message": text, "reply_to": replyTo}}
}
