// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

// Code is a message type code as it appears under the "m" key.
type Code string

// CodeUnknown is the zero Code. Decode assigns it to every record it
// cannot place in the client-bound catalog.
const CodeUnknown Code = ""

// Type codes. Several codes exist in both directions with different
// fields; the catalogs are the authority on which fields go with which
// direction.
const (
	CodeChat              Code = "a"
	CodeBye               Code = "bye"
	CodeChannel           Code = "ch"
	CodeChown             Code = "chown"
	CodeChannelSettings   Code = "chset"
	CodeCustom            Code = "custom"
	CodeDevices           Code = "devices"
	CodeDirectMessage     Code = "dm"
	CodeHello             Code = "hi"
	CodeKickBan           Code = "kickban"
	CodeUnban             Code = "unban"
	CodeUserSet           Code = "userset"
	CodeMouse             Code = "m"
	CodeNote              Code = "n"
	CodeTime              Code = "t"
	CodeSubscribeCustom   Code = "+custom"
	CodeSubscribeList     Code = "+ls"
	CodeUnsubscribeCustom Code = "-custom"
	CodeUnsubscribeList   Code = "-ls"

	CodeVerify       Code = "b"
	CodeChatHistory  Code = "c"
	CodeChannelList  Code = "ls"
	CodeNotification Code = "notification"
	CodeNoteQuota    Code = "nq"
	CodeParticipant  Code = "p"
)

// Direction says which side of the connection sends a message type.
type Direction int

const (
	// ServiceBound messages go from the bot to the service.
	ServiceBound Direction = iota

	// ClientBound messages go from the service to the bot.
	ClientBound
)

func (d Direction) String() string {
	if d == ServiceBound {
		return "outbound"
	}
	return "inbound"
}

// Entry describes one message type.
type Entry struct {
	Code     Code
	Name     string
	Required []string
	Optional []string
}

// Missing lists required fields absent from fields.
func (e Entry) Missing(fields map[string]any) []string {
	var missing []string
	for _, key := range e.Required {
		if _, ok := fields[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

var serviceBound = []Entry{
	{Code: CodeChat, Name: "chat", Required: []string{"message"}, Optional: []string{"reply_to"}},
	{Code: CodeBye, Name: "bye"},
	{Code: CodeChannel, Name: "channel", Required: []string{"_id"}, Optional: []string{"set"}},
	{Code: CodeChown, Name: "chown", Optional: []string{"_id"}},
	{Code: CodeChannelSettings, Name: "channel_settings", Required: []string{"set"}},
	{Code: CodeCustom, Name: "custom", Required: []string{"data"}, Optional: []string{"target"}},
	{Code: CodeDevices, Name: "devices", Required: []string{"list"}},
	{Code: CodeDirectMessage, Name: "direct_message", Required: []string{"message", "_id"}, Optional: []string{"reply_to"}},
	{Code: CodeHello, Name: "hello", Optional: []string{"token", "code", "login"}},
	{Code: CodeKickBan, Name: "kickban", Required: []string{"_id", "ms"}},
	{Code: CodeUnban, Name: "unban", Required: []string{"_id"}},
	{Code: CodeUserSet, Name: "userset", Required: []string{"set"}},
	{Code: CodeMouse, Name: "mouse", Required: []string{"x", "y"}},
	{Code: CodeNote, Name: "note", Required: []string{"t", "n"}},
	{Code: CodeTime, Name: "ping", Optional: []string{"e"}},
	{Code: CodeSubscribeCustom, Name: "subscribe_custom"},
	{Code: CodeSubscribeList, Name: "subscribe_channel_list"},
	{Code: CodeUnsubscribeCustom, Name: "unsubscribe_custom"},
	{Code: CodeUnsubscribeList, Name: "unsubscribe_channel_list"},
}

var clientBound = []Entry{
	{Code: CodeChat, Name: "chat", Required: []string{"id", "t", "a", "p"}, Optional: []string{"r"}},
	{Code: CodeDirectMessage, Name: "direct_message", Required: []string{"id", "t", "a", "sender", "recipient"}, Optional: []string{"r"}},
	{Code: CodeVerify, Name: "verify", Required: []string{"code"}},
	{Code: CodeBye, Name: "bye", Required: []string{"p"}},
	{Code: CodeChatHistory, Name: "chat_history", Required: []string{"c"}},
	{Code: CodeChannel, Name: "channel", Required: []string{"p", "ppl", "ch"}},
	{Code: CodeCustom, Name: "custom", Required: []string{"data", "p"}},
	{Code: CodeHello, Name: "hello", Required: []string{"t", "u", "permissions", "accountInfo"}, Optional: []string{"token"}},
	{Code: CodeChannelList, Name: "channel_list", Required: []string{"c", "u"}},
	{Code: CodeMouse, Name: "mouse", Required: []string{"id", "x", "y"}},
	{Code: CodeNote, Name: "note", Required: []string{"t", "p", "n"}},
	{Code: CodeNotification, Name: "notification", Optional: []string{"duration", "class", "id", "title", "text", "html", "target"}},
	{Code: CodeNoteQuota, Name: "note_quota", Required: []string{"allowance", "max", "maxHistLen"}},
	{Code: CodeParticipant, Name: "participant", Required: []string{"id", "_id", "name", "color", "x", "y"}, Optional: []string{"tag", "vanished"}},
	{Code: CodeTime, Name: "time", Required: []string{"t"}, Optional: []string{"e"}},
}

var catalogs = [...]map[Code]Entry{
	ServiceBound: index(serviceBound),
	ClientBound:  index(clientBound),
}

func index(entries []Entry) map[Code]Entry {
	byCode := make(map[Code]Entry, len(entries))
	for _, entry := range entries {
		byCode[entry.Code] = entry
	}
	return byCode
}

// unknownEntry describes CodeUnknown in both directions.
var unknownEntry = Entry{Code: CodeUnknown, Name: "unknown"}

// Lookup returns the catalog entry for code in direction. Codes outside
// the catalog return the unknown entry and false.
func Lookup(direction Direction, code Code) (Entry, bool) {
	entry, ok := catalogs[direction][code]
	if !ok {
		return unknownEntry, false
	}
	return entry, true
}

// Entries lists a direction's catalog in declaration order.
func Entries(direction Direction) []Entry {
	source := clientBound
	if direction == ServiceBound {
		source = serviceBound
	}
	return append([]Entry(nil), source...)
}
