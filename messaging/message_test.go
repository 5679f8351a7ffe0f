// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSender(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   string
		found  bool
	}{
		{
			name:   "nested participant",
			fields: map[string]any{"a": "hello", "p": map[string]any{"_id": "aaaaaaaaaaaaaaaaaaaaaaaa", "name": "x"}},
			want:   "aaaaaaaaaaaaaaaaaaaaaaaa",
			found:  true,
		},
		{
			name:   "inside array",
			fields: map[string]any{"ppl": []any{map[string]any{"id": "0123456789abcdef01234567"}}},
			want:   "0123456789abcdef01234567",
			found:  true,
		},
		{
			name:   "uppercase hex rejected",
			fields: map[string]any{"id": "0123456789ABCDEF01234567"},
		},
		{
			name:   "wrong length rejected",
			fields: map[string]any{"id": "0123456789abcdef0123456"},
		},
		{
			name: "sorted key order",
			fields: map[string]any{
				"z": "bbbbbbbbbbbbbbbbbbbbbbbb",
				"b": "cccccccccccccccccccccccc",
			},
			want:  "cccccccccccccccccccccccc",
			found: true,
		},
		{name: "empty", fields: nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sender, found := Message{Fields: test.fields}.Sender()
			if sender != test.want || found != test.found {
				t.Errorf("Sender() = %q, %v; want %q, %v", sender, found, test.want, test.found)
			}
		})
	}
}

func TestFieldAccessors(t *testing.T) {
	message := Message{Fields: map[string]any{
		"name": "Pianist",
		"x":    "12.5",
		"y":    30.0,
		"n":    json.Number("7"),
		"set":  map[string]any{"a": 1.0},
		"ppl":  []any{"p"},
	}}
	if name, ok := message.String("name"); !ok || name != "Pianist" {
		t.Errorf("String(name) = %q, %v", name, ok)
	}
	for key, want := range map[string]float64{"x": 12.5, "y": 30, "n": 7} {
		if got, ok := message.Float(key); !ok || got != want {
			t.Errorf("Float(%s) = %v, %v; want %v", key, got, ok, want)
		}
	}
	if _, ok := message.Float("name"); ok {
		t.Error("Float(name) succeeded on a non-numeric string")
	}
	if _, ok := message.Map("set"); !ok {
		t.Error("Map(set) failed")
	}
	if _, ok := message.Slice("ppl"); !ok {
		t.Error("Slice(ppl) failed")
	}
	if _, ok := message.String("missing"); ok {
		t.Error("String(missing) succeeded")
	}
}

func TestConstructors(t *testing.T) {
	ping := NewPing(time.UnixMilli(1700000000123))
	if ping.Code != CodeTime || ping.Fields["e"] != int64(1700000000123) {
		t.Errorf("NewPing = %+v", ping)
	}
	if reply := NewReply("x", ""); reply.Fields["reply_to"] != nil {
		t.Errorf("NewReply with empty id set reply_to: %+v", reply)
	}
	set := NewUserSet("Bot", "#123456").Fields["set"].(map[string]any)
	if set["name"] != "Bot" || set["color"] != "#123456" {
		t.Errorf("NewUserSet set = %v", set)
	}
	if NewJoin("lobby").Fields["_id"] != "lobby" {
		t.Error("NewJoin did not set _id")
	}
	if NewHello("tok").Fields["token"] != "tok" {
		t.Error("NewHello did not set token")
	}
	if NewChat("hi").Name(ServiceBound) != "chat" {
		t.Error("chat message has the wrong catalog name")
	}
}
