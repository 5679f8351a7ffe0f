// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
)

// codeKey is the reserved key carrying a record's type code.
const codeKey = "m"

// ErrMalformedFrame is returned by Decode when a frame is not a JSON
// array.
var ErrMalformedFrame = errors.New("messaging: frame is not a JSON array")

// Encode serialises a batch into one frame. A field named "m" is
// overwritten by the code.
func Encode(batch []Message) ([]byte, error) {
	records := make([]map[string]any, len(batch))
	for index, message := range batch {
		record := make(map[string]any, len(message.Fields)+1)
		for key, value := range message.Fields {
			record[key] = value
		}
		switch {
		case message.Code != CodeUnknown:
			record[codeKey] = string(message.Code)
		case message.RawCode != "":
			record[codeKey] = message.RawCode
		}
		records[index] = record
	}
	frame, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("messaging: encoding batch: %w", err)
	}
	return frame, nil
}

// Decode parses a frame from the service. It fails only when the frame
// as a whole is not a JSON array; each record decodes to some Message.
// Records that are not objects become CodeUnknown with no fields.
func Decode(frame []byte) ([]Message, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(frame, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	batch := make([]Message, 0, len(records))
	for _, raw := range records {
		batch = append(batch, decodeRecord(raw))
	}
	return batch, nil
}

func decodeRecord(raw json.RawMessage) Message {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Message{Code: CodeUnknown, Fields: map[string]any{}}
	}

	rawCode, ok := fields[codeKey].(string)
	if !ok {
		return Message{Code: CodeUnknown, Fields: fields}
	}
	delete(fields, codeKey)

	if _, known := Lookup(ClientBound, Code(rawCode)); !known {
		return Message{Code: CodeUnknown, Fields: fields, RawCode: rawCode}
	}
	return Message{Code: Code(rawCode), Fields: fields}
}
