// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshalIsDeterministic(t *testing.T) {
	first := map[string]any{"zeta": 1, "alpha": "a", "mid": []any{true, 2.5}}
	second := map[string]any{"mid": []any{true, 2.5}, "alpha": "a", "zeta": 1}

	firstBytes, err := Marshal(first)
	if err != nil {
		t.Fatalf("Marshal first: %v", err)
	}
	secondBytes, err := Marshal(second)
	if err != nil {
		t.Fatalf("Marshal second: %v", err)
	}
	if !bytes.Equal(firstBytes, secondBytes) {
		t.Errorf("equal maps encoded differently:\n%x\n%x", firstBytes, secondBytes)
	}
}

func TestUnmarshalAnyUsesStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"outer": map[string]any{"inner": "value"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	outer, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
	inner, ok := outer["outer"].(map[string]any)
	if !ok {
		t.Fatalf("nested type = %T, want map[string]any", outer["outer"])
	}
	if inner["inner"] != "value" {
		t.Errorf("inner = %v, want value", inner["inner"])
	}
}

func TestStreamEncoderDecoder(t *testing.T) {
	var stream bytes.Buffer
	encoder := NewEncoder(&stream)
	for _, value := range []string{"one", "two"} {
		if err := encoder.Encode(value); err != nil {
			t.Fatalf("Encode(%q): %v", value, err)
		}
	}

	decoder := NewDecoder(&stream)
	for _, want := range []string{"one", "two"} {
		var got string
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != want {
			t.Errorf("decoded %q, want %q", got, want)
		}
	}
}
