// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is pianobot's CBOR configuration. Everything the bot
// writes in binary form (transcript records today) goes through these
// modes, so the same record always encodes to the same bytes.
package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// Core Deterministic Encoding: sorted keys, shortest integers, no
	// indefinite lengths.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	// Decoded protocol fields end up in map[string]any next to values
	// that came from JSON; the CBOR default map[any]any would not mix.
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Encoder writes a sequence of CBOR items.
type Encoder = cbor.Encoder

// Decoder reads a sequence of CBOR items.
type Decoder = cbor.Decoder

// NewEncoder returns a deterministic stream encoder over w.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a stream decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}
