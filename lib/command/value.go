// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"strconv"
)

// Type is the declared type of a positional or option.
type Type int

const (
	// String keeps the token as typed.
	String Type = iota
	// Int is a base-10 signed integer.
	Int
	// Float is a decimal or exponent-form number.
	Float
	// Bool is any form strconv.ParseBool accepts.
	Bool
)

// String returns the type name used in error replies.
func (t Type) String() string {
	switch t {
	case String:
		return "str"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Value is a converted argument. Exactly one accessor matches its Type;
// the others return zero values.
type Value struct {
	kind    Type
	text    string
	integer int64
	number  float64
	boolean bool
}

// StringValue returns a String value holding s.
func StringValue(s string) Value { return Value{kind: String, text: s} }

// IntValue returns an Int value holding i.
func IntValue(i int64) Value { return Value{kind: Int, integer: i} }

// FloatValue returns a Float value holding f.
func FloatValue(f float64) Value { return Value{kind: Float, number: f} }

// BoolValue returns a Bool value holding b.
func BoolValue(b bool) Value { return Value{kind: Bool, boolean: b} }

// Type reports which accessor holds the value.
func (v Value) Type() Type { return v.kind }

// Text returns the payload of a String value, or "".
func (v Value) Text() string { return v.text }

// Integer returns the payload of an Int value, or 0.
func (v Value) Integer() int64 { return v.integer }

// Number returns the payload of a Float value, or 0.
func (v Value) Number() float64 { return v.number }

// Boolean returns the payload of a Bool value, or false. Absent boolean
// options are present as false, so this is safe to call on any option
// lookup.
func (v Value) Boolean() bool { return v.boolean }

// String formats the value the way a user would have typed it.
func (v Value) String() string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.integer, 10)
	case Float:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.boolean)
	default:
		return v.text
	}
}

// Convert parses raw as t. Integers are base 10; booleans accept the
// forms strconv.ParseBool does.
func Convert(raw string, t Type) (Value, error) {
	switch t {
	case String:
		return StringValue(raw), nil
	case Int:
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return IntValue(parsed), nil
	case Float:
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(parsed), nil
	case Bool:
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(parsed), nil
	default:
		return Value{}, fmt.Errorf("command: no conversion for %v", t)
	}
}
