// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package command

import "fmt"

// ArgumentMissingError reports a required positional with no token.
type ArgumentMissingError struct {
	Argument string
}

func (e *ArgumentMissingError) Error() string {
	return fmt.Sprintf("command: missing argument %q", e.Argument)
}

// Reply returns the chat text shown to the user.
func (e *ArgumentMissingError) Reply() string {
	return fmt.Sprintf("**Error:** Missing argument `%s`", e.Argument)
}

// ArgumentValueError reports a positional token that does not convert.
type ArgumentValueError struct {
	Argument string // the offending token
	Expected Type
}

func (e *ArgumentValueError) Error() string {
	return fmt.Sprintf("command: argument %q is not a %v", e.Argument, e.Expected)
}

// Reply returns the chat text shown to the user.
func (e *ArgumentValueError) Reply() string {
	return fmt.Sprintf("**Error:** Argument `%s` expected type *<%v>* but received type *<str>*", e.Argument, e.Expected)
}

// OptionMissingError reports a value-taking option at the end of input.
type OptionMissingError struct {
	Flag   byte
	Option string
}

func (e *OptionMissingError) Error() string {
	return fmt.Sprintf("command: option -%c (%s) is missing a value", e.Flag, e.Option)
}

// Reply returns the chat text shown to the user.
func (e *OptionMissingError) Reply() string {
	return fmt.Sprintf("**Error:** Option `-%c` is missing a value", e.Flag)
}

// OptionValueError reports an option value that does not convert.
type OptionValueError struct {
	Flag     byte
	Value    string
	Expected Type
}

func (e *OptionValueError) Error() string {
	return fmt.Sprintf("command: option -%c value %q is not a %v", e.Flag, e.Value, e.Expected)
}

// Reply returns the chat text shown to the user.
func (e *OptionValueError) Reply() string {
	return fmt.Sprintf("**Error:** Option `-%c %s` expected type *<%v>* but received type *<str>*", e.Flag, e.Value, e.Expected)
}

// OptionConflictError reports two mutually exclusive options given
// together. Option is the one declared first.
type OptionConflictError struct {
	Option   string
	Conflict string
}

func (e *OptionConflictError) Error() string {
	return fmt.Sprintf("command: option %q cannot be combined with %q", e.Option, e.Conflict)
}

// Reply returns the chat text shown to the user.
func (e *OptionConflictError) Reply() string {
	return fmt.Sprintf("**Error:** Option `%s` cannot be used simultaneously with option `%s`", e.Option, e.Conflict)
}
