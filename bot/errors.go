// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"errors"
	"fmt"
)

// ErrTermination matches every *TerminationError.
var ErrTermination = errors.New("bot: terminated")

// TerminationError stops the bot for good. A loop, handler or tick
// function returns one to end the reconnect loop; Run also converts
// cancellation of its context into one with a nil Cause.
type TerminationError struct {
	Cause error
}

func (e *TerminationError) Error() string {
	if e.Cause == nil {
		return ErrTermination.Error()
	}
	return fmt.Sprintf("%v: %v", ErrTermination, e.Cause)
}

func (e *TerminationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrTermination}
	}
	return []error{ErrTermination, e.Cause}
}

// Reply is posted to the channel before the bot leaves when a command
// terminates it.
func (e *TerminationError) Reply() string {
	if e.Cause == nil {
		return "Terminating bot."
	}
	return fmt.Sprintf("Terminating bot. Cause: %v", e.Cause)
}

// Terminate wraps cause in a *TerminationError.
func Terminate(cause error) error {
	return &TerminationError{Cause: cause}
}

// AuthError reports that the bot cannot authenticate. Retrying would
// not help, so Run treats it as fatal.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "bot: authentication failed: " + e.Reason
}

// ExitCode distinguishes a configuration problem from a crash.
func (e *AuthError) ExitCode() int { return 2 }

// replier is implemented by errors that carry chat text for the user
// who caused them.
type replier interface {
	Reply() string
}

// ReplyError is a handler failure with a fixed chat reply.
type ReplyError struct {
	Text string
	Err  error
}

func (e *ReplyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bot: %s: %v", e.Text, e.Err)
	}
	return "bot: " + e.Text
}

// Unwrap returns the underlying failure, if any.
func (e *ReplyError) Unwrap() error { return e.Err }

// Reply returns the chat text for the user.
func (e *ReplyError) Reply() string { return e.Text }
