// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"fmt"
	"strings"
)

// Decision is the outcome of a check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Result is a decision plus the required roles the caller lacked.
type Result struct {
	Decision Decision
	Missing  []Role
}

// Check evaluates required against the caller's roles. Duplicate
// requirements are harmless.
func Check(required []Role, caller RoleSet) Result {
	var missing []Role
	for _, role := range required {
		if !caller.Has(role) {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		return Result{Decision: Deny, Missing: missing}
	}
	return Result{Decision: Allow}
}

// Authorize returns nil when caller holds every role command requires
// and a *DeniedError otherwise.
func Authorize(command string, required []Role, caller RoleSet) error {
	if Check(required, caller).Decision == Allow {
		return nil
	}
	return &DeniedError{Command: command, Required: required}
}

// DeniedError reports a command the caller is not allowed to run. It
// names every required role, not only the missing ones, so the reply
// tells the user the whole requirement.
type DeniedError struct {
	Command  string
	Required []Role
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("authorization: command %q requires roles %s", e.Command, e.roleList(`"`))
}

// Reply is the chat text sent back to the caller.
func (e *DeniedError) Reply() string {
	return fmt.Sprintf("**Error:** You are not authorized to use the command `%s` which requires the following role(s): %s",
		e.Command, e.roleList("`"))
}

func (e *DeniedError) roleList(quote string) string {
	quoted := make([]string, len(e.Required))
	for index, role := range e.Required {
		quoted[index] = quote + string(role) + quote
	}
	return strings.Join(quoted, ", ")
}
