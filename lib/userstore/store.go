// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package userstore persists what the bot knows about participants
// across sessions: their roles, every display name they have used, and
// when they were first and last seen.
//
// A user record is a flat row keyed by the participant id. Values are
// strings: roles are comma-separated role names, usernames is the alias
// history joined with AliasSeparator, and timestamps use TimeLayout in
// UTC.
package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pianobot/pianobot/lib/authorization"
)

// Column names a field of a user record.
type Column string

const (
	ColumnID        Column = "client_id"
	ColumnRoles     Column = "roles"
	ColumnUsernames Column = "usernames"
	ColumnAddedAt   Column = "added_at"
	ColumnLastSeen  Column = "last_seen"
)

// Columns lists every column in schema order.
var Columns = []Column{ColumnID, ColumnRoles, ColumnUsernames, ColumnAddedAt, ColumnLastSeen}

// Valid reports whether c is one of Columns.
func (c Column) Valid() bool {
	for _, column := range Columns {
		if c == column {
			return true
		}
	}
	return false
}

// AliasSeparator joins successive display names in the usernames
// column. The unit separator cannot be typed into a display name.
const AliasSeparator = "\x1f"

// TimeLayout is the format of added_at and last_seen.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in TimeLayout, in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// SplitAliases breaks a usernames column into its names.
func SplitAliases(column string) []string {
	if column == "" {
		return nil
	}
	return strings.Split(column, AliasSeparator)
}

// Fields is a partial or complete user record.
type Fields map[Column]string

// ErrUserNotFound is returned for reads of ids the store has never seen.
var ErrUserNotFound = errors.New("userstore: user not found")

// InvalidColumnError reports a column outside the schema.
type InvalidColumnError struct {
	Column Column
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("userstore: unknown column %q", string(e.Column))
}

// Store is the persistence the roster sync and the authorization gate
// depend on.
type Store interface {
	UserExists(ctx context.Context, id string) (bool, error)

	// AddUser inserts a new record. fields must include ColumnID.
	AddUser(ctx context.Context, fields Fields) error

	// UpdateUser overwrites the given columns of an existing record.
	// ColumnID may not be changed.
	UpdateUser(ctx context.Context, id string, fields Fields) error

	// GetUserColumn reads one column, or ErrUserNotFound.
	GetUserColumn(ctx context.Context, id string, column Column) (string, error)

	// GetUserRoles returns the user's roles. An unknown id holds no
	// roles and is not an error.
	GetUserRoles(ctx context.Context, id string) (authorization.RoleSet, error)
}

// Grant adds roles to an existing user, keeping the roles they already
// hold.
func Grant(ctx context.Context, store Store, id string, roles ...authorization.Role) error {
	current, err := store.GetUserColumn(ctx, id, ColumnRoles)
	if err != nil {
		return err
	}
	set := authorization.ParseRoles(current)
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return store.UpdateUser(ctx, id, Fields{ColumnRoles: set.String()})
}

func validate(fields Fields) error {
	for column := range fields {
		if !column.Valid() {
			return &InvalidColumnError{Column: column}
		}
	}
	return nil
}
