// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package userstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/pianobot/pianobot/lib/authorization"
)

// Memory is a Store held in a map. It backs tests and --ephemeral runs.
type Memory struct {
	mu    sync.Mutex
	users map[string]Fields
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{users: map[string]Fields{}}
}

// UserExists reports whether id has a row.
func (m *Memory) UserExists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	return ok, nil
}

// AddUser inserts a row from fields, which must include the id column.
func (m *Memory) AddUser(ctx context.Context, fields Fields) error {
	if err := validate(fields); err != nil {
		return err
	}
	id := fields[ColumnID]
	if id == "" {
		return fmt.Errorf("userstore: AddUser without %s", ColumnID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[id]; exists {
		return fmt.Errorf("userstore: user %s already exists", id)
	}
	record := Fields{}
	for column, value := range fields {
		record[column] = value
	}
	m.users[id] = record
	return nil
}

// UpdateUser overwrites the given columns of id's row.
func (m *Memory) UpdateUser(ctx context.Context, id string, fields Fields) error {
	if err := validate(fields); err != nil {
		return err
	}
	if _, ok := fields[ColumnID]; ok {
		return fmt.Errorf("userstore: %s cannot be updated", ColumnID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.users[id]
	if !ok {
		return fmt.Errorf("userstore: updating %s: %w", id, ErrUserNotFound)
	}
	for column, value := range fields {
		record[column] = value
	}
	return nil
}

// GetUserColumn returns one column of id's row, or ErrUserNotFound.
func (m *Memory) GetUserColumn(ctx context.Context, id string, column Column) (string, error) {
	if !column.Valid() {
		return "", &InvalidColumnError{Column: column}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.users[id]
	if !ok {
		return "", fmt.Errorf("userstore: reading %s: %w", id, ErrUserNotFound)
	}
	return record[column], nil
}

// GetUserRoles returns id's roles. An unknown id has none.
func (m *Memory) GetUserRoles(ctx context.Context, id string) (authorization.RoleSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.users[id]
	if !ok {
		return authorization.RoleSet{}, nil
	}
	return authorization.ParseRoles(record[ColumnRoles]), nil
}
