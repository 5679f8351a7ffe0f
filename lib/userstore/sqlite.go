// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package userstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/pianobot/pianobot/lib/authorization"
	"github.com/pianobot/pianobot/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	client_id TEXT PRIMARY KEY NOT NULL,
	roles     TEXT NOT NULL DEFAULT '',
	usernames TEXT NOT NULL DEFAULT '',
	added_at  TEXT NOT NULL DEFAULT '',
	last_seen TEXT NOT NULL DEFAULT ''
);
`

// SQLiteConfig configures OpenSQLite.
type SQLiteConfig struct {
	// Path is the database file, usually config.DatabasePath().
	Path string

	// Logger receives one debug line per write when the database
	// debug category is enabled.
	Logger *slog.Logger

	// LogWrites enables those lines.
	LogWrites bool
}

// SQLite is a Store backed by a single-table SQLite database.
type SQLite struct {
	pool      *sqlitepool.Pool
	logger    *slog.Logger
	logWrites bool
}

// OpenSQLite opens (creating if needed) the database at config.Path.
func OpenSQLite(config SQLiteConfig) (*SQLite, error) {
	if config.Path == "" {
		return nil, errors.New("userstore: Path is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	poolSize := 0
	if config.Path == ":memory:" {
		poolSize = 1
	}
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     config.Path,
		PoolSize: poolSize,
		Schema:   schema,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("userstore: %w", err)
	}
	return &SQLite{pool: pool, logger: logger, logWrites: config.LogWrites}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.pool.Close()
}

// UserExists reports whether id has a row.
func (s *SQLite) UserExists(ctx context.Context, id string) (bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, err
	}
	defer s.pool.Put(conn)

	exists := false
	err = sqlitex.Execute(conn, "SELECT 1 FROM users WHERE client_id = ?", &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(*sqlite.Stmt) error {
			exists = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("userstore: checking %s: %w", id, err)
	}
	return exists, nil
}

// AddUser inserts a row from fields, which must include the id column.
func (s *SQLite) AddUser(ctx context.Context, fields Fields) error {
	if err := validate(fields); err != nil {
		return err
	}
	if fields[ColumnID] == "" {
		return fmt.Errorf("userstore: AddUser without %s", ColumnID)
	}

	columns, placeholders, args := sortedColumns(fields)
	query := fmt.Sprintf("INSERT INTO users (%s) VALUES (%s)",
		strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args}); err != nil {
		return fmt.Errorf("userstore: adding %s: %w", fields[ColumnID], err)
	}
	if s.logWrites {
		s.logger.Debug("user added", "client_id", fields[ColumnID], "roles", fields[ColumnRoles])
	}
	return nil
}

// UpdateUser overwrites the given columns of id's row.
func (s *SQLite) UpdateUser(ctx context.Context, id string, fields Fields) error {
	if err := validate(fields); err != nil {
		return err
	}
	if _, ok := fields[ColumnID]; ok {
		return fmt.Errorf("userstore: %s cannot be updated", ColumnID)
	}
	if len(fields) == 0 {
		return nil
	}

	columns, _, args := sortedColumns(fields)
	assignments := make([]string, len(columns))
	for index, column := range columns {
		assignments[index] = column + " = ?"
	}
	query := fmt.Sprintf("UPDATE users SET %s WHERE client_id = ?", strings.Join(assignments, ", "))

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: append(args, id)}); err != nil {
		return fmt.Errorf("userstore: updating %s: %w", id, err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("userstore: updating %s: %w", id, ErrUserNotFound)
	}
	if s.logWrites {
		s.logger.Debug("user updated", "client_id", id, "columns", columns)
	}
	return nil
}

// GetUserColumn returns one column of id's row, or ErrUserNotFound.
func (s *SQLite) GetUserColumn(ctx context.Context, id string, column Column) (string, error) {
	if !column.Valid() {
		return "", &InvalidColumnError{Column: column}
	}
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return "", err
	}
	defer s.pool.Put(conn)

	var value string
	found := false
	// column is one of Columns, checked above.
	query := fmt.Sprintf("SELECT %s FROM users WHERE client_id = ?", string(column))
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnText(0)
			found = true
			return nil
		},
	})
	if err != nil {
		return "", fmt.Errorf("userstore: reading %s of %s: %w", column, id, err)
	}
	if !found {
		return "", fmt.Errorf("userstore: reading %s: %w", id, ErrUserNotFound)
	}
	return value, nil
}

// GetUserRoles returns id's roles. An unknown id has none.
func (s *SQLite) GetUserRoles(ctx context.Context, id string) (authorization.RoleSet, error) {
	roles, err := s.GetUserColumn(ctx, id, ColumnRoles)
	if errors.Is(err, ErrUserNotFound) {
		return authorization.RoleSet{}, nil
	}
	if err != nil {
		return nil, err
	}
	return authorization.ParseRoles(roles), nil
}

// sortedColumns flattens fields into parallel column, placeholder and
// argument lists in a stable order, so identical writes reuse one
// cached statement.
func sortedColumns(fields Fields) (columns, placeholders []string, args []any) {
	for column := range fields {
		columns = append(columns, string(column))
	}
	sort.Strings(columns)
	for _, column := range columns {
		placeholders = append(placeholders, "?")
		args = append(args, fields[Column(column)])
	}
	return columns, placeholders, args
}
