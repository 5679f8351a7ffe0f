// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens the per-instance SQLite database the bot keeps
// its user records in.
//
// It is a thin layer over zombiezen.com/go/sqlite's sqlitex.Pool: every
// connection gets the same pragmas (WAL, NORMAL sync, a busy timeout) and
// then the caller's schema script. Callers Take a connection, run SQL
// with sqlitex, and Put it back.
package sqlitepool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// defaultPoolSize covers the dispatch goroutine plus an occasional
// operator tool reading the same file.
const defaultPoolSize = 2

// Config describes the database to open.
type Config struct {
	// Path is the database file. Its parent directory is created if
	// missing. ":memory:" is accepted only with PoolSize 1, since each
	// in-memory connection is a separate database.
	Path string

	// PoolSize defaults to 2 when zero.
	PoolSize int

	// Schema is executed as a script on every new connection, after
	// the pragmas. It must be idempotent (CREATE ... IF NOT EXISTS).
	Schema string

	Logger *slog.Logger
}

// Pool is a fixed set of configured SQLite connections. The Pool is safe
// for concurrent use; a borrowed connection is not.
type Pool struct {
	inner  *sqlitex.Pool
	path   string
	logger *slog.Logger
}

// Open validates config and opens the pool. Connections are prepared
// lazily on first Take.
func Open(config Config) (*Pool, error) {
	if config.Path == "" {
		return nil, errors.New("sqlitepool: Path is required")
	}
	poolSize := config.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	if config.Path == ":memory:" && poolSize != 1 {
		return nil, errors.New("sqlitepool: an in-memory database needs PoolSize 1")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if config.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0o750); err != nil {
			return nil, fmt.Errorf("sqlitepool: creating directory for %s: %w", config.Path, err)
		}
	}

	inner, err := sqlitex.NewPool(config.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepare(conn, config.Schema)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: opening %s: %w", config.Path, err)
	}

	logger.Debug("database opened", "path", config.Path, "pool_size", poolSize)
	return &Pool{inner: inner, path: config.Path, logger: logger}, nil
}

// Take borrows a connection, blocking until one is free or ctx ends.
// Every successful Take must be paired with Put.
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: take: %w", err)
	}
	return conn, nil
}

// Put returns a borrowed connection. Put(nil) is a no-op.
func (p *Pool) Put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

// Path returns the database file the pool was opened on.
func (p *Pool) Path() string { return p.path }

// Close waits for borrowed connections to come back and closes them all.
func (p *Pool) Close() error {
	if err := p.inner.Close(); err != nil {
		return fmt.Errorf("sqlitepool: closing %s: %w", p.path, err)
	}
	p.logger.Debug("database closed", "path", p.path)
	return nil
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA temp_store=MEMORY",
}

func prepare(conn *sqlite.Conn, schema string) error {
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlitepool: %s: %w", pragma, err)
		}
	}
	if schema == "" {
		return nil
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("sqlitepool: applying schema: %w", err)
	}
	return nil
}
