// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool_test

import (
	"context"
	"path/filepath"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/pianobot/pianobot/lib/sqlitepool"
)

func TestOpenAppliesPragmasAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "instance.db")
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   path,
		Schema: "CREATE TABLE IF NOT EXISTS notes (body TEXT NOT NULL);",
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pool.Close()

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	defer pool.Put(conn)

	var journalMode string
	err = sqlitex.Execute(conn, "PRAGMA journal_mode", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			journalMode = stmt.ColumnText(0)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want wal", journalMode)
	}

	if err := sqlitex.Execute(conn, "INSERT INTO notes (body) VALUES (?)", &sqlitex.ExecOptions{
		Args: []any{"hello"},
	}); err != nil {
		t.Fatalf("insert into schema table: %v", err)
	}
	if pool.Path() != path {
		t.Errorf("Path() = %q, want %q", pool.Path(), path)
	}
}

func TestOpenValidation(t *testing.T) {
	if _, err := sqlitepool.Open(sqlitepool.Config{}); err == nil {
		t.Error("Open with empty Path succeeded")
	}
	if _, err := sqlitepool.Open(sqlitepool.Config{Path: ":memory:", PoolSize: 3}); err == nil {
		t.Error("Open of :memory: with PoolSize 3 succeeded")
	}
}

func TestSchemaIsIdempotentAcrossConnections(t *testing.T) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     filepath.Join(t.TempDir(), "instance.db"),
		PoolSize: 2,
		Schema:   "CREATE TABLE IF NOT EXISTS notes (body TEXT);",
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	first, err := pool.Take(ctx)
	if err != nil {
		t.Fatalf("first Take: %v", err)
	}
	second, err := pool.Take(ctx)
	if err != nil {
		t.Fatalf("second Take: %v", err)
	}
	pool.Put(first)
	pool.Put(second)
}
