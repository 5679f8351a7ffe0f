// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package userstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pianobot/pianobot/lib/authorization"
)

const alice = "aaaaaaaaaaaaaaaaaaaaaaaa"

// stores returns one of each implementation, each empty.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	database, err := OpenSQLite(SQLiteConfig{Path: filepath.Join(t.TempDir(), "users.db")})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return map[string]Store{"memory": NewMemory(), "sqlite": database}
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			exists, err := store.UserExists(ctx, alice)
			if err != nil || exists {
				t.Fatalf("UserExists before add = %v, %v", exists, err)
			}

			err = store.AddUser(ctx, Fields{
				ColumnID:        alice,
				ColumnRoles:     "user",
				ColumnUsernames: "Alice",
				ColumnAddedAt:   "2026-01-01 00:00:00",
				ColumnLastSeen:  "2026-01-01 00:00:00",
			})
			if err != nil {
				t.Fatalf("AddUser: %v", err)
			}
			if exists, _ := store.UserExists(ctx, alice); !exists {
				t.Fatal("UserExists after add = false")
			}
			if err := store.AddUser(ctx, Fields{ColumnID: alice}); err == nil {
				t.Error("second AddUser of the same id succeeded")
			}

			err = store.UpdateUser(ctx, alice, Fields{
				ColumnUsernames: "Alice" + AliasSeparator + "Al",
				ColumnLastSeen:  "2026-01-02 10:00:00",
			})
			if err != nil {
				t.Fatalf("UpdateUser: %v", err)
			}
			usernames, err := store.GetUserColumn(ctx, alice, ColumnUsernames)
			if err != nil {
				t.Fatalf("GetUserColumn: %v", err)
			}
			if aliases := SplitAliases(usernames); len(aliases) != 2 || aliases[1] != "Al" {
				t.Errorf("aliases = %q", aliases)
			}
			if added, _ := store.GetUserColumn(ctx, alice, ColumnAddedAt); added != "2026-01-01 00:00:00" {
				t.Errorf("added_at changed to %q", added)
			}

			roles, err := store.GetUserRoles(ctx, alice)
			if err != nil {
				t.Fatalf("GetUserRoles: %v", err)
			}
			if !roles.Has(authorization.RoleUser) || len(roles) != 1 {
				t.Errorf("roles = %v, want {user}", roles)
			}
		})
	}
}

func TestStoreUnknownUser(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			roles, err := store.GetUserRoles(ctx, "ffffffffffffffffffffffff")
			if err != nil {
				t.Fatalf("GetUserRoles: %v", err)
			}
			if len(roles) != 0 {
				t.Errorf("unseen id has roles %v", roles)
			}
			if _, err := store.GetUserColumn(ctx, "nobody", ColumnRoles); !errors.Is(err, ErrUserNotFound) {
				t.Errorf("GetUserColumn error = %v, want ErrUserNotFound", err)
			}
			if err := store.UpdateUser(ctx, "nobody", Fields{ColumnRoles: "user"}); !errors.Is(err, ErrUserNotFound) {
				t.Errorf("UpdateUser error = %v, want ErrUserNotFound", err)
			}
		})
	}
}

func TestStoreRejectsBadColumns(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var invalid *InvalidColumnError
			if _, err := store.GetUserColumn(ctx, alice, "roles; DROP TABLE users"); !errors.As(err, &invalid) {
				t.Errorf("GetUserColumn with injected column = %v", err)
			}
			if err := store.AddUser(ctx, Fields{ColumnID: alice, "nickname": "x"}); !errors.As(err, &invalid) {
				t.Errorf("AddUser with unknown column = %v", err)
			}
			if err := store.AddUser(ctx, Fields{ColumnRoles: "user"}); err == nil {
				t.Error("AddUser without an id succeeded")
			}
			if err := store.AddUser(ctx, Fields{ColumnID: alice}); err != nil {
				t.Fatalf("AddUser: %v", err)
			}
			if err := store.UpdateUser(ctx, alice, Fields{ColumnID: "other"}); err == nil {
				t.Error("UpdateUser changed the id")
			}
		})
	}
}

func TestGrant(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.AddUser(ctx, Fields{ColumnID: alice, ColumnRoles: "user"}); err != nil {
				t.Fatalf("AddUser: %v", err)
			}
			if err := Grant(ctx, store, alice, authorization.RoleOwner, authorization.RoleAdmin); err != nil {
				t.Fatalf("Grant: %v", err)
			}
			roles, _ := store.GetUserRoles(ctx, alice)
			if roles.String() != "admin,owner,user" {
				t.Errorf("roles = %q, want admin,owner,user", roles.String())
			}
			if err := Grant(ctx, store, "nobody", authorization.RoleOwner); !errors.Is(err, ErrUserNotFound) {
				t.Errorf("Grant to unknown user = %v", err)
			}
		})
	}
}

func TestSQLitePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.db")

	first, err := OpenSQLite(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := first.AddUser(ctx, Fields{ColumnID: alice, ColumnRoles: "user,bot"}); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := OpenSQLite(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	roles, err := second.GetUserRoles(ctx, alice)
	if err != nil {
		t.Fatalf("GetUserRoles: %v", err)
	}
	if !roles.Has(authorization.RoleBot) {
		t.Errorf("roles after reopen = %v", roles)
	}
}

func TestFormatTime(t *testing.T) {
	local := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2026, 3, 4, 7, 8, 9, 0, local)
	if got := FormatTime(at); got != "2026-03-04 05:08:09" {
		t.Errorf("FormatTime = %q, want UTC 2026-03-04 05:08:09", got)
	}
}
