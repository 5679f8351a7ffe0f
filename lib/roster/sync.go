// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/pianobot/pianobot/lib/authorization"
	"github.com/pianobot/pianobot/lib/clock"
	"github.com/pianobot/pianobot/lib/userstore"
)

// Syncer records roster sightings in the user store.
type Syncer struct {
	store  userstore.Store
	clock  clock.Clock
	logger *slog.Logger
}

// NewSyncer returns a Syncer writing to store and stamping records with
// clock.
func NewSyncer(store userstore.Store, clock clock.Clock, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{store: store, clock: clock, logger: logger}
}

// Sync upserts participant:
//
//   - An id the store has never seen is added with the bot role if the
//     participant wears the BOT tag and the user role otherwise, its
//     current name as the whole alias history, and added_at and
//     last_seen set to now.
//   - A known id gets its current name appended to the alias history
//     if it is not already there, and last_seen refreshed.
//
// Replaying the same sighting changes nothing but last_seen.
func (s *Syncer) Sync(ctx context.Context, participant Participant) error {
	now := userstore.FormatTime(s.clock.Now())

	exists, err := s.store.UserExists(ctx, participant.ID)
	if err != nil {
		return fmt.Errorf("roster: syncing %s: %w", participant.ID, err)
	}

	if !exists {
		role := authorization.RoleUser
		if participant.IsBot() {
			role = authorization.RoleBot
		}
		err := s.store.AddUser(ctx, userstore.Fields{
			userstore.ColumnID:        participant.ID,
			userstore.ColumnRoles:     string(role),
			userstore.ColumnUsernames: sanitizeAlias(participant.Name),
			userstore.ColumnAddedAt:   now,
			userstore.ColumnLastSeen:  now,
		})
		if err != nil {
			return fmt.Errorf("roster: adding %s: %w", participant.ID, err)
		}
		s.logger.Info("new participant recorded", "participant", participant.ID, "name", participant.Name, "role", role)
		return nil
	}

	update := userstore.Fields{userstore.ColumnLastSeen: now}
	aliases, err := s.store.GetUserColumn(ctx, participant.ID, userstore.ColumnUsernames)
	if err != nil {
		return fmt.Errorf("roster: reading aliases of %s: %w", participant.ID, err)
	}
	name := sanitizeAlias(participant.Name)
	if history := userstore.SplitAliases(aliases); !slices.Contains(history, name) {
		update[userstore.ColumnUsernames] = strings.Join(append(history, name), userstore.AliasSeparator)
		s.logger.Info("participant renamed", "participant", participant.ID, "name", participant.Name)
	}
	if err := s.store.UpdateUser(ctx, participant.ID, update); err != nil {
		return fmt.Errorf("roster: updating %s: %w", participant.ID, err)
	}
	return nil
}

// sanitizeAlias keeps the separator out of stored names.
func sanitizeAlias(name string) string {
	return strings.ReplaceAll(name, userstore.AliasSeparator, " ")
}
