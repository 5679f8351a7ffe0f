// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package authorization decides whether a chat participant may run a
// command.
//
// Every command declares the roles it requires. A caller holds a set of
// roles loaded from the user store. The check is a conjunction: the
// caller must hold every required role, and a command that requires no
// roles is open to everyone, including participants the store has never
// seen (they hold the empty set).
//
// # Roles
//
// Roles form a closed catalog:
//
//	user       a normal user, given to every human on first sight
//	admin      a user with administrator privileges
//	bot        a participant wearing the "BOT" tag
//	whitelist  a user that is whitelisted
//	owner      a user with full ownership of the bot
//
// Names are matched case-insensitively. Names outside the catalog map to
// RoleUnknown, which no command requires and which Check never
// satisfies.
package authorization
