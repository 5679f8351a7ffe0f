// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"sort"
	"strings"
)

// Role is a named permission. Two roles are equal when their names are.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleBot       Role = "bot"
	RoleWhitelist Role = "whitelist"
	RoleOwner     Role = "owner"

	// RoleUnknown stands in for any name outside the catalog.
	RoleUnknown Role = "unknown"
)

var roleDescriptions = map[Role]string{
	RoleUser:      "A normal user",
	RoleAdmin:     "A user with administrator privileges",
	RoleBot:       "A user with the 'BOT' tag",
	RoleWhitelist: "A user that is whitelisted",
	RoleOwner:     "A user that has full ownership of the bot",
}

// Roles lists the catalog in a stable order.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleBot, RoleWhitelist, RoleOwner}
}

// ParseRole looks name up case-insensitively, returning RoleUnknown for
// names outside the catalog.
func ParseRole(name string) Role {
	role := Role(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := roleDescriptions[role]; ok {
		return role
	}
	return RoleUnknown
}

// Description is the human-readable meaning of the role.
func (r Role) Description() string {
	if description, ok := roleDescriptions[r]; ok {
		return description
	}
	return "An unrecognised role"
}

// RoleSeparator joins role names in the user store's roles column.
const RoleSeparator = ","

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet returns a set holding roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// ParseRoles parses a roles column such as "user,admin". Blank entries
// are skipped; unrecognised names become RoleUnknown.
func ParseRoles(column string) RoleSet {
	set := RoleSet{}
	for _, name := range strings.Split(column, RoleSeparator) {
		if strings.TrimSpace(name) == "" {
			continue
		}
		set[ParseRole(name)] = struct{}{}
	}
	return set
}

// Has reports membership. A nil set holds nothing.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// Sorted returns the members in name order.
func (s RoleSet) Sorted() []Role {
	roles := make([]Role, 0, len(s))
	for role := range s {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// String renders the set in roles-column form.
func (s RoleSet) String() string {
	names := make([]string, 0, len(s))
	for _, role := range s.Sorted() {
		names = append(names, string(role))
	}
	return strings.Join(names, RoleSeparator)
}
