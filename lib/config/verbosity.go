// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Category is a set of debug log categories. Frame-level and storage
// logging is only emitted for enabled categories, even at debug level.
type Category uint8

const (
	CategoryConnection Category = 1 << iota
	CategoryDatabase
	CategoryInbound
	CategoryOutbound
	CategoryFilesystem

	CategoryAll = CategoryConnection | CategoryDatabase | CategoryInbound | CategoryOutbound | CategoryFilesystem
)

var categoryNames = map[string]Category{
	"connection": CategoryConnection,
	"database":   CategoryDatabase,
	"inbound":    CategoryInbound,
	"outbound":   CategoryOutbound,
	"filesystem": CategoryFilesystem,
}

// Has reports whether every category in other is enabled.
func (c Category) Has(other Category) bool { return c&other == other }

// LevelSilent is above every level the bot logs at.
const LevelSilent = slog.LevelError + 4

// Verbosity is a parsed verbosity setting.
type Verbosity struct {
	Level      slog.Level
	Categories Category
}

// ParseVerbosity accepts "none", "error", "warn", "info", "debug", "all",
// or a comma-separated list of categories (connection, database, inbound,
// outbound, filesystem), which implies debug level. Matching is
// case-insensitive; an empty string means "info".
func ParseVerbosity(value string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "info":
		return Verbosity{Level: slog.LevelInfo}, nil
	case "none":
		return Verbosity{Level: LevelSilent}, nil
	case "error":
		return Verbosity{Level: slog.LevelError}, nil
	case "warn", "warning":
		return Verbosity{Level: slog.LevelWarn}, nil
	case "debug":
		return Verbosity{Level: slog.LevelDebug}, nil
	case "all":
		return Verbosity{Level: slog.LevelDebug, Categories: CategoryAll}, nil
	}

	verbosity := Verbosity{Level: slog.LevelDebug}
	for _, name := range strings.Split(value, ",") {
		category, ok := categoryNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return Verbosity{}, fmt.Errorf("verbosity %q: unknown category %q", value, name)
		}
		verbosity.Categories |= category
	}
	return verbosity, nil
}
