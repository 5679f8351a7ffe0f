// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pianobot/pianobot/lib/authorization"
)

// Positional declares an argument filled by position.
type Positional struct {
	Name     string
	Type     Type
	Required bool

	// Trailing swallows the rest of the input. Only the last
	// positional may be trailing.
	Trailing bool
}

// Option declares a flag such as -u. Boolean options take no value.
type Option struct {
	Name string
	Type Type
	Flag byte

	// Exclusive names options that may not be given together with
	// this one. Declaring the relation on either side is enough.
	Exclusive []string
}

// Spec describes one command.
type Spec struct {
	Name        string
	Description string

	// Roles must all be held by the caller. Empty means anyone.
	Roles []authorization.Role

	Positionals []Positional
	Options     []Option
}

// Unknown is the pseudo-command every unrecognised name parses to. It
// takes no arguments and requires no roles.
var Unknown = &Spec{Name: "unknown", Description: "An unrecognised command"}

// IsUnknown reports whether s is the Unknown pseudo-command.
func (s *Spec) IsUnknown() bool { return s == Unknown }

func (s *Spec) option(flag byte) *Option {
	for index := range s.Options {
		if s.Options[index].Flag == flag {
			return &s.Options[index]
		}
	}
	return nil
}

// Usage renders the one-line synopsis shown by help, for example
// "!echo [-u] [-l] <message>". Required positionals are in angle
// brackets, optional ones and all options in square brackets.
func (s *Spec) Usage(prefix string) string {
	var usage strings.Builder
	usage.WriteString(prefix)
	usage.WriteString(s.Name)
	for _, option := range s.Options {
		if option.Type == Bool {
			fmt.Fprintf(&usage, " [-%c]", option.Flag)
		} else {
			fmt.Fprintf(&usage, " [-%c %s]", option.Flag, option.Name)
		}
	}
	for _, positional := range s.Positionals {
		if positional.Required {
			fmt.Fprintf(&usage, " <%s>", positional.Name)
		} else {
			fmt.Fprintf(&usage, " [%s]", positional.Name)
		}
	}
	return usage.String()
}

func (s *Spec) validate() error {
	var errs []error
	if s.Name == "" || strings.ContainsAny(s.Name, " \t\r\n") {
		errs = append(errs, fmt.Errorf("command name %q must be a single word", s.Name))
	}

	names := map[string]bool{}
	claim := func(kind, name string) {
		if name == "" {
			errs = append(errs, fmt.Errorf("%s: %s with no name", s.Name, kind))
			return
		}
		if names[name] {
			errs = append(errs, fmt.Errorf("%s: name %q declared twice", s.Name, name))
		}
		names[name] = true
	}

	for index, positional := range s.Positionals {
		claim("positional", positional.Name)
		if positional.Trailing && index != len(s.Positionals)-1 {
			errs = append(errs, fmt.Errorf("%s: trailing positional %q is not last", s.Name, positional.Name))
		}
	}

	flags := map[byte]bool{}
	for _, option := range s.Options {
		claim("option", option.Name)
		if option.Flag == 0 || option.Flag == ' ' || option.Flag == '-' {
			errs = append(errs, fmt.Errorf("%s: option %q has an invalid flag", s.Name, option.Name))
		}
		if flags[option.Flag] {
			errs = append(errs, fmt.Errorf("%s: flag -%c declared twice", s.Name, option.Flag))
		}
		flags[option.Flag] = true
	}
	for _, option := range s.Options {
		for _, peer := range option.Exclusive {
			if peer == option.Name || !s.hasOption(peer) {
				errs = append(errs, fmt.Errorf("%s: option %q excludes unknown option %q", s.Name, option.Name, peer))
			}
		}
	}
	return errors.Join(errs...)
}

func (s *Spec) hasOption(name string) bool {
	for _, option := range s.Options {
		if option.Name == name {
			return true
		}
	}
	return false
}

// excludes reports whether options a and b were declared exclusive, on
// either side.
func (s *Spec) excludes(a, b *Option) bool {
	for _, peer := range a.Exclusive {
		if peer == b.Name {
			return true
		}
	}
	for _, peer := range b.Exclusive {
		if peer == a.Name {
			return true
		}
	}
	return false
}

// Catalog is an immutable, validated set of commands.
type Catalog struct {
	ordered []*Spec
	byName  map[string]*Spec
}

// NewCatalog validates every spec and indexes them by lowercased name.
func NewCatalog(specs ...Spec) (*Catalog, error) {
	catalog := &Catalog{byName: make(map[string]*Spec, len(specs))}
	var errs []error
	for index := range specs {
		spec := specs[index]
		if err := spec.validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		key := strings.ToLower(spec.Name)
		if _, exists := catalog.byName[key]; exists || key == Unknown.Name {
			errs = append(errs, fmt.Errorf("command %q is reserved or declared twice", spec.Name))
			continue
		}
		catalog.ordered = append(catalog.ordered, &spec)
		catalog.byName[key] = &spec
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("command: invalid catalog: %w", err)
	}
	return catalog, nil
}

// Lookup finds a command by name, case-insensitively, returning Unknown
// when nothing matches.
func (c *Catalog) Lookup(name string) *Spec {
	if spec, ok := c.byName[strings.ToLower(name)]; ok {
		return spec
	}
	return Unknown
}

// Commands lists the catalog in declaration order.
func (c *Catalog) Commands() []*Spec {
	return append([]*Spec(nil), c.ordered...)
}
