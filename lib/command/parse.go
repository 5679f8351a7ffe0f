// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package command

import "strings"

// Invocation is a successfully parsed command line.
type Invocation struct {
	Spec *Spec

	// Positionals holds every positional that received a token.
	Positionals map[string]Value

	// Options holds every option that was given, plus false for each
	// boolean option that was not.
	Options map[string]Value
}

// Arg returns the named positional.
func (i *Invocation) Arg(name string) (Value, bool) {
	value, ok := i.Positionals[name]
	return value, ok
}

// Option returns the named option.
func (i *Invocation) Option(name string) (Value, bool) {
	value, ok := i.Options[name]
	return value, ok
}

// Flag returns a boolean option's value, false when absent.
func (i *Invocation) Flag(name string) bool {
	return i.Options[name].Boolean()
}

// Parse interprets input, which must start with prefix, against catalog.
// An unrecognised or missing command name yields an Invocation of
// Unknown and a nil error. Errors are one of the *...Error types in this
// package.
func Parse(catalog *Catalog, prefix, input string) (*Invocation, error) {
	tokens := strings.Fields(strings.TrimPrefix(input, prefix))
	if len(tokens) == 0 {
		return unknownInvocation(), nil
	}
	spec := catalog.Lookup(tokens[0])
	if spec.IsUnknown() {
		return unknownInvocation(), nil
	}

	invocation := &Invocation{
		Spec:        spec,
		Positionals: map[string]Value{},
		Options:     map[string]Value{},
	}
	given := map[string]bool{}
	optionsFilled := 0
	nextPositional := 0
	rest := tokens[1:]

	for index := 0; index < len(rest); index++ {
		token := rest[index]

		if option := optionToken(spec, token); option != nil && optionsFilled < len(spec.Options) {
			if option.Type == Bool {
				invocation.Options[option.Name] = BoolValue(true)
			} else {
				if index+1 >= len(rest) {
					return nil, &OptionMissingError{Flag: option.Flag, Option: option.Name}
				}
				index++
				value, err := Convert(rest[index], option.Type)
				if err != nil {
					return nil, &OptionValueError{Flag: option.Flag, Value: rest[index], Expected: option.Type}
				}
				invocation.Options[option.Name] = value
			}
			given[option.Name] = true
			optionsFilled++
			continue
		}

		if nextPositional >= len(spec.Positionals) {
			continue
		}
		positional := spec.Positionals[nextPositional]
		raw := token
		if positional.Trailing {
			raw = strings.Join(rest[index:], " ")
		}
		value, err := Convert(raw, positional.Type)
		if err != nil {
			return nil, &ArgumentValueError{Argument: raw, Expected: positional.Type}
		}
		invocation.Positionals[positional.Name] = value
		nextPositional++
		if positional.Trailing {
			break
		}
	}

	for _, positional := range spec.Positionals {
		if _, ok := invocation.Positionals[positional.Name]; positional.Required && !ok {
			return nil, &ArgumentMissingError{Argument: positional.Name}
		}
	}

	for first := range spec.Options {
		for second := first + 1; second < len(spec.Options); second++ {
			a, b := &spec.Options[first], &spec.Options[second]
			if given[a.Name] && given[b.Name] && spec.excludes(a, b) {
				return nil, &OptionConflictError{Option: a.Name, Conflict: b.Name}
			}
		}
	}

	for _, option := range spec.Options {
		if _, ok := invocation.Options[option.Name]; !ok && option.Type == Bool {
			invocation.Options[option.Name] = BoolValue(false)
		}
	}
	return invocation, nil
}

// optionToken returns the option token names, or nil if token is not a
// "-x" form for a declared flag.
func optionToken(spec *Spec, token string) *Option {
	if len(token) != 2 || token[0] != '-' {
		return nil
	}
	return spec.option(token[1])
}

func unknownInvocation() *Invocation {
	return &Invocation{Spec: Unknown, Positionals: map[string]Value{}, Options: map[string]Value{}}
}
