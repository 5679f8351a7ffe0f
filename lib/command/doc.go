// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package command parses prefixed chat commands such as
//
//	!echo -u hello world
//
// against a catalog of command specifications.
//
// # Grammar
//
// After the prefix, the input is split on whitespace. The first token
// names the command, matched case-insensitively; a name that matches
// nothing parses to the Unknown invocation rather than an error. Each
// later token is classified in order:
//
//   - An option token is "-" followed by exactly one declared flag
//     character. It is only recognised while fewer options have been
//     filled than the command declares. A boolean option is set true by
//     its token alone; any other option consumes the next token as its
//     value.
//   - Every other token fills the next positional. A trailing positional
//     takes the current token and everything after it, joined with
//     single spaces, flags included. Tokens left over once every
//     positional is filled are ignored.
//
// Values are converted to the declared Type as they are read. After the
// tokens are consumed, required positionals are checked in declaration
// order, then option exclusivity in declaration order. The first failure
// is returned; each failure type carries a Reply method with the chat
// text shown to the user.
package command
