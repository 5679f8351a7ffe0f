// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/pianobot/pianobot/lib/config"
	"github.com/pianobot/pianobot/lib/sealed"
	"github.com/pianobot/pianobot/lib/secret"
)

// resolveToken loads the token from the first configured source:
// inline, token file, or sealed token.
func resolveToken(cfg *config.Config) (*secret.Buffer, error) {
	identity := cfg.Identity
	switch {
	case identity.Token != "":
		return secret.NewFromString(identity.Token)
	case identity.TokenFile != "":
		return secret.ReadFile(identity.TokenFile)
	case identity.SealedToken != "":
		key, err := sealed.ReadIdentity(identity.IdentityFile)
		if err != nil {
			return nil, err
		}
		defer key.Close()
		return sealed.Open(identity.SealedToken, key)
	}
	return nil, errors.New("no token configured")
}

// runSeal implements "pianobot seal --recipient age1... < token", which
// prints the sealed_token value for a config file.
func runSeal(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var recipients []string
	flagSet := pflag.NewFlagSet("pianobot seal", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringArrayVarP(&recipients, "recipient", "r", nil, "age X25519 recipient (repeatable)")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(recipients) == 0 {
		return errors.New("seal: at least one --recipient is required")
	}

	data, err := io.ReadAll(io.LimitReader(stdin, 64<<10))
	if err != nil {
		return fmt.Errorf("seal: reading token: %w", err)
	}
	defer secret.Zero(data)
	token := bytes.TrimSpace(data)
	if len(token) == 0 {
		return fmt.Errorf("seal: %w", secret.ErrEmpty)
	}

	ciphertext, err := sealed.Seal(token, recipients)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, ciphertext)
	return err
}
