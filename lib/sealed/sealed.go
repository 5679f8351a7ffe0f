// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed stores the service auth token encrypted with age, so a
// configuration file can carry the token without carrying it in the
// clear. The ciphertext is base64 text that fits in a YAML scalar; the
// matching X25519 identity lives in a separate file readable only by the
// bot's user.
//
// Decrypted tokens and identities are returned as *secret.Buffer values.
package sealed

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"

	"github.com/pianobot/pianobot/lib/secret"
)

// Seal encrypts token to every recipient (age1... public keys) and
// returns base64 ciphertext.
func Seal(token []byte, recipientKeys []string) (string, error) {
	if len(recipientKeys) == 0 {
		return "", errors.New("sealed: no recipients")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(strings.TrimSpace(key))
		if err != nil {
			return "", fmt.Errorf("sealed: recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipients...)
	if err != nil {
		return "", fmt.Errorf("sealed: starting encryption: %w", err)
	}
	if _, err := writer.Write(token); err != nil {
		return "", fmt.Errorf("sealed: encrypting: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("sealed: finishing encryption: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext.Bytes()), nil
}

// Open decrypts base64 ciphertext produced by Seal with the identity held
// in identity (an AGE-SECRET-KEY-1... string). identity is borrowed, not
// closed.
func Open(ciphertext string, identity *secret.Buffer) (*secret.Buffer, error) {
	parsed, err := age.ParseX25519Identity(identity.String())
	if err != nil {
		return nil, fmt.Errorf("sealed: identity: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return nil, fmt.Errorf("sealed: ciphertext is not base64: %w", err)
	}

	reader, err := age.Decrypt(bytes.NewReader(raw), parsed)
	if err != nil {
		return nil, fmt.Errorf("sealed: decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("sealed: reading plaintext: %w", err)
	}

	token, err := secret.NewFromBytes(bytes.TrimSpace(plaintext))
	secret.Zero(plaintext)
	if err != nil {
		return nil, fmt.Errorf("sealed: %w", err)
	}
	return token, nil
}

// ReadIdentity loads an age identity file as written by age-keygen:
// comment lines starting with '#' are skipped and the first key line is
// returned.
func ReadIdentity(path string) (*secret.Buffer, error) {
	contents, err := secret.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defer contents.Close()

	scanner := bufio.NewScanner(bytes.NewReader(contents.Bytes()))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		key := make([]byte, len(line))
		copy(key, line)
		return secret.NewFromBytes(key)
	}
	return nil, fmt.Errorf("sealed: %s contains no identity", path)
}
