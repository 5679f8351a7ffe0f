// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"testing"
)

func TestReadBounded(t *testing.T) {
	data, err := ReadBounded(strings.NewReader("12345"), 5)
	if err != nil {
		t.Fatalf("ReadBounded at limit: %v", err)
	}
	if string(data) != "12345" {
		t.Errorf("data = %q, want 12345", data)
	}

	if _, err := ReadBounded(strings.NewReader("123456"), 5); !errors.Is(err, ErrTooLarge) {
		t.Errorf("ReadBounded over limit error = %v, want ErrTooLarge", err)
	}
}

func TestIsExpectedCloseError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"wrapped eof", fmt.Errorf("read: %w", io.EOF), true},
		{"closed", net.ErrClosed, true},
		{"reset", syscall.ECONNRESET, true},
		{"pipe", fmt.Errorf("write: %w", syscall.EPIPE), true},
		{"refused", syscall.ECONNREFUSED, false},
		{"other", errors.New("boom"), false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsExpectedCloseError(test.err); got != test.want {
				t.Errorf("IsExpectedCloseError(%v) = %v, want %v", test.err, got, test.want)
			}
		})
	}
}
