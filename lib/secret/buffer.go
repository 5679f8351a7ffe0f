// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret keeps the service auth token out of the Go heap.
//
// A Buffer is an anonymous mmap region locked into RAM (mlock) and
// excluded from core dumps (MADV_DONTDUMP). The garbage collector never
// copies it, and Close zeroes it before unmapping. The only heap copy of
// the token is the one made by String at the moment the hi message is
// serialised.
package secret

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrEmpty is returned when a secret source contains nothing but
// whitespace.
var ErrEmpty = errors.New("secret: empty secret")

// Buffer holds secret bytes in locked, non-dumpable memory. A Buffer must
// not be copied. Reads after Close panic.
type Buffer struct {
	mu     sync.Mutex
	region []byte
	closed bool
}

// NewFromBytes moves source into a new Buffer and zeroes source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, ErrEmpty
	}

	region, err := unix.Mmap(-1, 0, len(source), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap: %w", err)
	}
	if err := unix.Mlock(region); err != nil {
		unix.Munmap(region)
		return nil, fmt.Errorf("secret: mlock: %w", err)
	}
	if err := unix.Madvise(region, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(region)
		unix.Munmap(region)
		return nil, fmt.Errorf("secret: madvise: %w", err)
	}

	copy(region, source)
	Zero(source)
	return &Buffer{region: region}, nil
}

// NewFromString is NewFromBytes for values that already live in a string,
// such as a token read from the environment. The string itself cannot be
// scrubbed.
func NewFromString(value string) (*Buffer, error) {
	return NewFromBytes([]byte(value))
}

// Bytes returns the secret without copying. The slice is invalid after
// Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.region
}

// String returns a heap copy of the secret for APIs that need a string.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return string(b.region)
}

// Len returns the secret length in bytes, or zero after Close.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.region)
}

// Close zeroes and releases the region. It is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.region)
	unlockErr := unix.Munlock(b.region)
	unmapErr := unix.Munmap(b.region)
	b.region = nil
	if unlockErr != nil {
		return fmt.Errorf("secret: munlock: %w", unlockErr)
	}
	if unmapErr != nil {
		return fmt.Errorf("secret: munmap: %w", unmapErr)
	}
	return nil
}

// Zero overwrites data with zero bytes.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
