// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pianobot/pianobot/lib/testutil"
	"github.com/pianobot/pianobot/messaging"
)

const waitTimeout = 5 * time.Second

// fakeTransport is the service side of one connection. Tests push
// frames into incoming and read what the bot wrote from written.
type fakeTransport struct {
	incoming chan []byte
	written  chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		incoming: make(chan []byte, 64),
		written:  make(chan []byte, 1024),
		closed:   make(chan struct{}),
	}
}

func (f *fakeTransport) ReadFrame(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-f.incoming:
		return frame, nil
	case <-f.closed:
		return nil, fmt.Errorf("%w: fake connection closed", messaging.ErrClosed)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) WriteFrame(ctx context.Context, frame []byte) error {
	select {
	case <-f.closed:
		return fmt.Errorf("%w: fake connection closed", messaging.ErrClosed)
	default:
	}
	f.written <- append([]byte(nil), frame...)
	return nil
}

func (f *fakeTransport) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

// serve sends records to the bot as one frame.
func (f *fakeTransport) serve(t *testing.T, records ...map[string]any) {
	t.Helper()
	frame, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshalling frame: %v", err)
	}
	f.incoming <- frame
}

// next returns the records of the next frame the bot wrote.
func (f *fakeTransport) next(t *testing.T) []map[string]any {
	t.Helper()
	frame := testutil.RequireReceive(t, f.written, waitTimeout, "waiting for an outbound frame")
	var records []map[string]any
	if err := json.Unmarshal(frame, &records); err != nil {
		t.Fatalf("outbound frame %s is not a JSON array of objects: %v", frame, err)
	}
	return records
}

// expect skips outbound frames until one holds a record with code m
// that satisfies match, and returns that record.
func (f *fakeTransport) expect(t *testing.T, m string, match func(map[string]any) bool) map[string]any {
	t.Helper()
	for {
		for _, record := range f.next(t) {
			if record["m"] == m && (match == nil || match(record)) {
				return record
			}
		}
	}
}

// fakeDialer hands out queued transports and refuses when none is left.
type fakeDialer struct {
	mu         sync.Mutex
	transports []*fakeTransport
	dials      int
	addresses  []string
}

var errRefused = errors.New("connection refused")

func (d *fakeDialer) add(transport *fakeTransport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.transports = append(d.transports, transport)
}

func (d *fakeDialer) Dial(ctx context.Context, address string) (messaging.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	d.addresses = append(d.addresses, address)
	if len(d.transports) == 0 {
		return nil, errRefused
	}
	transport := d.transports[0]
	d.transports = d.transports[1:]
	return transport, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// chatRecord builds an inbound chat message from sender.
func chatRecord(id, sender, text string) map[string]any {
	return map[string]any{
		"m":  "a",
		"id": id,
		"t":  1767225600000,
		"a":  text,
		"p":  map[string]any{"_id": sender, "id": sender, "name": "tester", "color": "#123456"},
	}
}

func messageText(record map[string]any) string {
	text, _ := record["message"].(string)
	return text
}

// fakeLibrary is an in-memory Library.
type fakeLibrary struct {
	files []string
	saved map[string][]byte
}

func (l *fakeLibrary) SearchFilenames(query string) ([]string, error) {
	if query == "" {
		return l.files, nil
	}
	var matches []string
	for _, name := range l.files {
		if strings.Contains(strings.ToLower(name), strings.ToLower(query)) {
			matches = append(matches, name)
		}
	}
	return matches, nil
}

func (l *fakeLibrary) Save(name string, data []byte) (string, error) {
	if l.saved == nil {
		l.saved = map[string][]byte{}
	}
	if name == "" {
		name = "anonymous.mid"
	}
	l.saved[name] = data
	return name, nil
}

// fakeFetcher returns fixed bodies by URL.
type fakeFetcher struct {
	bodies map[string][]byte
	err    error
}

func (f *fakeFetcher) Fetch(ctx context.Context, address string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.bodies[address]
	if !ok {
		return nil, fmt.Errorf("no body for %s", address)
	}
	return body, nil
}
