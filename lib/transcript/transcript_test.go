// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWriteAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.transcript")
	writer, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	frames := []struct {
		direction Direction
		frame     string
	}{
		{Outbound, `[{"m":"hi","token":"x"}]`},
		{Inbound, `[{"m":"hi","t":1}]`},
		{Outbound, `[{"m":"t","e":2}]`},
	}
	for index, entry := range frames {
		at := start.Add(time.Duration(index) * time.Second)
		if err := writer.Record(entry.direction, at, []byte(entry.frame)); err != nil {
			t.Fatalf("Record(%d): %v", index, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := writer.Record(Inbound, start, nil); !errors.Is(err, os.ErrClosed) {
		t.Errorf("Record after Close error = %v, want os.ErrClosed", err)
	}

	reader, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()

	for index, entry := range frames {
		record, err := reader.Next()
		if err != nil {
			t.Fatalf("Next(%d): %v", index, err)
		}
		if record.Direction != entry.direction {
			t.Errorf("record %d direction = %q, want %q", index, record.Direction, entry.direction)
		}
		if string(record.Frame) != entry.frame {
			t.Errorf("record %d frame = %q, want %q", index, record.Frame, entry.frame)
		}
		want := start.Add(time.Duration(index) * time.Second)
		if !record.Time().Equal(want) {
			t.Errorf("record %d time = %v, want %v", index, record.Time(), want)
		}
	}
	if _, err := reader.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next after last record error = %v, want io.EOF", err)
	}
}

func TestConcurrentRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.transcript")
	writer, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const goroutines, perGoroutine = 4, 50
	var wait sync.WaitGroup
	for range goroutines {
		wait.Add(1)
		go func() {
			defer wait.Done()
			for range perGoroutine {
				if err := writer.Record(Inbound, time.Now(), []byte("[]")); err != nil {
					t.Errorf("Record: %v", err)
					return
				}
			}
		}()
	}
	wait.Wait()
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reader, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	count := 0
	for {
		_, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		count++
	}
	if count != goroutines*perGoroutine {
		t.Errorf("replayed %d records, want %d", count, goroutines*perGoroutine)
	}
}
