// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package transcript records the raw frames exchanged with the room
// service. A transcript is a zstd stream of CBOR records, one per
// frame, in the order they crossed the wire.
package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/pianobot/pianobot/lib/codec"
)

// Direction labels which way a frame travelled.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Record is one transcript entry.
type Record struct {
	Direction    Direction `cbor:"direction"`
	TimeUnixNano int64     `cbor:"time_unix_nano"`
	Frame        []byte    `cbor:"frame"`
}

// Time returns the record's timestamp.
func (r Record) Time() time.Time {
	return time.Unix(0, r.TimeUnixNano)
}

// Recorder accepts frames. *Writer implements it; the bot takes the
// interface so a nil recorder costs nothing.
type Recorder interface {
	Record(direction Direction, at time.Time, frame []byte) error
}

// Writer appends records to a transcript file. Safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	file    *os.File
	zstd    *zstd.Encoder
	encoder *codec.Encoder
	closed  bool
}

// Create truncates path and starts a new transcript.
func Create(path string) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("transcript: creating %s: %w", path, err)
	}
	compressor, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("transcript: zstd writer: %w", err)
	}
	return &Writer{
		file:    file,
		zstd:    compressor,
		encoder: codec.NewEncoder(compressor),
	}, nil
}

// Record appends one frame. The frame is copied by encoding before
// Record returns.
func (w *Writer) Record(direction Direction, at time.Time, frame []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return os.ErrClosed
	}
	record := Record{Direction: direction, TimeUnixNano: at.UnixNano(), Frame: frame}
	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("transcript: encoding record: %w", err)
	}
	return nil
}

// Flush pushes buffered records through to the file.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return os.ErrClosed
	}
	return w.zstd.Flush()
}

// Close finishes the zstd stream and closes the file. Calling Close
// again is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return errors.Join(w.zstd.Close(), w.file.Close())
}

// Reader replays a transcript.
type Reader struct {
	file    *os.File
	zstd    *zstd.Decoder
	decoder *codec.Decoder
}

// Open opens a transcript written by Writer.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: opening %s: %w", path, err)
	}
	decompressor, err := zstd.NewReader(bufio.NewReader(file))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("transcript: zstd reader: %w", err)
	}
	return &Reader{
		file:    file,
		zstd:    decompressor,
		decoder: codec.NewDecoder(decompressor),
	}, nil
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	var record Record
	if err := r.decoder.Decode(&record); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("transcript: decoding record: %w", err)
	}
	return record, nil
}

// Close releases the reader.
func (r *Reader) Close() error {
	r.zstd.Close()
	return r.file.Close()
}
