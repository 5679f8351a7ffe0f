// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"sync"

	"github.com/pianobot/pianobot/messaging"
)

// Queue is an unbounded FIFO of message batches. Push never blocks and
// never drops; Pop blocks while the queue is empty.
type Queue struct {
	mu      sync.Mutex
	batches [][]messaging.Message

	// notify holds a token while the queue may be non-empty.
	notify chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Push appends batch.
func (q *Queue) Push(batch []messaging.Message) {
	q.mu.Lock()
	q.batches = append(q.batches, batch)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop removes the oldest batch, waiting for one if necessary. It
// returns ctx.Err() if ctx ends first.
func (q *Queue) Pop(ctx context.Context) ([]messaging.Message, error) {
	for {
		q.mu.Lock()
		if len(q.batches) > 0 {
			batch := q.batches[0]
			q.batches[0] = nil
			q.batches = q.batches[1:]
			more := len(q.batches) > 0
			q.mu.Unlock()
			if more {
				select {
				case q.notify <- struct{}{}:
				default:
				}
			}
			return batch, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

// Len returns the number of queued batches.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.batches)
}
