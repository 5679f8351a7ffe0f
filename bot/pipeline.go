// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"errors"
	"time"

	"github.com/pianobot/pianobot/lib/transcript"
	"github.com/pianobot/pianobot/messaging"
)

// loop is one of the session goroutines.
type loop struct {
	name string
	run  func(ctx context.Context, s *session) error
}

// loopResult is what a loop returned, named for the exit log.
type loopResult struct {
	name string
	err  error
}

// serve runs the five loops over s until the first of them returns,
// then cancels the rest, closes the transport so a blocked read
// returns, and waits for all of them. The first loop's error is the
// session's result.
func (b *Bot) serve(ctx context.Context, s *session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loops := []loop{
		{"receive", b.receiveLoop},
		{"send", b.sendLoop},
		{"heartbeat", b.heartbeatLoop},
		{"dispatch", b.dispatchLoop},
		{"tick", b.tickLoop},
	}
	results := make(chan loopResult, len(loops))
	for _, current := range loops {
		go func() {
			results <- loopResult{name: current.name, err: current.run(ctx, s)}
		}()
	}

	first := <-results
	b.logger.Debug("session loop exited", "loop", first.name, "error", first.err)
	cancel()
	b.disconnect()
	for range len(loops) - 1 {
		<-results
	}
	return first.err
}

// receiveLoop reads frames, decodes them and queues each batch for
// dispatch. A frame that is not a JSON array is logged and skipped.
func (b *Bot) receiveLoop(ctx context.Context, s *session) error {
	for {
		frame, err := s.transport.ReadFrame(ctx)
		if err != nil {
			return err
		}
		b.metrics.FramesReceived.Inc()

		batch, err := messaging.Decode(frame)
		b.record(transcript.Inbound, frame, batch)
		if err != nil {
			b.logger.Warn("discarding malformed frame", "error", err, "bytes", len(frame))
			continue
		}
		for _, message := range batch {
			b.metrics.MessagesReceived.WithLabelValues(message.Name(messaging.ClientBound)).Inc()
		}
		s.inbound.Push(batch)
	}
}

// sendLoop writes outbound batches in order, one frame each.
func (b *Bot) sendLoop(ctx context.Context, s *session) error {
	for {
		batch, err := s.outbound.Pop(ctx)
		if err != nil {
			return err
		}
		if err := b.send(ctx, s.transport, batch); err != nil {
			if errors.Is(err, messaging.ErrClosed) || ctx.Err() != nil {
				return err
			}
			b.logger.Error("dropping unencodable batch", "error", err, "messages", len(batch))
		}
	}
}

// heartbeatLoop queues a ping immediately and then once per heartbeat
// interval.
func (b *Bot) heartbeatLoop(ctx context.Context, s *session) error {
	s.outbound.Push([]messaging.Message{messaging.NewPing(b.clock.Now())})

	ticker := b.clock.NewTicker(b.config.Runtime.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.outbound.Push([]messaging.Message{messaging.NewPing(b.clock.Now())})
		}
	}
}

// dispatchLoop hands each inbound message to its handler. It ends only
// when the session ends or a handler terminates the bot.
func (b *Bot) dispatchLoop(ctx context.Context, s *session) error {
	for {
		batch, err := s.inbound.Pop(ctx)
		if err != nil {
			return err
		}
		for _, message := range batch {
			if err := b.dispatch(ctx, s, message); err != nil {
				return err
			}
		}
	}
}

// tickLoop runs the tick functions at the configured rate. Each
// iteration sleeps for whatever is left of the period; the recorded
// delta is the period or the iteration's own duration, whichever is
// longer.
func (b *Bot) tickLoop(ctx context.Context, s *session) error {
	period := b.config.TickPeriod()
	for {
		start := b.clock.Now()
		delta := b.Delta()
		for _, tick := range b.tickFuncs {
			if err := tick(ctx, delta); err != nil {
				if errors.Is(err, ErrTermination) {
					return err
				}
				b.logger.Warn("tick function failed", "error", err)
			}
		}
		elapsed := b.clock.Now().Sub(start)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.clock.After(max(0, period-elapsed)):
		}

		b.mu.Lock()
		b.delta = max(period, elapsed)
		b.mu.Unlock()
	}
}

// sinceMillis converts a millisecond timestamp echoed by the service
// into the time elapsed since then.
func sinceMillis(now time.Time, millis float64) time.Duration {
	return now.Sub(time.UnixMilli(int64(millis)))
}
