// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pianobot/pianobot/lib/clock"
	"github.com/pianobot/pianobot/lib/command"
	"github.com/pianobot/pianobot/lib/config"
	"github.com/pianobot/pianobot/lib/midi"
	"github.com/pianobot/pianobot/lib/roster"
	"github.com/pianobot/pianobot/lib/secret"
	"github.com/pianobot/pianobot/lib/transcript"
	"github.com/pianobot/pianobot/lib/userstore"
	"github.com/pianobot/pianobot/messaging"
)

// TickFunc runs once per tick with the previous tick's delta. Returning
// a *TerminationError stops the bot; other errors are logged.
type TickFunc func(ctx context.Context, delta time.Duration) error

// Library is the MIDI file collection behind the gaming command.
// *midi.Library implements it.
type Library interface {
	SearchFilenames(query string) ([]string, error)
	Save(name string, data []byte) (string, error)
}

// Options are the bot's collaborators. Dialer, Store and Token are
// required.
type Options struct {
	Dialer messaging.Dialer
	Store  userstore.Store
	Token  *secret.Buffer

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Commands defaults to DefaultCommands().
	Commands *command.Catalog

	// Library and Fetcher back the gaming command. Without them it
	// replies that no MIDI library is available.
	Library Library
	Fetcher midi.Fetcher

	// Recorder, when set, receives every frame in both directions.
	Recorder transcript.Recorder

	// Registerer receives the bot's metrics. Nil keeps them private.
	Registerer prometheus.Registerer

	TickFuncs []TickFunc
}

// Bot is a single bot instance. Create one with New and start it with
// Run.
type Bot struct {
	config    *config.Config
	verbosity config.Verbosity

	dialer    messaging.Dialer
	store     userstore.Store
	token     *secret.Buffer
	clock     clock.Clock
	logger    *slog.Logger
	commands  *command.Catalog
	library   Library
	fetcher   midi.Fetcher
	recorder  transcript.Recorder
	metrics   *Metrics
	tickFuncs []TickFunc

	syncer *roster.Syncer

	// Touched only by the dispatch goroutine, or by connect while no
	// session is running.
	directory *roster.Directory
	selfID    string

	mu        sync.Mutex
	state     State
	attempts  int
	delta     time.Duration
	transport messaging.Transport
}

// New validates cfg and assembles a Bot. cfg is not copied and must not
// change afterwards.
func New(cfg *config.Config, options Options) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("bot: nil config")
	}
	if options.Dialer == nil {
		return nil, errors.New("bot: Options.Dialer is required")
	}
	if options.Store == nil {
		return nil, errors.New("bot: Options.Store is required")
	}
	verbosity, err := config.ParseVerbosity(cfg.Verbosity)
	if err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}
	if cfg.Runtime.TickRate < 1 || cfg.Runtime.HeartbeatInterval <= 0 {
		return nil, errors.New("bot: runtime.tick_rate and runtime.heartbeat_interval must be positive")
	}

	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Commands == nil {
		options.Commands = DefaultCommands()
	}

	return &Bot{
		config:    cfg,
		verbosity: verbosity,
		dialer:    options.Dialer,
		store:     options.Store,
		token:     options.Token,
		clock:     options.Clock,
		logger:    options.Logger,
		commands:  options.Commands,
		library:   options.Library,
		fetcher:   options.Fetcher,
		recorder:  options.Recorder,
		metrics:   NewMetrics(options.Registerer),
		tickFuncs: options.TickFuncs,
		syncer:    roster.NewSyncer(options.Store, options.Clock, options.Logger),
		directory: roster.NewDirectory(),
		delta:     cfg.TickPeriod(),
	}, nil
}

// Run connects and keeps the bot connected until it terminates. It
// returns nil after a clean stop (ctx cancelled, or a TerminationError
// without a cause) and the terminating error otherwise.
func (b *Bot) Run(ctx context.Context) error {
	defer b.setState(StateTerminated)
	for {
		err := b.runOnce(ctx)
		if terminal := b.terminal(ctx, err); terminal != nil {
			b.disconnect()
			var termination *TerminationError
			if errors.As(terminal, &termination) && termination.Cause == nil {
				b.logger.Info("bot stopped")
				return nil
			}
			b.logger.Error("bot terminated", "error", terminal)
			return terminal
		}
		b.disconnect()

		attempt := b.Attempts()
		delay := Backoff(attempt, b.config.Runtime.ReconnectDelay, b.config.Runtime.ReconnectMaxDelay)
		b.setState(StateReconnecting)
		b.logger.Warn("connection lost, reconnecting",
			"error", err,
			"attempt", attempt+1,
			"delay", delay,
		)
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopped")
			return nil
		case <-b.clock.After(delay):
		}

		b.mu.Lock()
		b.attempts++
		b.mu.Unlock()
		b.metrics.Reconnects.Inc()
	}
}

// runOnce makes one connection and serves it until it ends.
func (b *Bot) runOnce(ctx context.Context) error {
	session, err := b.connect(ctx)
	if err != nil {
		return err
	}
	return b.serve(ctx, session)
}

// terminal classifies the error that ended a connection. It returns nil
// when the bot should reconnect.
func (b *Bot) terminal(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return &TerminationError{}
	}
	if errors.Is(err, ErrTermination) {
		return err
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return &TerminationError{Cause: err}
	}
	return nil
}

// State returns the current connection state.
func (b *Bot) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Attempts returns the number of reconnect attempts since the last
// successful connection.
func (b *Bot) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Delta returns the duration of the last tick, never less than the tick
// period.
func (b *Bot) Delta() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.delta
}

// Metrics exposes the bot's collectors.
func (b *Bot) Metrics() *Metrics { return b.metrics }

// setState moves to state unless the bot has terminated, updating the
// state gauge.
func (b *Bot) setState(state State) {
	b.mu.Lock()
	previous := b.state
	if previous != StateTerminated {
		b.state = state
	}
	b.mu.Unlock()

	if previous == state || previous == StateTerminated {
		return
	}
	b.metrics.State.Set(float64(state))
	if b.verbosity.Categories.Has(config.CategoryConnection) {
		b.logger.Debug("connection state changed", "from", previous, "to", state)
	}
}
