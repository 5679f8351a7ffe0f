// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// pianobot connects a chat bot to a Multiplayer Piano style room
// service, joins a channel and answers prefixed chat commands.
//
// Configuration is layered, later sources winning: built-in defaults,
// the YAML or JSONC file named by --config or PIANOBOT_CONFIG, the
// environment (TOKEN, NAME, COLOR, CHANNEL, PREFIX, INSTANCE,
// VERBOSITY, also read from ./.env), and finally flags.
//
// The token is sensitive. Prefer token_file, or sealed_token with an
// age identity file; "pianobot seal" produces the sealed form.
//
// Known users and their roles live in <data>/<instance>.db. Use
// --grant ID=role[,role] to promote a user, typically to bootstrap an
// owner.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/pianobot/pianobot/bot"
	"github.com/pianobot/pianobot/lib/authorization"
	"github.com/pianobot/pianobot/lib/config"
	"github.com/pianobot/pianobot/lib/midi"
	"github.com/pianobot/pianobot/lib/process"
	"github.com/pianobot/pianobot/lib/transcript"
	"github.com/pianobot/pianobot/lib/userstore"
	"github.com/pianobot/pianobot/lib/version"
	"github.com/pianobot/pianobot/messaging"
)

func main() {
	process.Exit("pianobot", run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// flags holds command-line overrides. Empty strings leave the
// configured value alone.
type flags struct {
	configPath    string
	tokenFile     string
	name          string
	color         string
	channel       string
	prefix        string
	instance      string
	verbosity     string
	metricsListen string
	transcript    string
	grants        []string
	ephemeral     bool
	showVersion   bool
}

func newFlagSet(output io.Writer, values *flags) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("pianobot", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.StringVar(&values.configPath, "config", "", "YAML or JSONC config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&values.tokenFile, "token-file", "", "file holding the service token")
	flagSet.StringVar(&values.name, "name", "", "display name")
	flagSet.StringVar(&values.color, "color", "", "display color as #rrggbb")
	flagSet.StringVar(&values.channel, "channel", "", "channel to join")
	flagSet.StringVar(&values.prefix, "prefix", "", "command prefix")
	flagSet.StringVar(&values.instance, "instance", "", "instance name; selects the user database")
	flagSet.StringVar(&values.verbosity, "verbosity", "", "none, error, warn, info, debug, all, or a list of connection,database,inbound,outbound,filesystem")
	flagSet.StringVar(&values.metricsListen, "metrics-listen", "", "serve Prometheus metrics on this host:port")
	flagSet.StringVar(&values.transcript, "transcript", "", "record every frame to this file")
	flagSet.StringArrayVar(&values.grants, "grant", nil, "grant roles before starting, as ID=role[,role] (repeatable)")
	flagSet.BoolVar(&values.ephemeral, "ephemeral", false, "keep users in memory instead of the instance database")
	flagSet.BoolVar(&values.showVersion, "version", false, "print version information and exit")
	return flagSet
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "seal" {
		return runSeal(args[1:], stdin, stdout, stderr)
	}

	var values flags
	flagSet := newFlagSet(stderr, &values)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if values.showVersion {
		fmt.Fprintf(stdout, "pianobot %s\n", version.Full())
		return nil
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))
	}

	// A missing .env is normal.
	_ = godotenv.Load(".env")

	cfg, err := loadConfig(values, os.LookupEnv)
	if err != nil {
		return err
	}
	verbosity, err := config.ParseVerbosity(cfg.Verbosity)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, verbosity.Level)
	slog.SetDefault(logger)

	token, err := resolveToken(cfg)
	if err != nil {
		return err
	}
	defer token.Close()

	store, closeStore, err := openStore(cfg, values.ephemeral, verbosity, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := applyGrants(ctx, store, values.grants, logger); err != nil {
		return err
	}

	var recorder transcript.Recorder
	if cfg.Paths.Transcript != "" {
		writer, err := transcript.Create(cfg.Paths.Transcript)
		if err != nil {
			return err
		}
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("closing transcript", "error", err)
			}
		}()
		recorder = writer
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if cfg.Metrics.Listen != "" {
		server := serveMetrics(cfg.Metrics.Listen, registry, logger)
		defer server.Close()
	}

	var fileLogger *slog.Logger
	if verbosity.Categories.Has(config.CategoryFilesystem) {
		fileLogger = logger
	}

	instance, err := bot.New(cfg, bot.Options{
		Dialer:     &messaging.WebSocketDialer{Logger: logger},
		Store:      store,
		Token:      token,
		Logger:     logger,
		Library:    &midi.Library{Dir: cfg.MIDI.Directory, Logger: fileLogger},
		Fetcher:    &midi.HTTPFetcher{Timeout: cfg.MIDI.DownloadTimeout, MaxBytes: cfg.MIDI.MaxDownloadBytes},
		Recorder:   recorder,
		Registerer: registry,
	})
	if err != nil {
		return err
	}
	logger.Info("starting pianobot", "version", version.Info(), "instance", cfg.Instance, "address", cfg.URL())
	return instance.Run(ctx)
}

// loadConfig layers the config file, the environment and flags, then
// validates the result.
func loadConfig(values flags, lookup func(string) (string, bool)) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if values.configPath != "" {
		cfg, err = config.LoadFile(values.configPath)
		if err == nil {
			cfg.ApplyEnvironment(lookup)
		}
	} else {
		cfg, err = config.Load(lookup)
	}
	if err != nil {
		return nil, err
	}

	overlay := func(value string, field *string) {
		if value != "" {
			*field = value
		}
	}
	overlay(values.tokenFile, &cfg.Identity.TokenFile)
	overlay(values.name, &cfg.Identity.Name)
	overlay(values.color, &cfg.Identity.Color)
	overlay(values.channel, &cfg.Identity.Channel)
	overlay(values.prefix, &cfg.Prefix)
	overlay(values.instance, &cfg.Instance)
	overlay(values.verbosity, &cfg.Verbosity)
	overlay(values.metricsListen, &cfg.Metrics.Listen)
	overlay(values.transcript, &cfg.Paths.Transcript)
	if values.tokenFile != "" {
		// An explicit file beats a token inherited from the environment.
		cfg.Identity.Token = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// openStore opens the instance database, or an in-memory store for
// --ephemeral runs. The returned function releases it.
func openStore(cfg *config.Config, ephemeral bool, verbosity config.Verbosity, logger *slog.Logger) (userstore.Store, func(), error) {
	if ephemeral {
		logger.Warn("user store is in memory; roles are lost on exit")
		return userstore.NewMemory(), func() {}, nil
	}
	store, err := userstore.OpenSQLite(userstore.SQLiteConfig{
		Path:      cfg.DatabasePath(),
		Logger:    logger,
		LogWrites: verbosity.Categories.Has(config.CategoryDatabase),
	})
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("closing user store", "error", err)
		}
	}, nil
}

// applyGrants handles --grant ID=role[,role]. Unknown users are created
// first so an owner can be bootstrapped before they ever join.
func applyGrants(ctx context.Context, store userstore.Store, grants []string, logger *slog.Logger) error {
	for _, grant := range grants {
		id, roleList, ok := strings.Cut(grant, "=")
		if !ok || id == "" || roleList == "" {
			return fmt.Errorf("--grant %q: want ID=role[,role]", grant)
		}
		var roles []authorization.Role
		for _, name := range strings.Split(roleList, authorization.RoleSeparator) {
			role := authorization.ParseRole(strings.TrimSpace(name))
			if role == authorization.RoleUnknown {
				return fmt.Errorf("--grant %q: unknown role %q", grant, name)
			}
			roles = append(roles, role)
		}

		exists, err := store.UserExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			if err := store.AddUser(ctx, userstore.Fields{userstore.ColumnID: id}); err != nil {
				return err
			}
		}
		if err := userstore.Grant(ctx, store, id, roles...); err != nil {
			return fmt.Errorf("--grant %q: %w", grant, err)
		}
		logger.Info("roles granted", "user_id", id, "roles", roleList)
	}
	return nil
}

func serveMetrics(address string, registry *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "address", address, "error", err)
		}
	}()
	logger.Info("serving metrics", "address", address)
	return server
}
