// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	config := Default()
	config.Identity.Channel = "lobby"
	config.Identity.Token = "token"
	return config
}

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := values[name]
		return value, ok
	}
}

func TestDefault(t *testing.T) {
	config := Default()
	if config.URL() != "wss://mppclone.com:443/" {
		t.Errorf("URL() = %q, want wss://mppclone.com:443/", config.URL())
	}
	if config.Runtime.TickRate != 5 {
		t.Errorf("tick rate = %d, want 5", config.Runtime.TickRate)
	}
	if config.TickPeriod() != 200*time.Millisecond {
		t.Errorf("TickPeriod() = %v, want 200ms", config.TickPeriod())
	}
	if config.Runtime.HeartbeatInterval != 20*time.Second {
		t.Errorf("heartbeat = %v, want 20s", config.Runtime.HeartbeatInterval)
	}
	if config.DatabasePath() != filepath.Join("instance", "default.db") {
		t.Errorf("DatabasePath() = %q", config.DatabasePath())
	}
}

func TestValidateDefaultNeedsChannelAndToken(t *testing.T) {
	err := Default().Validate()
	if err == nil {
		t.Fatal("Validate() on Default() succeeded, want channel and token errors")
	}
	for _, want := range []string{"identity.channel", "token is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %q", err, want)
		}
	}

	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() on a complete config: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad color", func(c *Config) { c.Identity.Color = "red" }, "identity.color"},
		{"blank prefix", func(c *Config) { c.Prefix = "" }, "prefix"},
		{"spaced prefix", func(c *Config) { c.Prefix = "! " }, "prefix"},
		{"instance path", func(c *Config) { c.Instance = "../etc" }, "instance"},
		{"port", func(c *Config) { c.Service.Port = 0 }, "service.port"},
		{"tick rate", func(c *Config) { c.Runtime.TickRate = 0 }, "tick_rate"},
		{"backoff cap", func(c *Config) { c.Runtime.ReconnectMaxDelay = time.Millisecond }, "reconnect_max_delay"},
		{"sealed without identity", func(c *Config) { c.Identity.SealedToken = "abc" }, "identity_file"},
		{"verbosity", func(c *Config) { c.Verbosity = "loud" }, "verbosity"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := validConfig()
			test.mutate(config)
			err := config.Validate()
			if err == nil {
				t.Fatal("Validate() succeeded")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("Validate() = %q, want mention of %q", err, test.want)
			}
		})
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pianobot.yaml")
	contents := `
service:
  host: localhost
  port: 8080
  insecure: true
identity:
  name: Tester
  channel: test room
prefix: "?"
runtime:
  heartbeat_interval: 5s
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if config.URL() != "ws://localhost:8080/" {
		t.Errorf("URL() = %q", config.URL())
	}
	if config.Identity.Name != "Tester" || config.Identity.Channel != "test room" {
		t.Errorf("identity = %+v", config.Identity)
	}
	if config.Prefix != "?" {
		t.Errorf("prefix = %q, want ?", config.Prefix)
	}
	if config.Runtime.HeartbeatInterval != 5*time.Second {
		t.Errorf("heartbeat = %v, want 5s", config.Runtime.HeartbeatInterval)
	}
	if config.Runtime.TickRate != 5 {
		t.Errorf("unset tick rate = %d, want default 5", config.Runtime.TickRate)
	}
}

func TestLoadFileJSONC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pianobot.jsonc")
	contents := `{
  // comments are allowed
  "identity": {"channel": "lobby", "token_file": "${PIANOBOT_TEST_DIR:-/srv}/token",},
  "runtime": {"reconnect_max_delay": "1m"},
}`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if config.Identity.Channel != "lobby" {
		t.Errorf("channel = %q, want lobby", config.Identity.Channel)
	}
	if config.Identity.TokenFile != "/srv/token" {
		t.Errorf("token_file = %q, want /srv/token", config.Identity.TokenFile)
	}
	if config.Runtime.ReconnectMaxDelay != time.Minute {
		t.Errorf("reconnect_max_delay = %v, want 1m", config.Runtime.ReconnectMaxDelay)
	}
}

func TestLoadAppliesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pianobot.yaml")
	if err := os.WriteFile(path, []byte("identity:\n  channel: from-file\n  name: FileName\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := Load(lookupFrom(map[string]string{
		EnvironmentVariable: path,
		"CHANNEL":           "from-env",
		"TOKEN":             "secret",
		"NAME":              "",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if config.Identity.Channel != "from-env" {
		t.Errorf("channel = %q, want the environment to win", config.Identity.Channel)
	}
	if config.Identity.Name != "FileName" {
		t.Errorf("name = %q, an empty variable must not override", config.Identity.Name)
	}
	if config.Identity.Token != "secret" {
		t.Errorf("token not taken from the environment")
	}
}

func TestLoadWithoutFile(t *testing.T) {
	config, err := Load(lookupFrom(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if config.Service.Host != "mppclone.com" {
		t.Errorf("host = %q, want the default", config.Service.Host)
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		input      string
		level      slog.Level
		categories Category
	}{
		{"", slog.LevelInfo, 0},
		{"none", LevelSilent, 0},
		{"ERROR", slog.LevelError, 0},
		{"debug", slog.LevelDebug, 0},
		{"all", slog.LevelDebug, CategoryAll},
		{"inbound, outbound", slog.LevelDebug, CategoryInbound | CategoryOutbound},
	}
	for _, test := range tests {
		verbosity, err := ParseVerbosity(test.input)
		if err != nil {
			t.Errorf("ParseVerbosity(%q): %v", test.input, err)
			continue
		}
		if verbosity.Level != test.level || verbosity.Categories != test.categories {
			t.Errorf("ParseVerbosity(%q) = %+v, want level %v categories %b",
				test.input, verbosity, test.level, test.categories)
		}
	}

	if _, err := ParseVerbosity("inbound,bogus"); err == nil {
		t.Error("ParseVerbosity accepted an unknown category")
	}
	if !CategoryAll.Has(CategoryDatabase) || CategoryInbound.Has(CategoryOutbound) {
		t.Error("Category.Has is wrong")
	}
}
