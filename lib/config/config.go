// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

// Package config holds the single configuration value a pianobot process
// runs with.
//
// The value is assembled once at startup, in order: Default, then the
// file named by --config or PIANOBOT_CONFIG (YAML, or JSON with comments),
// then the process environment (TOKEN, NAME, COLOR, CHANNEL, PREFIX,
// INSTANCE, VERBOSITY, usually supplied through a .env file), then
// command-line flags. After Validate succeeds the value is handed to the
// bot by pointer and never modified again.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "PIANOBOT_CONFIG"

// Config is the complete runtime configuration.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Identity IdentityConfig `yaml:"identity"`

	// Prefix starts every chat command, e.g. "!" in "!help".
	Prefix string `yaml:"prefix"`

	// Instance names this deployment. The user database lives at
	// <paths.data>/<instance>.db so several bots can share a host.
	Instance string `yaml:"instance"`

	// Verbosity selects log level and debug categories; see
	// ParseVerbosity.
	Verbosity string `yaml:"verbosity"`

	Runtime RuntimeConfig `yaml:"runtime"`
	Paths   PathsConfig   `yaml:"paths"`
	MIDI    MIDIConfig    `yaml:"midi"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServiceConfig locates the room service.
type ServiceConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Insecure selects ws:// instead of wss://. Only useful against a
	// local test server.
	Insecure bool `yaml:"insecure"`
}

// IdentityConfig is who the bot appears as and how it authenticates.
// Exactly one token source is used, checked in the order Token,
// TokenFile, SealedToken.
type IdentityConfig struct {
	Name    string `yaml:"name"`
	Color   string `yaml:"color"`
	Channel string `yaml:"channel"`

	Token     string `yaml:"token"`
	TokenFile string `yaml:"token_file"`

	// SealedToken is base64 age ciphertext of the token, decrypted
	// with the X25519 identity in IdentityFile.
	SealedToken  string `yaml:"sealed_token"`
	IdentityFile string `yaml:"identity_file"`
}

// RuntimeConfig tunes the connection loops.
type RuntimeConfig struct {
	// TickRate is the tick loop frequency in Hz.
	TickRate int `yaml:"tick_rate"`

	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// ReconnectDelay is the first backoff delay; each consecutive
	// failure doubles it up to ReconnectMaxDelay.
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	ReconnectMaxDelay time.Duration `yaml:"reconnect_max_delay"`
}

// PathsConfig locates on-disk state. ${HOME} and ${VAR:-default} are
// expanded.
type PathsConfig struct {
	Data string `yaml:"data"`

	// Transcript, when set, records every frame to this file.
	Transcript string `yaml:"transcript"`
}

// MIDIConfig configures the MIDI library used by the gaming command.
type MIDIConfig struct {
	Directory        string        `yaml:"directory"`
	MaxDownloadBytes int64         `yaml:"max_download_bytes"`
	DownloadTimeout  time.Duration `yaml:"download_timeout"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is a host:port for /metrics. Empty disables it.
	Listen string `yaml:"listen"`
}

// Default returns the configuration used before any file, environment
// variable or flag is applied.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Host: "mppclone.com",
			Port: 443,
		},
		Identity: IdentityConfig{
			Name:  "pianobot",
			Color: "#7f7f7f",
		},
		Prefix:    "!",
		Instance:  "default",
		Verbosity: "info",
		Runtime: RuntimeConfig{
			TickRate:          5,
			HeartbeatInterval: 20 * time.Second,
			ReconnectDelay:    time.Second,
			ReconnectMaxDelay: 30 * time.Second,
		},
		Paths: PathsConfig{
			Data: "instance",
		},
		MIDI: MIDIConfig{
			Directory:        "midi",
			MaxDownloadBytes: 8 << 20,
			DownloadTimeout:  30 * time.Second,
		},
	}
}

// Load returns Default overlaid with the file named by PIANOBOT_CONFIG,
// if that variable is set, and then with the environment.
func Load(lookup func(string) (string, bool)) (*Config, error) {
	config := Default()
	if path, ok := lookup(EnvironmentVariable); ok && path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, err
		}
	}
	config.ApplyEnvironment(lookup)
	config.expandVariables()
	return config, nil
}

// LoadFile returns Default overlaid with the file at path. Files ending
// in .json or .jsonc may contain comments and trailing commas.
func LoadFile(path string) (*Config, error) {
	config := Default()
	if err := config.loadFile(path); err != nil {
		return nil, err
	}
	config.expandVariables()
	return config, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a subset of YAML, so one decoder (and one set of
		// struct tags and duration parsing) serves both formats.
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// ApplyEnvironment overlays the variables the bot has always been
// configured with. Unset or empty variables leave the field alone.
func (c *Config) ApplyEnvironment(lookup func(string) (string, bool)) {
	overlay := func(name string, field *string) {
		if value, ok := lookup(name); ok && value != "" {
			*field = value
		}
	}
	overlay("TOKEN", &c.Identity.Token)
	overlay("NAME", &c.Identity.Name)
	overlay("COLOR", &c.Identity.Color)
	overlay("CHANNEL", &c.Identity.Channel)
	overlay("PREFIX", &c.Prefix)
	overlay("INSTANCE", &c.Instance)
	overlay("VERBOSITY", &c.Verbosity)
}

func (c *Config) expandVariables() {
	c.Paths.Data = expandVars(c.Paths.Data)
	c.Paths.Transcript = expandVars(c.Paths.Transcript)
	c.MIDI.Directory = expandVars(c.MIDI.Directory)
	c.Identity.TokenFile = expandVars(c.Identity.TokenFile)
	c.Identity.IdentityFile = expandVars(c.Identity.IdentityFile)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces ${VAR} and ${VAR:-default} with environment values.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// URL is the WebSocket address of the room service.
func (c *Config) URL() string {
	scheme := "wss"
	if c.Service.Insecure {
		scheme = "ws"
	}
	address := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(c.Service.Host, strconv.Itoa(c.Service.Port)),
		Path:   "/",
	}
	return address.String()
}

// DatabasePath is where the instance's user records live.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.Data, c.Instance+".db")
}

// TickPeriod is the tick loop's target period.
func (c *Config) TickPeriod() time.Duration {
	return time.Second / time.Duration(c.Runtime.TickRate)
}

var (
	colorPattern    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	instancePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.Host == "" {
		errs = append(errs, errors.New("service.host is required"))
	}
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		errs = append(errs, fmt.Errorf("service.port %d is out of range", c.Service.Port))
	}
	if c.Identity.Name == "" {
		errs = append(errs, errors.New("identity.name is required"))
	}
	if !colorPattern.MatchString(c.Identity.Color) {
		errs = append(errs, fmt.Errorf("identity.color %q must look like #rrggbb", c.Identity.Color))
	}
	if c.Identity.Channel == "" {
		errs = append(errs, errors.New("identity.channel is required"))
	}
	if c.Identity.Token == "" && c.Identity.TokenFile == "" && c.Identity.SealedToken == "" {
		errs = append(errs, errors.New("a token is required: set identity.token, identity.token_file, identity.sealed_token or TOKEN"))
	}
	if c.Identity.SealedToken != "" && c.Identity.IdentityFile == "" {
		errs = append(errs, errors.New("identity.sealed_token needs identity.identity_file"))
	}
	if c.Prefix == "" || strings.ContainsAny(c.Prefix, " \t\r\n") {
		errs = append(errs, fmt.Errorf("prefix %q must be non-empty and contain no whitespace", c.Prefix))
	}
	if !instancePattern.MatchString(c.Instance) {
		errs = append(errs, fmt.Errorf("instance %q may only contain letters, digits, '.', '_' and '-'", c.Instance))
	}
	if _, err := ParseVerbosity(c.Verbosity); err != nil {
		errs = append(errs, err)
	}
	if c.Runtime.TickRate < 1 {
		errs = append(errs, fmt.Errorf("runtime.tick_rate must be positive, got %d", c.Runtime.TickRate))
	}
	if c.Runtime.HeartbeatInterval <= 0 {
		errs = append(errs, errors.New("runtime.heartbeat_interval must be positive"))
	}
	if c.Runtime.ReconnectDelay <= 0 {
		errs = append(errs, errors.New("runtime.reconnect_delay must be positive"))
	}
	if c.Runtime.ReconnectMaxDelay < c.Runtime.ReconnectDelay {
		errs = append(errs, errors.New("runtime.reconnect_max_delay must not be below runtime.reconnect_delay"))
	}
	if c.Paths.Data == "" {
		errs = append(errs, errors.New("paths.data is required"))
	}
	if c.MIDI.MaxDownloadBytes <= 0 {
		errs = append(errs, errors.New("midi.max_download_bytes must be positive"))
	}

	return errors.Join(errs...)
}
