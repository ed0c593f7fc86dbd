// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

// Package config loads the Aria application configuration.
//
// Layering (lowest to highest priority):
//  1. Built-in defaults (structs provider)
//  2. YAML config file (config.yaml, or --config / CONFIG_PATH override)
//  3. Environment variables (ARIA_* plus the PLEX_URL / PLEX_TOKEN shorthands)
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/aria/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config is the root application configuration.
type Config struct {
	Plex    PlexConfig    `koanf:"plex"`
	Client  ClientConfig  `koanf:"client"`
	Presets PresetsConfig `koanf:"presets"`
	Logging LoggingConfig `koanf:"logging"`
}

// PlexConfig identifies the Plex Media Server and music library.
type PlexConfig struct {
	URL          string `koanf:"url"`
	Token        string `koanf:"token"`
	MusicLibrary string `koanf:"music_library"`
}

// ClientConfig bounds the Library Client's resource usage.
type ClientConfig struct {
	// Timeout applies per API call.
	Timeout time.Duration `koanf:"timeout"`
	// RequestsPerSecond is the global soft cap on Plex API calls (0 = unlimited).
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
	// BreakerEnabled wraps the client in a circuit breaker.
	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// PresetsConfig locates the preset store.
type PresetsConfig struct {
	Dir string `koanf:"dir"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns a Config with all defaults applied.
func defaultConfig() *Config {
	return &Config{
		Plex: PlexConfig{
			MusicLibrary: "Music",
		},
		Client: ClientConfig{
			Timeout:           60 * time.Second,
			RequestsPerSecond: 0,
			Burst:             10,
			BreakerEnabled:    true,
		},
		Presets: PresetsConfig{
			Dir: "Playlist_Presets",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the configuration. path may be empty, in which case
// CONFIG_PATH and then DefaultConfigPaths are consulted; a missing config
// file is not an error (env-only configuration is supported).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path == "" {
		for _, p := range DefaultConfigPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// ARIA_PLEX_MUSIC_LIBRARY → plex.music_library, etc. Unknown names map
	// to "" and are ignored by the provider.
	if err := k.Load(env.Provider("ARIA_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Bare PLEX_URL / PLEX_TOKEN shorthands win over everything; they are
	// what the companion scripts export.
	if v := os.Getenv("PLEX_URL"); v != "" {
		cfg.Plex.URL = v
	}
	if v := os.Getenv("PLEX_TOKEN"); v != "" {
		cfg.Plex.Token = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKeys maps ARIA_-stripped, lowercased environment variable names to
// koanf config paths. The map is explicit because key segments themselves
// contain underscores, so a mechanical underscore-to-dot transform cannot
// recover the nesting.
var envKeys = map[string]string{
	"plex_url":           "plex.url",
	"plex_token":         "plex.token",
	"plex_music_library": "plex.music_library",

	"client_timeout":             "client.timeout",
	"client_requests_per_second": "client.requests_per_second",
	"client_burst":               "client.burst",
	"client_breaker_enabled":     "client.breaker_enabled",

	"presets_dir": "presets.dir",

	"logging_level":  "logging.level",
	"logging_format": "logging.format",
}

// envTransform resolves an ARIA_* variable name to its config path.
func envTransform(s string) string {
	return envKeys[strings.ToLower(strings.TrimPrefix(s, "ARIA_"))]
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Plex.URL == "" {
		return errors.New("plex.url is required (or set PLEX_URL)")
	}
	if c.Plex.Token == "" {
		return errors.New("plex.token is required (or set PLEX_TOKEN)")
	}
	if c.Plex.MusicLibrary == "" {
		return errors.New("plex.music_library is required")
	}
	if c.Client.Timeout <= 0 {
		return errors.New("client.timeout must be positive")
	}
	return nil
}
