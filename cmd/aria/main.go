// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

// Package main is the entry point for the Aria playlist generator.
//
// Aria builds one playlist per invocation from a declarative preset: it
// collects seed tracks (listening history, explicit seeds, collections),
// expands them through the selected strategy (genre harvest, sonic
// similarity mixes, journey pathfinding, album deep dives), filters and
// ranks the candidates, optionally smooths the ordering into a sonic
// gradient, and publishes the result to the Plex server with a generated
// cover image.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - PLEX_URL / PLEX_TOKEN shorthand environment variables
//   - ARIA_* environment variables (ARIA_PLEX_URL, ARIA_CLIENT_TIMEOUT, ...)
//   - Config file (config.yaml, or --config / CONFIG_PATH)
//   - Built-in defaults
//
// # Usage
//
// Run a stored preset:
//
//	aria --preset my-morning-mix
//
// Pipe a preset document on stdin:
//
//	aria < preset.json
//
// List the preset store:
//
//	aria --list-presets
//
// Reproducible runs for debugging use a fixed random seed:
//
//	aria --preset my-morning-mix --seed 42 --dry-run
//
// # Exit Codes
//
//	0  playlist generated and published
//	1  unexpected error
//	2  configuration or preset error
//	3  Plex server unreachable or music library missing
//	5  empty final selection, or publish failed
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/aria/internal/config"
	"github.com/tomtom215/aria/internal/engine"
	"github.com/tomtom215/aria/internal/logging"
	"github.com/tomtom215/aria/internal/plex"
	"github.com/tomtom215/aria/internal/preset"
)

// Exit codes. Scripted callers branch on these.
const (
	exitOK      = 0
	exitError   = 1
	exitConfig  = 2
	exitConnect = 3
	exitResult  = 5
)

var version = "dev" // injected via -ldflags

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", "", "path to config.yaml (default: auto-discover)")
		presetName  = flag.String("preset", "", "named preset from the preset store")
		listPresets = flag.Bool("list-presets", false, "list available presets and exit")
		seed        = flag.Int64("seed", 0, "fixed random seed for reproducible runs (0 = time-based)")
		dryRun      = flag.Bool("dry-run", false, "run the full pipeline but do not publish")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("aria", version)
		return exitOK
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return exitConfig
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	log := logging.With().Str("component", "main").Logger()
	log.Info().Str("version", version).Msg("Aria starting")

	store := preset.NewStore(cfg.Presets.Dir)

	if *listPresets {
		names, err := store.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, "preset store error:", err)
			return exitConfig
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return exitOK
	}

	doc, err := loadPreset(store, *presetName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "preset error:", err)
		return exitConfig
	}

	// A preset may carry its own server override.
	if doc.Plex != nil {
		if doc.Plex.URL != "" {
			cfg.Plex.URL = doc.Plex.URL
		}
		if doc.Plex.Token != "" {
			cfg.Plex.Token = doc.Plex.Token
		}
		if doc.Plex.MusicLibrary != "" {
			cfg.Plex.MusicLibrary = doc.Plex.MusicLibrary
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithNewRunID(ctx)

	client := plex.NewClient(cfg.Plex, cfg.Client)
	eng := engine.New(client, doc.Playlist, cfg.Plex.MusicLibrary,
		engine.WithSeed(*seed),
		engine.WithDryRun(*dryRun),
	)

	res, err := eng.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Run failed")
		switch {
		case errors.Is(err, engine.ErrConnect):
			return exitConnect
		case errors.Is(err, engine.ErrEmptyResult), errors.Is(err, engine.ErrPublish):
			return exitResult
		default:
			return exitError
		}
	}

	ev := log.Info().
		Str("title", res.Title).
		Str("mode", string(res.Mode)).
		Int("tracks", len(res.Tracks))
	if *dryRun {
		ev.Msg("Dry run complete, playlist not published")
	} else {
		ev.Str("playlist_key", res.PlaylistKey).Msg("Playlist published")
	}
	return exitOK
}

// loadPreset resolves the preset document: a named store entry when --preset
// is given, otherwise a document read from stdin.
func loadPreset(store *preset.Store, name string) (*preset.Document, error) {
	if name != "" {
		return store.Load(name)
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
		return nil, errors.New("no preset: pass --preset <name> or pipe a preset document on stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty preset document on stdin")
	}
	return preset.Parse(data)
}
