// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

/*
Package engine implements the playlist generation pipeline.

A run is single-shot and strictly forward:

	Preset → Seeds → Candidates → Filtered/Ranked → Ordered → Published

Stage layout:
  - seeds.go:      seed collection (history windows, explicit seeds,
    smart-seed artist selection, fallback)
  - strategies.go: candidate expansion, one harvester per seed mode
  - journey.go:    sonic-journey BFS pathfinding
  - filter.go:     static filter predicate + fuzzy dedup + caches
  - rank.go:       smart_sort, cap enforcement, genre strictness
  - smoother.go:   greedy sonic-gradient reorder
  - publish.go:    create-or-replace playlist, summary, poster

All randomness flows through the per-run *rand.Rand so a fixed seed yields a
reproducible final selection. The album and artist-metadata caches live for
one run and are discarded with the Engine.
*/
package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/aria/internal/logging"
	"github.com/tomtom215/aria/internal/metrics"
	"github.com/tomtom215/aria/internal/models"
	"github.com/tomtom215/aria/internal/plex"
	"github.com/tomtom215/aria/internal/preset"
)

// Fatal error classes mapped to exit codes by cmd/aria.
var (
	ErrConnect     = errors.New("cannot reach library server")
	ErrEmptyResult = errors.New("empty final selection")
	ErrPublish     = errors.New("publish failed")
)

// Library is the Plex surface the pipeline consumes. *plex.Client satisfies
// it; tests substitute a fixture implementation.
type Library interface {
	Identity(ctx context.Context) (*models.PlexIdentityContainer, error)
	ResolveMusicSection(ctx context.Context, title string) error

	FetchItem(ctx context.Context, ratingKey string) (*plex.Item, error)
	FetchAlbum(ctx context.Context, ratingKey string) (*models.Album, error)
	FetchArtist(ctx context.Context, ratingKey string) (*models.Artist, error)

	ListAlbums(ctx context.Context, artistKey string) ([]models.Album, error)
	ListAlbumTracks(ctx context.Context, albumKey string) ([]models.Track, error)
	ListArtistTracks(ctx context.Context, artistKey string) ([]models.Track, error)

	SearchTracksByGenre(ctx context.Context, genre string, limit int) ([]models.Track, error)
	SearchAlbumsByGenre(ctx context.Context, genre string, limit int) ([]models.Album, error)
	SearchArtistsByName(ctx context.Context, name string) ([]models.Artist, error)

	History(ctx context.Context, since time.Time) ([]models.HistoryEntry, error)

	SonicSimilarTracks(ctx context.Context, trackKey string, limit int) ([]models.Track, error)
	SonicSimilarAlbums(ctx context.Context, albumKey string, limit int) ([]models.Album, error)
	SonicSimilarArtists(ctx context.Context, artistKey string, limit int) ([]models.Artist, error)

	FindCollection(ctx context.Context, title string) (*models.PlexCollection, error)
	CollectionItems(ctx context.Context, collectionKey string) ([]*plex.Item, error)

	FindPlaylistByName(ctx context.Context, title string) (*models.PlexPlaylist, error)
	PlaylistItems(ctx context.Context, playlistKey string) ([]models.Track, error)
	CreatePlaylist(ctx context.Context, title string, trackKeys []string) (*models.PlexPlaylist, error)
	ClearPlaylistItems(ctx context.Context, playlistKey string) error
	AddPlaylistItems(ctx context.Context, playlistKey string, trackKeys []string) error
	SetPlaylistSummary(ctx context.Context, playlistKey, summary string) error
	UploadPlaylistPoster(ctx context.Context, playlistKey string, png []byte) error
}

// Engine holds the per-run state of one generation request.
type Engine struct {
	lib Library
	pre preset.Preset
	rng *rand.Rand
	now func() time.Time
	log zerolog.Logger

	dryRun       bool
	musicLibrary string

	// Per-run caches, lazily populated, mutex-guarded because stage-internal
	// fetches may run in parallel.
	cacheMu     sync.Mutex
	albumCache  map[string]*models.Album
	artistCache map[string]*models.Artist

	// excluded holds rating keys from the recent-played exclusion window.
	excluded map[string]struct{}

	// rejects accumulates filter reject reasons for the end-of-run table.
	rejects map[string]int

	filters filterConfig
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSeed fixes the RNG seed; 0 keeps the time-based default.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		if seed != 0 {
			e.rng = rand.New(rand.NewSource(seed))
		}
	}
}

// WithNow injects the clock (tests).
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithDryRun skips the publish stage.
func WithDryRun(dry bool) Option {
	return func(e *Engine) { e.dryRun = dry }
}

// New creates an Engine for one run. musicLibrary is the section title to
// resolve at connect time.
func New(lib Library, p preset.Preset, musicLibrary string, opts ...Option) *Engine {
	e := &Engine{
		lib:          lib,
		pre:          p,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
		log:          logging.With().Str("component", "engine").Logger(),
		musicLibrary: musicLibrary,
		albumCache:   map[string]*models.Album{},
		artistCache:  map[string]*models.Artist{},
		excluded:     map[string]struct{}{},
		rejects:      map[string]int{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.filters = newFilterConfig(&e.pre)
	return e
}

// Result is the outcome of a successful run.
type Result struct {
	Title       string
	Mode        preset.SeedMode
	Tracks      []models.Track
	PlaylistKey string
	Rejects     map[string]int
}

// Run executes the full pipeline. The returned error wraps ErrConnect,
// ErrEmptyResult, or ErrPublish for the fatal classes; per-item fetch
// failures are logged and skipped, never fatal.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	// Rebind the component logger so the context's run ID is on every line.
	e.log = logging.Ctx(ctx).With().Str("component", "engine").Logger()
	e.progress(0, "starting generation run")

	stageStart := e.now()
	if _, err := e.lib.Identity(ctx); err != nil {
		return nil, errors.Join(ErrConnect, err)
	}
	if err := e.lib.ResolveMusicSection(ctx, e.musicLibrary); err != nil {
		return nil, errors.Join(ErrConnect, err)
	}

	mode := e.effectiveMode()
	e.log.Info().Str("mode", string(mode)).Int("max_tracks", e.pre.MaxTracks).Msg("Run configured")

	period := PeriodAnytime
	if e.pre.UseTimePeriods {
		period = PeriodForHour(e.now().Hour())
		e.log.Info().Str("period", string(period)).Msg("Time period active")
	}

	seeds, err := e.collectSeeds(ctx, mode, period)
	if err != nil {
		return nil, err
	}
	metrics.StageDuration.WithLabelValues("seeds").Observe(e.now().Sub(stageStart).Seconds())
	e.progress(15, "seeds resolved")

	stageStart = e.now()
	pool, err := e.expand(ctx, mode, seeds)
	if err != nil {
		return nil, err
	}
	pool = e.blendHistory(mode, pool, seeds.History)
	metrics.StageDuration.WithLabelValues("expand").Observe(e.now().Sub(stageStart).Seconds())
	e.progress(40, "candidates expanded")

	stageStart = e.now()
	final := e.finalize(ctx, mode, pool)
	metrics.StageDuration.WithLabelValues("filter").Observe(e.now().Sub(stageStart).Seconds())
	e.progress(65, "candidates filtered and ranked")
	if len(final) == 0 {
		e.logRejects()
		return nil, ErrEmptyResult
	}

	if e.pre.SonicSmoothing && mode != preset.ModeSonicJourney {
		stageStart = e.now()
		final = e.smooth(ctx, final)
		metrics.StageDuration.WithLabelValues("smooth").Observe(e.now().Sub(stageStart).Seconds())
		e.progress(80, "sonic smoothing applied")
	}

	metrics.TracksSelected.Set(float64(len(final)))

	res := &Result{
		Title:   e.playlistTitle(mode),
		Mode:    mode,
		Tracks:  final,
		Rejects: e.rejects,
	}

	if !e.dryRun {
		e.progress(95, "publishing playlist")
		key, err := e.publish(ctx, res)
		if err != nil {
			return nil, errors.Join(ErrPublish, err)
		}
		res.PlaylistKey = key
	}

	e.logRejects()
	e.progress(100, "done")
	return res, nil
}

// effectiveMode resolves auto mode from the available seed sources.
func (e *Engine) effectiveMode() preset.SeedMode {
	if e.pre.SeedMode != preset.ModeAuto {
		return e.pre.SeedMode
	}
	switch {
	case len(e.pre.SeedTrackKeys) > 0:
		return preset.ModeTrackSonic
	case len(e.pre.SeedArtistNames) > 0:
		return preset.ModeSonicCombo
	case len(e.pre.GenreSeeds) > 0:
		return preset.ModeGenre
	default:
		return preset.ModeHistory
	}
}

// progress emits a stage-boundary line through the run's bound logger.
func (e *Engine) progress(percent int, msg string) {
	logging.ProgressTo(e.log, percent, msg)
}

// reject records a filter rejection.
func (e *Engine) reject(reason string) {
	e.rejects[reason]++
	metrics.FilterRejects.WithLabelValues(reason).Inc()
}

// logRejects prints the reject-reason table.
func (e *Engine) logRejects() {
	if len(e.rejects) == 0 {
		return
	}
	ev := e.log.Info()
	for reason, n := range e.rejects {
		ev = ev.Int(reason, n)
	}
	ev.Msg("Filter reject summary")
}
