// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/aria/internal/models"
	"github.com/tomtom215/aria/internal/plex"
	"github.com/tomtom215/aria/internal/preset"
)

// seedSet is the output of seed collection. Tracks is the ordered, deduped
// seed list the active mode expands from; History is the history-window seed
// pool kept separately for intersection and blending; Artists holds resolved
// seed artists for the artist-mix strategies.
type seedSet struct {
	Tracks  []models.Track
	History []models.Track
	Artists []models.Artist
}

// collectSeeds gathers seeds for the run: the recent-played exclusion
// window, history seeds (period-restricted when active), explicit track,
// playlist, and collection seeds, and smart-seed picks from named artists.
// Per-item fetch failures are logged and skipped.
func (e *Engine) collectSeeds(ctx context.Context, mode preset.SeedMode, period Period) (*seedSet, error) {
	if err := e.loadExclusionWindow(ctx); err != nil {
		return nil, err
	}

	set := &seedSet{}
	seen := map[string]struct{}{}
	add := func(t models.Track) {
		if _, dup := seen[t.RatingKey]; dup {
			return
		}
		seen[t.RatingKey] = struct{}{}
		set.Tracks = append(set.Tracks, t)
	}

	history, err := e.historySeeds(ctx, period)
	if err != nil {
		return nil, err
	}
	set.History = history

	if mode == preset.ModeHistory || mode == preset.ModeSonicHistory {
		for _, t := range history {
			add(t)
		}
	}

	for _, key := range e.pre.SeedTrackKeys {
		item, err := e.lib.FetchItem(ctx, key)
		if err != nil {
			e.log.Warn().Err(err).Str("key", key).Msg("Seed track fetch failed")
			continue
		}
		if item.Kind != models.KindTrack {
			e.log.Warn().Str("key", key).Str("kind", string(item.Kind)).Msg("Seed key is not a track")
			continue
		}
		add(*item.Track)
	}

	for _, name := range e.pre.SeedPlaylistNames {
		pl, err := e.lib.FindPlaylistByName(ctx, name)
		if err != nil {
			e.log.Warn().Err(err).Str("playlist", name).Msg("Seed playlist not found")
			continue
		}
		items, err := e.lib.PlaylistItems(ctx, pl.RatingKey)
		if err != nil {
			e.log.Warn().Err(err).Str("playlist", name).Msg("Seed playlist items fetch failed")
			continue
		}
		for _, t := range items {
			add(t)
		}
	}

	for _, name := range e.pre.SeedCollectionNames {
		tracks, err := e.collectionTracks(ctx, name)
		if err != nil {
			e.log.Warn().Err(err).Str("collection", name).Msg("Seed collection resolve failed")
			continue
		}
		for _, t := range tracks {
			add(t)
		}
	}

	for _, name := range e.pre.SeedArtistNames {
		artists, err := e.lib.SearchArtistsByName(ctx, name)
		if err != nil || len(artists) == 0 {
			e.log.Warn().Err(err).Str("artist", name).Msg("Seed artist not found")
			continue
		}
		artist := artists[0]
		set.Artists = append(set.Artists, artist)
		for _, t := range e.smartSeedPicks(ctx, &artist, mode, seen) {
			add(t)
		}
	}

	if len(set.Tracks) == 0 && mode != preset.ModeHistory && mode != preset.ModeStrictCollection {
		if err := e.applySeedFallback(ctx, set, add); err != nil {
			return nil, err
		}
	}

	e.log.Info().
		Int("seeds", len(set.Tracks)).
		Int("history_seeds", len(set.History)).
		Int("excluded", len(e.excluded)).
		Msg("Seed collection complete")
	return set, nil
}

// loadExclusionWindow fills e.excluded with identifiers played within the
// last exclude_played_days.
func (e *Engine) loadExclusionWindow(ctx context.Context) error {
	if e.pre.ExcludePlayedDays <= 0 {
		return nil
	}
	since := e.now().AddDate(0, 0, -e.pre.ExcludePlayedDays)
	entries, err := e.lib.History(ctx, since)
	if err != nil {
		return err
	}
	for _, h := range entries {
		e.excluded[h.RatingKey] = struct{}{}
	}
	return nil
}

// historySeeds reads the lookback window, applies the period hour filter and
// the exclusion window, and resolves surviving entries to Tracks gated by
// history_min_rating and history_max_play_count.
func (e *Engine) historySeeds(ctx context.Context, period Period) ([]models.Track, error) {
	if e.pre.HistoryLookbackDays <= 0 {
		return nil, nil
	}
	since := e.now().AddDate(0, 0, -e.pre.HistoryLookbackDays)
	entries, err := e.lib.History(ctx, since)
	if err != nil {
		return nil, err
	}

	var out []models.Track
	seen := map[string]struct{}{}
	for _, h := range entries {
		if !period.AllowsHour(h.ViewedAt.Hour()) {
			continue
		}
		if _, excluded := e.excluded[h.RatingKey]; excluded {
			continue
		}
		if _, dup := seen[h.RatingKey]; dup {
			continue
		}
		seen[h.RatingKey] = struct{}{}

		item, err := e.lib.FetchItem(ctx, h.RatingKey)
		if err != nil {
			if !errors.Is(err, plex.ErrNotFound) {
				e.log.Debug().Err(err).Str("key", h.RatingKey).Msg("History item fetch failed")
			}
			continue
		}
		if item.Kind != models.KindTrack {
			continue
		}
		t := *item.Track
		if e.pre.HistoryMinRating > 0 && t.UserRating < e.pre.HistoryMinRating {
			continue
		}
		if e.pre.HistoryMaxPlayCount >= 0 && t.ViewCount > e.pre.HistoryMaxPlayCount {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// collectionTracks resolves a named collection and flattens its items to
// tracks: artists contribute all their tracks, albums their track lists,
// tracks pass through.
func (e *Engine) collectionTracks(ctx context.Context, name string) ([]models.Track, error) {
	coll, err := e.lib.FindCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	items, err := e.lib.CollectionItems(ctx, coll.RatingKey)
	if err != nil {
		return nil, err
	}

	var out []models.Track
	for _, item := range items {
		switch item.Kind {
		case models.KindTrack:
			out = append(out, *item.Track)
		case models.KindAlbum:
			tracks, err := e.lib.ListAlbumTracks(ctx, item.Album.RatingKey)
			if err != nil {
				e.log.Debug().Err(err).Str("album", item.Album.RatingKey).Msg("Collection album tracks fetch failed")
				continue
			}
			out = append(out, tracks...)
		case models.KindArtist:
			tracks, err := e.lib.ListArtistTracks(ctx, item.Artist.RatingKey)
			if err != nil {
				e.log.Debug().Err(err).Str("artist", item.Artist.RatingKey).Msg("Collection artist tracks fetch failed")
				continue
			}
			out = append(out, tracks...)
		}
	}
	return out, nil
}

// smartSeedPicks selects representative tracks for a seed artist spanning
// distinct albums: iterate albums in random order, one pick per album via
// pickTrackFromAlbum, stopping after target successes or 4x target
// attempts. Falls back to the artist's first three tracks when nothing is
// picked.
func (e *Engine) smartSeedPicks(ctx context.Context, artist *models.Artist, mode preset.SeedMode, seen map[string]struct{}) []models.Track {
	target := 5
	if mode == preset.ModeAlbumEchoes && e.pre.DeepDiveTarget > 0 {
		target = e.pre.DeepDiveTarget
	}

	albums, err := e.lib.ListAlbums(ctx, artist.RatingKey)
	if err != nil {
		e.log.Warn().Err(err).Str("artist", artist.Title).Msg("Seed artist albums fetch failed")
		return nil
	}
	e.rng.Shuffle(len(albums), func(i, j int) { albums[i], albums[j] = albums[j], albums[i] })

	var picks []models.Track
	attempts := 0
	for i := 0; len(picks) < target && attempts < 4*target; i = (i + 1) % max(1, len(albums)) {
		if len(albums) == 0 {
			break
		}
		attempts++
		t, ok := e.pickTrackFromAlbum(ctx, &albums[i])
		if !ok {
			continue
		}
		if _, dup := seen[t.RatingKey]; dup {
			continue
		}
		seen[t.RatingKey] = struct{}{}
		picks = append(picks, *t)
	}

	if len(picks) == 0 {
		tracks, err := e.lib.ListArtistTracks(ctx, artist.RatingKey)
		if err != nil {
			e.log.Warn().Err(err).Str("artist", artist.Title).Msg("Seed artist tracks fetch failed")
			return nil
		}
		if len(tracks) > 3 {
			tracks = tracks[:3]
		}
		picks = tracks
	}
	return picks
}

// applySeedFallback runs the configured fallback when the seed list came up
// empty: reuse history seeds, or harvest a genre (defaulting to Rock).
func (e *Engine) applySeedFallback(ctx context.Context, set *seedSet, add func(models.Track)) error {
	switch e.pre.SeedFallbackMode {
	case preset.ModeGenre:
		genres := e.pre.GenreSeeds
		if len(genres) == 0 {
			genres = []string{"Rock"}
		}
		e.log.Warn().Strs("genres", genres).Msg("No seeds collected, falling back to genre harvest")
		tracks, err := e.harvestGenre(ctx, genres)
		if err != nil {
			return err
		}
		for _, t := range tracks {
			add(t)
		}
	default:
		e.log.Warn().Msg("No seeds collected, falling back to history")
		if len(set.History) == 0 {
			history, err := e.historySeeds(ctx, PeriodAnytime)
			if err != nil {
				return err
			}
			set.History = history
		}
		for _, t := range set.History {
			add(t)
		}
	}
	return nil
}

// ageDays returns whole days between a timestamp and now, 0 floor.
func (e *Engine) ageDays(ts time.Time) float64 {
	if ts.IsZero() {
		return 0
	}
	d := e.now().Sub(ts).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}
