// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/aria/internal/models"
	"github.com/tomtom215/aria/internal/preset"
)

// Reject reason names used in the reject counter and the end-of-run table.
const (
	rejectDuplicate      = "duplicate"
	rejectFuzzyDuplicate = "fuzzy_duplicate"
	rejectExcludedKey    = "excluded_key"
	rejectRatingTrack    = "rating_track"
	rejectRatingAlbum    = "rating_album"
	rejectRatingArtist   = "rating_artist"
	rejectPlayCount      = "play_count"
	rejectDuration       = "duration"
	rejectYear           = "year"
	rejectIncludeColl    = "include_collection"
	rejectExcludeColl    = "exclude_collection"
	rejectExcludeGenre   = "exclude_genre"
	rejectArtistCap      = "artist_cap"
	rejectAlbumCap       = "album_cap"
	rejectOffGenre       = "off_genre"
)

// filterConfig is the preset-derived filter record consumed by the static
// predicate. Sets are prebuilt so the hot path is map lookups.
type filterConfig struct {
	includeCollections map[string]struct{}
	excludeCollections map[string]struct{}
	excludeGenres      map[string]struct{} // lowercased
	seedGenres         map[string]struct{} // lowercased
	minDuration        time.Duration
	maxDuration        time.Duration
}

func newFilterConfig(p *preset.Preset) filterConfig {
	fc := filterConfig{
		includeCollections: map[string]struct{}{},
		excludeCollections: map[string]struct{}{},
		excludeGenres:      map[string]struct{}{},
		seedGenres:         map[string]struct{}{},
	}
	for _, c := range p.IncludeCollections {
		fc.includeCollections[c] = struct{}{}
	}
	for _, c := range p.ExcludeCollections {
		fc.excludeCollections[c] = struct{}{}
	}
	for _, g := range p.ExcludeGenres {
		fc.excludeGenres[strings.ToLower(g)] = struct{}{}
	}
	for _, g := range p.GenreSeeds {
		fc.seedGenres[strings.ToLower(g)] = struct{}{}
	}
	fc.minDuration = time.Duration(p.MinDurationSec) * time.Second
	fc.maxDuration = time.Duration(p.MaxDurationSec) * time.Second
	return fc
}

// passesFilter applies the static-filter predicate in a fixed order (duplicate,
// exclusion window, rating gates, play count, duration, year, collection
// inclusion/exclusion, genre exclusion). seen may be nil when the caller
// tracks duplicates itself. Rejections increment the named counters.
func (e *Engine) passesFilter(ctx context.Context, t *models.Track, seen map[string]struct{}) bool {
	if seen != nil {
		if _, dup := seen[t.RatingKey]; dup {
			e.reject(rejectDuplicate)
			return false
		}
	}
	if _, ok := e.excluded[t.RatingKey]; ok {
		e.reject(rejectExcludedKey)
		return false
	}

	p := &e.pre
	if p.MinRating.Track > 0 {
		if !t.Rated() {
			if !p.AllowUnrated {
				e.reject(rejectRatingTrack)
				return false
			}
		} else if t.UserRating < p.MinRating.Track {
			e.reject(rejectRatingTrack)
			return false
		}
	}
	if p.MinRating.Album > 0 {
		album := e.album(ctx, t.AlbumKey)
		switch {
		case album == nil || !album.Rated():
			if !p.AllowUnrated {
				e.reject(rejectRatingAlbum)
				return false
			}
		case album.UserRating < p.MinRating.Album:
			e.reject(rejectRatingAlbum)
			return false
		}
	}
	if p.MinRating.Artist > 0 {
		artist := e.artistMeta(ctx, t.ArtistKey)
		switch {
		case artist == nil || !artist.Rated():
			if !p.AllowUnrated {
				e.reject(rejectRatingArtist)
				return false
			}
		case artist.UserRating < p.MinRating.Artist:
			e.reject(rejectRatingArtist)
			return false
		}
	}

	if p.MinPlayCount >= 0 && t.ViewCount < p.MinPlayCount {
		e.reject(rejectPlayCount)
		return false
	}
	if p.MaxPlayCount >= 0 && t.ViewCount > p.MaxPlayCount {
		e.reject(rejectPlayCount)
		return false
	}

	if e.filters.minDuration > 0 && t.Duration < e.filters.minDuration {
		e.reject(rejectDuration)
		return false
	}
	if e.filters.maxDuration > 0 && t.Duration > e.filters.maxDuration {
		e.reject(rejectDuration)
		return false
	}

	if p.MinYear > 0 || p.MaxYear > 0 {
		year := t.Year
		if album := e.album(ctx, t.AlbumKey); album != nil && album.Year > 0 {
			year = album.Year
		}
		if year == 0 || (p.MinYear > 0 && year < p.MinYear) || (p.MaxYear > 0 && year > p.MaxYear) {
			e.reject(rejectYear)
			return false
		}
	}

	if len(e.filters.includeCollections) > 0 && !e.anyCollectionIn(ctx, t, e.filters.includeCollections) {
		e.reject(rejectIncludeColl)
		return false
	}
	if len(e.filters.excludeCollections) > 0 && e.anyCollectionIn(ctx, t, e.filters.excludeCollections) {
		e.reject(rejectExcludeColl)
		return false
	}

	if len(e.filters.excludeGenres) > 0 {
		for _, g := range e.allGenres(ctx, t) {
			if _, bad := e.filters.excludeGenres[strings.ToLower(g)]; bad {
				e.reject(rejectExcludeGenre)
				return false
			}
		}
	}

	return true
}

// anyCollectionIn reports whether any of the track/album/artist collections
// is in the given set.
func (e *Engine) anyCollectionIn(ctx context.Context, t *models.Track, set map[string]struct{}) bool {
	for _, c := range t.Collections {
		if _, ok := set[c]; ok {
			return true
		}
	}
	if album := e.album(ctx, t.AlbumKey); album != nil {
		for _, c := range album.Collections {
			if _, ok := set[c]; ok {
				return true
			}
		}
	}
	if artist := e.artistMeta(ctx, t.ArtistKey); artist != nil {
		for _, c := range artist.Collections {
			if _, ok := set[c]; ok {
				return true
			}
		}
	}
	return false
}

// allGenres returns track plus album plus artist genres (union, unmodified
// case) for exclusion checks.
func (e *Engine) allGenres(ctx context.Context, t *models.Track) []string {
	genres := append([]string(nil), t.Genres...)
	if album := e.album(ctx, t.AlbumKey); album != nil {
		genres = append(genres, album.Genres...)
	}
	if artist := e.artistMeta(ctx, t.ArtistKey); artist != nil {
		genres = append(genres, artist.Genres...)
	}
	return genres
}

// candidateGenres returns the lowercased genre set used by genre-strictness
// checks. Fallback order is track, then album, then artist; the first
// non-empty level wins.
func (e *Engine) candidateGenres(ctx context.Context, t *models.Track) map[string]struct{} {
	src := t.Genres
	if len(src) == 0 {
		if album := e.album(ctx, t.AlbumKey); album != nil {
			src = album.Genres
		}
	}
	if len(src) == 0 {
		if artist := e.artistMeta(ctx, t.ArtistKey); artist != nil {
			src = artist.Genres
		}
	}
	out := make(map[string]struct{}, len(src))
	for _, g := range src {
		out[strings.ToLower(g)] = struct{}{}
	}
	return out
}

// album returns the cached album for a key, fetching lazily. Fetch failures
// are cached as nil so each album is attempted once per run.
func (e *Engine) album(ctx context.Context, albumKey string) *models.Album {
	if albumKey == "" {
		return nil
	}
	e.cacheMu.Lock()
	if a, ok := e.albumCache[albumKey]; ok {
		e.cacheMu.Unlock()
		return a
	}
	e.cacheMu.Unlock()

	a, err := e.lib.FetchAlbum(ctx, albumKey)
	if err != nil {
		e.log.Debug().Err(err).Str("album", albumKey).Msg("Album fetch failed")
		a = nil
	}

	e.cacheMu.Lock()
	// First writer wins on a racing double-fetch.
	if cached, ok := e.albumCache[albumKey]; ok {
		e.cacheMu.Unlock()
		return cached
	}
	e.albumCache[albumKey] = a
	e.cacheMu.Unlock()
	return a
}

// artistMeta returns the cached artist metadata for a key, fetching lazily.
func (e *Engine) artistMeta(ctx context.Context, artistKey string) *models.Artist {
	if artistKey == "" {
		return nil
	}
	e.cacheMu.Lock()
	if a, ok := e.artistCache[artistKey]; ok {
		e.cacheMu.Unlock()
		return a
	}
	e.cacheMu.Unlock()

	a, err := e.lib.FetchArtist(ctx, artistKey)
	if err != nil {
		e.log.Debug().Err(err).Str("artist", artistKey).Msg("Artist fetch failed")
		a = nil
	}

	e.cacheMu.Lock()
	if cached, ok := e.artistCache[artistKey]; ok {
		e.cacheMu.Unlock()
		return cached
	}
	e.artistCache[artistKey] = a
	e.cacheMu.Unlock()
	return a
}
