// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/tomtom215/aria/internal/models"
)

// pickTrackFromAlbum selects one track from an album on the explore/exploit
// dial. Album-level year, collection, and genre constraints reject the whole
// album before any track fetch. Surviving tracks are filtered, sorted by
// popularity, and picked either uniformly from the top third (exploit) or
// with a squared-random bias toward the top (explore).
func (e *Engine) pickTrackFromAlbum(ctx context.Context, album *models.Album) (*models.Track, bool) {
	if !e.albumPassesConstraints(album) {
		return nil, false
	}

	tracks, err := e.lib.ListAlbumTracks(ctx, album.RatingKey)
	if err != nil {
		e.log.Debug().Err(err).Str("album", album.RatingKey).Msg("Album tracks fetch failed")
		return nil, false
	}

	eligible := make([]models.Track, 0, len(tracks))
	for i := range tracks {
		if e.passesFilter(ctx, &tracks[i], nil) {
			eligible = append(eligible, tracks[i])
		}
	}
	n := len(eligible)
	if n == 0 {
		return nil, false
	}
	sort.SliceStable(eligible, func(a, b int) bool {
		return popularity(&eligible[a]) > popularity(&eligible[b])
	})

	var idx int
	if e.rng.Float64() < e.pre.ExploitWeight {
		top := n / 3
		if top < 1 {
			top = 1
		}
		idx = e.rng.Intn(top)
	} else {
		r := e.rng.Float64()
		idx = int(math.Floor(r * r * float64(n-1)))
	}
	return &eligible[idx], true
}

// pickTrackFromArtist shuffles the artist's albums and returns the first
// successful album pick.
func (e *Engine) pickTrackFromArtist(ctx context.Context, artistKey string) (*models.Track, bool) {
	albums, err := e.lib.ListAlbums(ctx, artistKey)
	if err != nil {
		e.log.Debug().Err(err).Str("artist", artistKey).Msg("Artist albums fetch failed")
		return nil, false
	}
	e.rng.Shuffle(len(albums), func(i, j int) { albums[i], albums[j] = albums[j], albums[i] })
	for i := range albums {
		if t, ok := e.pickTrackFromAlbum(ctx, &albums[i]); ok {
			return t, true
		}
	}
	return nil, false
}

// albumPassesConstraints checks the album-level subset of the static filter:
// year range, excluded collections, excluded genres.
func (e *Engine) albumPassesConstraints(album *models.Album) bool {
	if (e.pre.MinYear > 0 && (album.Year == 0 || album.Year < e.pre.MinYear)) ||
		(e.pre.MaxYear > 0 && (album.Year == 0 || album.Year > e.pre.MaxYear)) {
		return false
	}
	for _, c := range album.Collections {
		if _, bad := e.filters.excludeCollections[c]; bad {
			return false
		}
	}
	for _, g := range album.Genres {
		if _, bad := e.filters.excludeGenres[strings.ToLower(g)]; bad {
			return false
		}
	}
	return true
}
