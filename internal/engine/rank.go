// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

import (
	"context"
	"math"
	"sort"

	"github.com/tomtom215/aria/internal/models"
	"github.com/tomtom215/aria/internal/preset"
)

// popularity is the raw quality proxy: plays plus weighted rating votes.
func popularity(t *models.Track) float64 {
	return float64(t.ViewCount) + float64(t.RatingCount)*10
}

// smartSort orders a candidate pool on the explore/exploit dial.
//
// exploit_weight at or below 0.01 means pure exploration: a plain shuffle.
// Otherwise each track gets a quality score, normalized popularity when
// usePopularity is set or positional similarity rank when not, boosted for
// recently added tracks, then mixed with per-run randomness:
//
//	score = quality*w + random()*(1-w)
//
// The input slice is not modified.
func (e *Engine) smartSort(pool []models.Track, usePopularity bool) []models.Track {
	out := append([]models.Track(nil), pool...)
	n := len(out)
	if n < 2 {
		return out
	}

	w := e.pre.ExploitWeight
	if w <= 0.01 {
		e.rng.Shuffle(n, func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}

	quality := make([]float64, n)
	if usePopularity {
		var maxRaw float64
		for i := range out {
			if raw := popularity(&out[i]); raw > maxRaw {
				maxRaw = raw
			}
		}
		for i := range out {
			if maxRaw > 0 {
				quality[i] = popularity(&out[i]) / maxRaw
			} else {
				// Nothing has plays or votes yet; fall back to position.
				quality[i] = 1 - float64(i)/float64(n)
			}
		}
	} else {
		// Pool arrives pre-sorted by similarity; earlier is better.
		for i := range out {
			quality[i] = 1 - float64(i)/float64(n)
		}
	}

	if e.pre.RecentlyAddedDays > 0 {
		cutoff := e.now().AddDate(0, 0, -e.pre.RecentlyAddedDays)
		for i := range out {
			if !out[i].AddedAt.IsZero() && !out[i].AddedAt.Before(cutoff) {
				quality[i] *= e.pre.RecentlyAddedWeight
			}
		}
	}

	score := make([]float64, n)
	for i := range out {
		score[i] = quality[i]*w + e.rng.Float64()*(1-w)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return score[idx[a]] > score[idx[b]] })

	ranked := make([]models.Track, n)
	for i, j := range idx {
		ranked[i] = out[j]
	}
	return ranked
}

// finalize runs the final filter, rank, and cap pass over the candidate
// pool and cuts it to max_tracks.
//
// Three modes carry semantic ordering out of their harvester and are not
// re-ranked: sonic_journey (path order), sonic_history (intersection first,
// discovery tail last), strict_collection (weight order). strict_collection
// additionally bypasses the static predicate, its scoring already decided
// membership, but still respects dedup, the exclusion window, and caps.
func (e *Engine) finalize(ctx context.Context, mode preset.SeedMode, pool []models.Track) []models.Track {
	ranked := pool
	switch mode {
	case preset.ModeSonicJourney, preset.ModeSonicHistory, preset.ModeStrictCollection:
	default:
		ranked = e.smartSort(pool, true)
	}
	return e.capWalk(ctx, ranked, mode != preset.ModeStrictCollection)
}

// capWalk walks a ranked pool in order and accepts tracks until max_tracks,
// enforcing identifier and fuzzy dedup, the static predicate (unless
// applyStatic is false), per-artist and per-album caps, and genre
// strictness with its off-genre quota.
func (e *Engine) capWalk(ctx context.Context, ranked []models.Track, applyStatic bool) []models.Track {
	seen := make(map[string]struct{}, len(ranked))
	prints := make(map[string]struct{}, len(ranked))
	perArtist := map[string]int{}
	perAlbum := map[string]int{}

	offGenre := 0
	offGenreBudget := int(math.Floor(float64(e.pre.MaxTracks) * e.pre.AllowOffGenreFraction))

	final := make([]models.Track, 0, e.pre.MaxTracks)
	for i := range ranked {
		t := &ranked[i]

		if _, dup := seen[t.RatingKey]; dup {
			e.reject(rejectDuplicate)
			continue
		}
		if applyStatic {
			if !e.passesFilter(ctx, t, nil) {
				continue
			}
		} else if _, ok := e.excluded[t.RatingKey]; ok {
			e.reject(rejectExcludedKey)
			continue
		}

		fp := Fingerprint(t)
		if _, dup := prints[fp]; dup {
			e.reject(rejectFuzzyDuplicate)
			continue
		}

		if e.pre.MaxTracksPerArtist > 0 && perArtist[t.ArtistKey] >= e.pre.MaxTracksPerArtist {
			e.reject(rejectArtistCap)
			continue
		}
		if e.pre.MaxTracksPerAlbum > 0 && perAlbum[t.AlbumKey] >= e.pre.MaxTracksPerAlbum {
			e.reject(rejectAlbumCap)
			continue
		}

		if len(e.filters.seedGenres) > 0 {
			onGenre := false
			for g := range e.candidateGenres(ctx, t) {
				if _, ok := e.filters.seedGenres[g]; ok {
					onGenre = true
					break
				}
			}
			if !onGenre {
				if e.pre.GenreStrict && offGenre >= offGenreBudget {
					e.reject(rejectOffGenre)
					continue
				}
				offGenre++
			}
		}

		seen[t.RatingKey] = struct{}{}
		prints[fp] = struct{}{}
		perArtist[t.ArtistKey]++
		perAlbum[t.AlbumKey]++
		final = append(final, *t)
		if len(final) == e.pre.MaxTracks {
			break
		}
	}
	return final
}
