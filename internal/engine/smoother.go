// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

import (
	"context"

	"github.com/tomtom215/aria/internal/models"
)

// smooth reorders the final selection into a sonic gradient. Greedy walk:
// start at a uniform-random track so repeat runs take fresh journeys, then
// repeatedly move to the best-scoring remaining track among the current
// track's sonic neighbors. Neighbor rank drives the score and a same-artist
// penalty breaks up artist clumps. A dead end, no remaining track in the
// neighbor list, falls through to the head of the remaining pool.
func (e *Engine) smooth(ctx context.Context, tracks []models.Track) []models.Track {
	if len(tracks) < 3 {
		return tracks
	}

	remaining := append([]models.Track(nil), tracks...)
	start := e.rng.Intn(len(remaining))
	current := remaining[start]
	remaining = append(remaining[:start], remaining[start+1:]...)

	out := make([]models.Track, 0, len(tracks))
	out = append(out, current)

	for len(remaining) > 0 {
		if ctx.Err() != nil {
			// Cancelled mid-walk; return what is ordered plus the rest as-is.
			return append(out, remaining...)
		}

		next := -1
		neighbors, err := e.lib.SonicSimilarTracks(ctx, current.RatingKey, 50)
		if err == nil {
			rank := make(map[string]int, len(neighbors))
			for i := range neighbors {
				rank[neighbors[i].RatingKey] = i
			}
			best := -1 << 30
			for i := range remaining {
				idx, ok := rank[remaining[i].RatingKey]
				if !ok {
					continue
				}
				score := 100 - idx
				if remaining[i].ArtistKey == current.ArtistKey {
					score -= 25
				}
				if score > best {
					best = score
					next = i
				}
			}
		} else {
			e.log.Debug().Err(err).Str("track", current.RatingKey).Msg("Smoother neighbor fetch failed")
		}

		if next < 0 {
			next = 0
		}
		current = remaining[next]
		remaining = append(remaining[:next], remaining[next+1:]...)
		out = append(out, current)
	}
	return out
}
