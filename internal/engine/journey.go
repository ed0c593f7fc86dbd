// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

import (
	"context"
	"math"

	"github.com/tomtom215/aria/internal/metrics"
	"github.com/tomtom215/aria/internal/models"
)

// Pathfinder bounds. The node budget caps total neighbor fetches per leg so
// a sparse sonic graph cannot turn one run into thousands of API calls.
const (
	journeyMaxDepth = 4
	journeyWidth    = 15
	journeyMaxNodes = 1300
)

// expandJourney builds an ordered path through 2+ waypoint tracks. Each
// consecutive pair becomes a leg: a BFS path through sonic-similar tracks
// when one exists within the depth budget, a similarity bridge otherwise.
// Short legs are inflated with extra neighbors to reach the per-leg target.
// The emitted order is semantic and is not re-ranked downstream.
func (e *Engine) expandJourney(ctx context.Context, seedTracks []models.Track) ([]models.Track, error) {
	if len(seedTracks) < 2 {
		e.log.Warn().Int("seeds", len(seedTracks)).Msg("Sonic journey needs 2+ seed tracks, using track sonic instead")
		return e.expandTrackSonic(ctx, seedTracks)
	}

	legs := len(seedTracks) - 1
	perLegTarget := e.pre.MaxTracks / legs
	if perLegTarget < 5 {
		perLegTarget = 5
	}

	waypoints := make(map[string]struct{}, len(seedTracks))
	for i := range seedTracks {
		waypoints[seedTracks[i].RatingKey] = struct{}{}
	}

	var journey []models.Track
	for i := 0; i < legs; i++ {
		a, b := seedTracks[i], seedTracks[i+1]
		segment := e.journeyLeg(ctx, a, b, perLegTarget)
		if i > 0 && len(segment) > 0 && len(journey) > 0 &&
			segment[0].RatingKey == journey[len(journey)-1].RatingKey {
			// Shared waypoint between adjacent legs.
			segment = segment[1:]
		}
		journey = append(journey, segment...)
	}

	return e.trimJourney(journey, waypoints), nil
}

// journeyLeg produces the ordered tracks for one waypoint pair.
func (e *Engine) journeyLeg(ctx context.Context, a, b models.Track, target int) []models.Track {
	path := e.findSonicPath(ctx, a, b)
	if path == nil {
		e.log.Debug().Str("from", a.Title).Str("to", b.Title).Msg("No sonic path found, bridging")
		return e.fallbackBridge(ctx, a, b, target)
	}
	if len(path) < target {
		path = e.inflatePath(ctx, path, target)
	}
	return path
}

// findSonicPath runs a breadth-first search from start to end over the
// sonic-similarity graph. Paths longer than the depth budget are dropped;
// the whole search aborts after the node budget of neighbor fetches.
// Returns nil when no path reaches the end.
func (e *Engine) findSonicPath(ctx context.Context, start, end models.Track) []models.Track {
	type queued struct {
		path []models.Track
	}
	queue := []queued{{path: []models.Track{start}}}
	visited := map[string]struct{}{start.RatingKey: {}}
	nodes := 0

	for len(queue) > 0 {
		if ctx.Err() != nil {
			return nil
		}
		cur := queue[0]
		queue = queue[1:]
		tail := cur.path[len(cur.path)-1]

		if tail.RatingKey == end.RatingKey {
			return cur.path
		}
		if len(cur.path) > journeyMaxDepth+1 {
			continue
		}
		if nodes >= journeyMaxNodes {
			return nil
		}
		nodes++
		metrics.PathfinderNodes.Inc()

		neighbors, err := e.lib.SonicSimilarTracks(ctx, tail.RatingKey, journeyWidth)
		if err != nil {
			e.log.Debug().Err(err).Str("track", tail.RatingKey).Msg("Pathfinder neighbor fetch failed")
			continue
		}
		for i := range neighbors {
			n := neighbors[i]
			if n.RatingKey == end.RatingKey {
				return append(append([]models.Track(nil), cur.path...), end)
			}
			if _, seen := visited[n.RatingKey]; seen {
				continue
			}
			visited[n.RatingKey] = struct{}{}
			next := append(append([]models.Track(nil), cur.path...), n)
			queue = append(queue, queued{path: next})
		}
	}
	return nil
}

// inflatePath pads a short skeleton path toward the target length by
// splicing unseen neighbors in after each skeleton track.
func (e *Engine) inflatePath(ctx context.Context, path []models.Track, target int) []models.Track {
	needed := target - len(path)
	if needed <= 0 {
		return path
	}
	perNeighbor := int(math.Ceil(float64(needed)/float64(len(path)))) + 2

	seen := make(map[string]struct{}, target)
	for i := range path {
		seen[path[i].RatingKey] = struct{}{}
	}

	out := make([]models.Track, 0, target)
	for i := range path {
		out = append(out, path[i])
		neighbors, err := e.lib.SonicSimilarTracks(ctx, path[i].RatingKey, perNeighbor+5)
		if err != nil {
			e.log.Debug().Err(err).Str("track", path[i].RatingKey).Msg("Path inflation fetch failed")
			continue
		}
		added := 0
		for j := range neighbors {
			if added >= perNeighbor {
				break
			}
			if _, dup := seen[neighbors[j].RatingKey]; dup {
				continue
			}
			seen[neighbors[j].RatingKey] = struct{}{}
			out = append(out, neighbors[j])
			added++
		}
	}
	return out
}

// fallbackBridge approximates a leg with no found path: A's neighborhood,
// then B's neighborhood, bookended by the waypoints themselves.
func (e *Engine) fallbackBridge(ctx context.Context, a, b models.Track, target int) []models.Track {
	half := target/2 + 2
	out := []models.Track{a}
	seen := map[string]struct{}{a.RatingKey: {}, b.RatingKey: {}}

	for _, seed := range []models.Track{a, b} {
		neighbors, err := e.lib.SonicSimilarTracks(ctx, seed.RatingKey, half)
		if err != nil {
			e.log.Debug().Err(err).Str("track", seed.RatingKey).Msg("Bridge neighbor fetch failed")
			continue
		}
		for i := range neighbors {
			if _, dup := seen[neighbors[i].RatingKey]; dup {
				continue
			}
			seen[neighbors[i].RatingKey] = struct{}{}
			out = append(out, neighbors[i])
		}
	}
	return append(out, b)
}

// trimJourney cuts an over-long journey down to max_tracks by removing
// non-waypoint tracks from the end, preserving the waypoint subsequence.
func (e *Engine) trimJourney(journey []models.Track, waypoints map[string]struct{}) []models.Track {
	if len(journey) <= e.pre.MaxTracks {
		return journey
	}
	out := make([]models.Track, 0, len(journey))
	over := len(journey) - e.pre.MaxTracks
	for i := len(journey) - 1; i >= 0; i-- {
		if _, isWaypoint := waypoints[journey[i].RatingKey]; !isWaypoint && over > 0 {
			over--
			continue
		}
		out = append(out, journey[i])
	}
	// Reverse back to journey order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
