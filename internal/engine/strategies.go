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

// expand dispatches to the mode's candidate harvester.
func (e *Engine) expand(ctx context.Context, mode preset.SeedMode, seeds *seedSet) ([]models.Track, error) {
	switch mode {
	case preset.ModeHistory:
		// History seeds are the pool, used verbatim.
		return seeds.Tracks, nil
	case preset.ModeGenre:
		return e.harvestGenre(ctx, e.pre.GenreSeeds)
	case preset.ModeSonicAlbumMix:
		return e.expandAlbumMix(ctx, seeds.Tracks, true)
	case preset.ModeSonicArtistMix:
		return e.expandArtistMix(ctx, seeds, true)
	case preset.ModeSonicCombo:
		albums, err := e.expandAlbumMix(ctx, seeds.Tracks, true)
		if err != nil {
			return nil, err
		}
		artists, err := e.expandArtistMix(ctx, seeds, true)
		if err != nil {
			return nil, err
		}
		return append(albums, artists...), nil
	case preset.ModeTrackSonic:
		return e.expandTrackSonic(ctx, seeds.Tracks)
	case preset.ModeSonicHistory:
		return e.expandSonicHistory(ctx, seeds)
	case preset.ModeSonicJourney:
		return e.expandJourney(ctx, seeds.Tracks)
	case preset.ModeAlbumEchoes:
		return e.expandDeepDive(ctx, seeds.Tracks)
	case preset.ModeStrictCollection:
		return e.expandStrictCollection(ctx)
	default:
		return seeds.Tracks, nil
	}
}

// blendHistory appends a shuffled slice of history seeds to the pool,
// floor(max_tracks*historical_ratio) of them. Skipped for the modes whose
// pool already is (or intersects) history.
func (e *Engine) blendHistory(mode preset.SeedMode, pool, history []models.Track) []models.Track {
	switch mode {
	case preset.ModeHistory, preset.ModeSonicHistory, preset.ModeStrictCollection:
		return pool
	}
	if e.pre.HistoricalRatio <= 0 || len(history) == 0 {
		return pool
	}
	n := int(math.Floor(float64(e.pre.MaxTracks) * e.pre.HistoricalRatio))
	if n == 0 {
		return pool
	}
	shuffled := append([]models.Track(nil), history...)
	e.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if n > len(shuffled) {
		n = len(shuffled)
	}
	e.log.Debug().Int("blended", n).Msg("History blend applied")
	return append(pool, shuffled[:n]...)
}

// harvestGenre collects candidates per genre: up to 100 filtered tracks from
// a shuffled 1000-track search, falling back to an album walk (50 albums, 50
// filtered tracks each) when the track search is empty.
func (e *Engine) harvestGenre(ctx context.Context, genres []string) ([]models.Track, error) {
	var pool []models.Track
	seen := map[string]struct{}{}

	for _, genre := range genres {
		tracks, err := e.lib.SearchTracksByGenre(ctx, genre, 1000)
		if err != nil {
			e.log.Warn().Err(err).Str("genre", genre).Msg("Genre track search failed")
			continue
		}
		if len(tracks) > 0 {
			e.rng.Shuffle(len(tracks), func(i, j int) { tracks[i], tracks[j] = tracks[j], tracks[i] })
			kept := 0
			for i := range tracks {
				if kept >= 100 {
					break
				}
				if !e.passesFilter(ctx, &tracks[i], seen) {
					continue
				}
				seen[tracks[i].RatingKey] = struct{}{}
				pool = append(pool, tracks[i])
				kept++
			}
			continue
		}

		albums, err := e.lib.SearchAlbumsByGenre(ctx, genre, 500)
		if err != nil {
			e.log.Warn().Err(err).Str("genre", genre).Msg("Genre album search failed")
			continue
		}
		e.rng.Shuffle(len(albums), func(i, j int) { albums[i], albums[j] = albums[j], albums[i] })
		if len(albums) > 50 {
			albums = albums[:50]
		}
		for a := range albums {
			tracks, err := e.lib.ListAlbumTracks(ctx, albums[a].RatingKey)
			if err != nil {
				e.log.Debug().Err(err).Str("album", albums[a].RatingKey).Msg("Genre album tracks fetch failed")
				continue
			}
			kept := 0
			for i := range tracks {
				if kept >= 50 {
					break
				}
				if !e.passesFilter(ctx, &tracks[i], seen) {
					continue
				}
				seen[tracks[i].RatingKey] = struct{}{}
				pool = append(pool, tracks[i])
				kept++
			}
		}
	}
	return pool, nil
}

// sonicFanout is the similar-entity fetch limit: twice the configured limit
// with a floor of 40 so per-artist caps cannot starve the output.
func (e *Engine) sonicFanout() int {
	if f := 2 * e.pre.SonicSimilarLimit; f > 40 {
		return f
	}
	return 40
}

// expandAlbumMix resolves seed tracks to their albums, expands each through
// sonic-similar albums, and keeps up to 6 popularity-ranked tracks per album
// in the expanded set. applyFilter is off for the raw sonic-history pool.
func (e *Engine) expandAlbumMix(ctx context.Context, seedTracks []models.Track, applyFilter bool) ([]models.Track, error) {
	albumSeen := map[string]struct{}{}
	var albumKeys []string
	addAlbum := func(key string) {
		if key == "" {
			return
		}
		if _, dup := albumSeen[key]; dup {
			return
		}
		albumSeen[key] = struct{}{}
		albumKeys = append(albumKeys, key)
	}

	for i := range seedTracks {
		addAlbum(seedTracks[i].AlbumKey)
	}
	seedAlbums := append([]string(nil), albumKeys...)
	for _, key := range seedAlbums {
		similar, err := e.lib.SonicSimilarAlbums(ctx, key, e.sonicFanout())
		if err != nil {
			e.log.Debug().Err(err).Str("album", key).Msg("Sonic similar albums fetch failed")
			continue
		}
		for i := range similar {
			addAlbum(similar[i].RatingKey)
		}
	}

	var pool []models.Track
	seen := map[string]struct{}{}
	for _, key := range albumKeys {
		tracks, err := e.lib.ListAlbumTracks(ctx, key)
		if err != nil {
			e.log.Debug().Err(err).Str("album", key).Msg("Album tracks fetch failed")
			continue
		}
		ranked := e.smartSort(tracks, true)
		kept := 0
		for i := range ranked {
			if kept >= 6 {
				break
			}
			if _, dup := seen[ranked[i].RatingKey]; dup {
				continue
			}
			if applyFilter && !e.passesFilter(ctx, &ranked[i], nil) {
				continue
			}
			seen[ranked[i].RatingKey] = struct{}{}
			pool = append(pool, ranked[i])
			kept++
		}
	}
	return pool, nil
}

// expandArtistMix expands seed artists through sonic-similar artists and
// keeps up to 25 popularity-ranked tracks per artist.
func (e *Engine) expandArtistMix(ctx context.Context, seeds *seedSet, applyFilter bool) ([]models.Track, error) {
	artistSeen := map[string]struct{}{}
	var artistKeys []string
	addArtist := func(key string) {
		if key == "" {
			return
		}
		if _, dup := artistSeen[key]; dup {
			return
		}
		artistSeen[key] = struct{}{}
		artistKeys = append(artistKeys, key)
	}

	for i := range seeds.Artists {
		addArtist(seeds.Artists[i].RatingKey)
	}
	for i := range seeds.Tracks {
		addArtist(seeds.Tracks[i].ArtistKey)
	}

	seedArtists := append([]string(nil), artistKeys...)
	for _, key := range seedArtists {
		similar, err := e.lib.SonicSimilarArtists(ctx, key, e.sonicFanout())
		if err != nil {
			e.log.Debug().Err(err).Str("artist", key).Msg("Sonic similar artists fetch failed")
			continue
		}
		for i := range similar {
			addArtist(similar[i].RatingKey)
		}
	}

	var pool []models.Track
	seen := map[string]struct{}{}
	for _, key := range artistKeys {
		tracks, err := e.lib.ListArtistTracks(ctx, key)
		if err != nil {
			e.log.Debug().Err(err).Str("artist", key).Msg("Artist tracks fetch failed")
			continue
		}
		ranked := e.smartSort(tracks, true)
		kept := 0
		for i := range ranked {
			if kept >= 25 {
				break
			}
			if _, dup := seen[ranked[i].RatingKey]; dup {
				continue
			}
			if applyFilter && !e.passesFilter(ctx, &ranked[i], nil) {
				continue
			}
			seen[ranked[i].RatingKey] = struct{}{}
			pool = append(pool, ranked[i])
			kept++
		}
	}
	return pool, nil
}

// expandTrackSonic pulls sonic neighbors per seed track with a per-seed
// budget so every seed contributes, ranked by similarity position.
func (e *Engine) expandTrackSonic(ctx context.Context, seedTracks []models.Track) ([]models.Track, error) {
	if len(seedTracks) == 0 {
		return nil, nil
	}
	limitPerSeed := int(math.Ceil(float64(e.pre.MaxTracks)/float64(len(seedTracks)))) + 2
	if limitPerSeed > e.pre.SonicSimilarLimit {
		limitPerSeed = e.pre.SonicSimilarLimit
	}

	var pool []models.Track
	seen := map[string]struct{}{}
	for i := range seedTracks {
		seen[seedTracks[i].RatingKey] = struct{}{}
	}
	for i := range seedTracks {
		similar, err := e.lib.SonicSimilarTracks(ctx, seedTracks[i].RatingKey, e.pre.SonicSimilarLimit)
		if err != nil {
			e.log.Debug().Err(err).Str("track", seedTracks[i].RatingKey).Msg("Sonic similar tracks fetch failed")
			continue
		}
		ranked := e.smartSort(similar, false)
		kept := 0
		for j := range ranked {
			if kept >= limitPerSeed {
				break
			}
			if !e.passesFilter(ctx, &ranked[j], seen) {
				continue
			}
			seen[ranked[j].RatingKey] = struct{}{}
			pool = append(pool, ranked[j])
			kept++
		}
	}
	return pool, nil
}

// expandSonicHistory intersects a raw sonic pool with the history-seed
// identifier set, then backfills from the shuffled raw pool up to
// max_tracks. The intersection comes first so familiar tracks lead and the
// discovery tail follows.
func (e *Engine) expandSonicHistory(ctx context.Context, seeds *seedSet) ([]models.Track, error) {
	var raw []models.Track
	if len(seeds.Tracks) > 0 {
		albumPool, err := e.expandAlbumMix(ctx, seeds.Tracks, false)
		if err != nil {
			return nil, err
		}
		raw = append(raw, albumPool...)
	}
	if len(seeds.Artists) > 0 || len(seeds.Tracks) > 0 {
		artistPool, err := e.expandArtistMix(ctx, seeds, false)
		if err != nil {
			return nil, err
		}
		raw = append(raw, artistPool...)
	}

	historyIDs := make(map[string]struct{}, len(seeds.History))
	for i := range seeds.History {
		historyIDs[seeds.History[i].RatingKey] = struct{}{}
	}

	var pool []models.Track
	chosen := map[string]struct{}{}
	take := func(t models.Track) {
		if _, dup := chosen[t.RatingKey]; dup {
			return
		}
		chosen[t.RatingKey] = struct{}{}
		pool = append(pool, t)
	}

	for i := range raw {
		if _, inHistory := historyIDs[raw[i].RatingKey]; inHistory {
			take(raw[i])
		}
	}
	for i := range seeds.Tracks {
		if _, inHistory := historyIDs[seeds.Tracks[i].RatingKey]; inHistory {
			take(seeds.Tracks[i])
		}
	}

	if len(pool) < e.pre.MaxTracks {
		backfill := append([]models.Track(nil), raw...)
		e.rng.Shuffle(len(backfill), func(i, j int) { backfill[i], backfill[j] = backfill[j], backfill[i] })
		for i := range backfill {
			if len(pool) >= e.pre.MaxTracks {
				break
			}
			if _, dup := chosen[backfill[i].RatingKey]; dup {
				continue
			}
			if !e.passesFilter(ctx, &backfill[i], nil) {
				continue
			}
			take(backfill[i])
		}
	}
	return pool, nil
}

// expandDeepDive resolves seed albums and fills the playlist from their full
// track lists with fair-share selection: an equal base cut per album, then
// backfill rounds across albums that still have candidates. Unplayed tracks
// are preferred over recently played ones within each album.
func (e *Engine) expandDeepDive(ctx context.Context, seedTracks []models.Track) ([]models.Track, error) {
	seedIDs := make(map[string]struct{}, len(seedTracks))
	for i := range seedTracks {
		seedIDs[seedTracks[i].RatingKey] = struct{}{}
	}

	albumSeen := map[string]struct{}{}
	var albumKeys []string
	for i := range seedTracks {
		key := seedTracks[i].AlbumKey
		if key == "" {
			continue
		}
		if _, dup := albumSeen[key]; dup {
			continue
		}
		albumSeen[key] = struct{}{}
		albumKeys = append(albumKeys, key)
	}
	if len(albumKeys) == 0 {
		return nil, nil
	}

	// Per-album candidate lists, unplayed before played.
	lists := make([][]models.Track, 0, len(albumKeys))
	for _, key := range albumKeys {
		tracks, err := e.lib.ListAlbumTracks(ctx, key)
		if err != nil {
			e.log.Debug().Err(err).Str("album", key).Msg("Deep dive album tracks fetch failed")
			continue
		}
		ranked := e.smartSort(tracks, true)
		var unplayed, played []models.Track
		for i := range ranked {
			if _, isSeed := seedIDs[ranked[i].RatingKey]; isSeed {
				continue
			}
			if _, wasPlayed := e.excluded[ranked[i].RatingKey]; wasPlayed {
				played = append(played, ranked[i])
			} else {
				unplayed = append(unplayed, ranked[i])
			}
		}
		if list := append(unplayed, played...); len(list) > 0 {
			lists = append(lists, list)
		}
	}
	if len(lists) == 0 {
		return nil, nil
	}

	var pool []models.Track
	baseTarget := e.pre.MaxTracks / len(lists)
	offsets := make([]int, len(lists))
	for i, list := range lists {
		n := baseTarget
		if n > len(list) {
			n = len(list)
		}
		pool = append(pool, list[:n]...)
		offsets[i] = n
	}

	for len(pool) < e.pre.MaxTracks {
		survivors := 0
		for i, list := range lists {
			if offsets[i] < len(list) {
				survivors++
			}
		}
		if survivors == 0 {
			break
		}
		needed := e.pre.MaxTracks - len(pool)
		share := int(math.Ceil(float64(needed)/float64(survivors))) + 1
		for i, list := range lists {
			for n := 0; n < share && offsets[i] < len(list); n++ {
				pool = append(pool, list[offsets[i]])
				offsets[i]++
			}
		}
	}
	return pool, nil
}

// expandStrictCollection flattens the include_collections contents and
// scores every track on the recency/legacy slider, returning the top
// max_tracks*4 by weight for the final pass to cut down.
func (e *Engine) expandStrictCollection(ctx context.Context) ([]models.Track, error) {
	var tracks []models.Track
	seen := map[string]struct{}{}
	for _, name := range e.pre.IncludeCollections {
		items, err := e.collectionTracks(ctx, name)
		if err != nil {
			e.log.Warn().Err(err).Str("collection", name).Msg("Collection resolve failed")
			continue
		}
		for _, t := range items {
			if _, dup := seen[t.RatingKey]; dup {
				continue
			}
			seen[t.RatingKey] = struct{}{}
			tracks = append(tracks, t)
		}
	}

	slider := e.pre.CollectionSlider
	weights := make([]float64, len(tracks))
	for i := range tracks {
		t := &tracks[i]
		recency := 100 - e.ageDays(t.AddedAt)*(100.0/180.0)
		if recency < 0 {
			recency = 0
		}
		legacy := float64(t.ViewCount)*5 + t.UserRating*10
		if legacy > 100 {
			legacy = 100
		}
		w := recency*slider + legacy*(1-slider)
		// Recency-leaning runs surface never-played additions.
		if slider > 0.5 && t.ViewCount == 0 {
			w += 30
		}
		weights[i] = w
	}

	idx := make([]int, len(tracks))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return weights[idx[a]] > weights[idx[b]] })

	limit := e.pre.MaxTracks * 4
	if limit > len(idx) {
		limit = len(idx)
	}
	pool := make([]models.Track, 0, limit)
	for _, j := range idx[:limit] {
		pool = append(pool, tracks[j])
	}
	return pool, nil
}
