// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package preset

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// uiPreset is the flat pc_* record exported by the configuration UI. Fields
// are pointers so absent keys fall back to engine defaults rather than zero
// values.
type uiPreset struct {
	SeedModeLabel *string `json:"pc_seed_mode_label"`
	MaxTracks     *int    `json:"pc_max_tracks"`

	HistoryLookbackDays *int `json:"pc_history_lookback_days"`
	ExcludePlayedDays   *int `json:"pc_exclude_played_days"`

	SonicSimilarLimit *int     `json:"pc_sonic_similar_limit"`
	HistoricalRatio   *float64 `json:"pc_historical_ratio"`
	ExploitWeight     *float64 `json:"pc_exploit_weight"`

	RecentlyAddedDays   *int     `json:"pc_recently_added_days"`
	RecentlyAddedWeight *float64 `json:"pc_recently_added_weight"`

	MinRatingTrack  *float64 `json:"pc_min_rating_track"`
	MinRatingAlbum  *float64 `json:"pc_min_rating_album"`
	MinRatingArtist *float64 `json:"pc_min_rating_artist"`
	AllowUnrated    *bool    `json:"pc_allow_unrated"`

	MinPlayCount *int `json:"pc_min_play_count"`
	MaxPlayCount *int `json:"pc_max_play_count"`

	MinYear *int `json:"pc_min_year"`
	MaxYear *int `json:"pc_max_year"`

	MinDurationSec *int `json:"pc_min_duration_sec"`
	MaxDurationSec *int `json:"pc_max_duration_sec"`

	MaxTracksPerArtist *int `json:"pc_max_tracks_per_artist"`
	MaxTracksPerAlbum  *int `json:"pc_max_tracks_per_album"`

	HistoryMinRating    *float64 `json:"pc_history_min_rating"`
	HistoryMaxPlayCount *int     `json:"pc_history_max_play_count"`

	IncludeCollections []string `json:"pc_include_collections"`
	ExcludeCollections []string `json:"pc_exclude_collections"`
	ExcludeGenres      []string `json:"pc_exclude_genres"`

	GenreSeeds            []string `json:"pc_genre_seeds"`
	GenreStrict           *bool    `json:"pc_genre_strict"`
	AllowOffGenreFraction *float64 `json:"pc_allow_off_genre_fraction"`

	SeedTrackKeys       Keys     `json:"pc_seed_track_keys"`
	SeedArtistNames     []string `json:"pc_seed_artist_names"`
	SeedPlaylistNames   []string `json:"pc_seed_playlist_names"`
	SeedCollectionNames []string `json:"pc_seed_collection_names"`

	SonicSmoothing *bool   `json:"pc_sonic_smoothing"`
	UseTimePeriods *bool   `json:"pc_use_time_periods"`
	CustomTitle    *string `json:"pc_custom_title"`

	DeepDiveTarget   *int     `json:"pc_deep_dive_target"`
	CollectionSlider *float64 `json:"pc_collection_slider"`

	SeedFallbackMode *string `json:"pc_seed_fallback_mode"`
}

// isUIShape reports whether any top-level key carries the pc_ prefix.
func isUIShape(probe map[string]json.RawMessage) bool {
	for k := range probe {
		if strings.HasPrefix(k, "pc_") {
			return true
		}
	}
	return false
}

// parseUI converts a UI-shape record into an engine-shape document.
func parseUI(data []byte) (*Document, error) {
	var ui uiPreset
	if err := json.Unmarshal(data, &ui); err != nil {
		return nil, fmt.Errorf("parse UI preset: %w", err)
	}

	p := Default()

	if ui.SeedModeLabel != nil {
		mode, err := ModeFromLabel(*ui.SeedModeLabel)
		if err != nil {
			return nil, err
		}
		p.SeedMode = mode
	}

	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setInt(&p.MaxTracks, ui.MaxTracks)
	setInt(&p.HistoryLookbackDays, ui.HistoryLookbackDays)
	setInt(&p.ExcludePlayedDays, ui.ExcludePlayedDays)
	setInt(&p.SonicSimilarLimit, ui.SonicSimilarLimit)
	setFloat(&p.HistoricalRatio, ui.HistoricalRatio)
	setFloat(&p.ExploitWeight, ui.ExploitWeight)
	setInt(&p.RecentlyAddedDays, ui.RecentlyAddedDays)
	setFloat(&p.RecentlyAddedWeight, ui.RecentlyAddedWeight)
	setFloat(&p.MinRating.Track, ui.MinRatingTrack)
	setFloat(&p.MinRating.Album, ui.MinRatingAlbum)
	setFloat(&p.MinRating.Artist, ui.MinRatingArtist)
	setBool(&p.AllowUnrated, ui.AllowUnrated)
	setInt(&p.MinPlayCount, ui.MinPlayCount)
	setInt(&p.MaxPlayCount, ui.MaxPlayCount)
	setInt(&p.MinYear, ui.MinYear)
	setInt(&p.MaxYear, ui.MaxYear)
	setInt(&p.MinDurationSec, ui.MinDurationSec)
	setInt(&p.MaxDurationSec, ui.MaxDurationSec)
	setInt(&p.MaxTracksPerArtist, ui.MaxTracksPerArtist)
	setInt(&p.MaxTracksPerAlbum, ui.MaxTracksPerAlbum)
	setFloat(&p.HistoryMinRating, ui.HistoryMinRating)
	setInt(&p.HistoryMaxPlayCount, ui.HistoryMaxPlayCount)
	setBool(&p.GenreStrict, ui.GenreStrict)
	setFloat(&p.AllowOffGenreFraction, ui.AllowOffGenreFraction)
	setBool(&p.SonicSmoothing, ui.SonicSmoothing)
	setBool(&p.UseTimePeriods, ui.UseTimePeriods)
	setInt(&p.DeepDiveTarget, ui.DeepDiveTarget)
	setFloat(&p.CollectionSlider, ui.CollectionSlider)

	if ui.CustomTitle != nil {
		p.CustomTitle = *ui.CustomTitle
	}
	if ui.SeedFallbackMode != nil {
		p.SeedFallbackMode = SeedMode(*ui.SeedFallbackMode)
	}

	p.IncludeCollections = ui.IncludeCollections
	p.ExcludeCollections = ui.ExcludeCollections
	p.ExcludeGenres = ui.ExcludeGenres
	p.GenreSeeds = ui.GenreSeeds
	p.SeedTrackKeys = ui.SeedTrackKeys
	p.SeedArtistNames = ui.SeedArtistNames
	p.SeedPlaylistNames = ui.SeedPlaylistNames
	p.SeedCollectionNames = ui.SeedCollectionNames

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Document{Playlist: p}, nil
}
