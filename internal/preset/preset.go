// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

// Package preset defines the declarative playlist configuration record, the
// preset store, and the UI-shape conversion.
//
// Presets arrive in two shapes (both produced by the configuration UI's
// exports):
//
//   - Engine shape: {"plex": {...optional overrides...}, "playlist": {...}}
//   - UI shape: a flat object of pc_* keys with a seed-mode label
//
// Both normalize into the Preset record consumed by internal/engine.
package preset

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// Keys is a list of rating keys; JSON may carry them as strings or numbers.
type Keys []string

// UnmarshalJSON accepts both ["1001"] and [1001].
func (k *Keys) UnmarshalJSON(b []byte) error {
	var raw []interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			out = append(out, val)
		case float64:
			out = append(out, strconv.FormatInt(int64(val), 10))
		default:
			return fmt.Errorf("seed key must be string or number, got %T", v)
		}
	}
	*k = out
	return nil
}

// MinRating holds per-entity rating gates (0 disables a gate).
type MinRating struct {
	Track  float64 `json:"track" validate:"gte=0,lte=10"`
	Album  float64 `json:"album" validate:"gte=0,lte=10"`
	Artist float64 `json:"artist" validate:"gte=0,lte=10"`
}

// Preset is the declarative playlist configuration.
type Preset struct {
	SeedMode  SeedMode `json:"seed_mode"`
	MaxTracks int      `json:"max_tracks" validate:"gte=5"`

	HistoryLookbackDays int `json:"history_lookback_days" validate:"gte=0"`
	ExcludePlayedDays   int `json:"exclude_played_days" validate:"gte=0"`

	SonicSimilarLimit int     `json:"sonic_similar_limit" validate:"gte=1"`
	HistoricalRatio   float64 `json:"historical_ratio" validate:"gte=0,lte=1"`
	ExploitWeight     float64 `json:"exploit_weight" validate:"gte=0,lte=1"`

	RecentlyAddedDays   int     `json:"recently_added_days" validate:"gte=0"`
	RecentlyAddedWeight float64 `json:"recently_added_weight" validate:"gte=0"`

	MinRating    MinRating `json:"min_rating"`
	AllowUnrated bool      `json:"allow_unrated"`

	// -1 disables a play-count bound.
	MinPlayCount int `json:"min_play_count" validate:"gte=-1"`
	MaxPlayCount int `json:"max_play_count" validate:"gte=-1"`

	MinYear int `json:"min_year" validate:"gte=0"`
	MaxYear int `json:"max_year" validate:"gte=0"`

	MinDurationSec int `json:"min_duration_sec" validate:"gte=0"`
	MaxDurationSec int `json:"max_duration_sec" validate:"gte=0"`

	MaxTracksPerArtist int `json:"max_tracks_per_artist" validate:"gte=0"`
	MaxTracksPerAlbum  int `json:"max_tracks_per_album" validate:"gte=0"`

	HistoryMinRating    float64 `json:"history_min_rating" validate:"gte=0,lte=10"`
	HistoryMaxPlayCount int     `json:"history_max_play_count" validate:"gte=-1"`

	IncludeCollections []string `json:"include_collections"`
	ExcludeCollections []string `json:"exclude_collections"`
	ExcludeGenres      []string `json:"exclude_genres"`

	GenreSeeds            []string `json:"genre_seeds"`
	GenreStrict           bool     `json:"genre_strict"`
	AllowOffGenreFraction float64  `json:"allow_off_genre_fraction" validate:"gte=0,lte=1"`

	SeedTrackKeys       Keys     `json:"seed_track_keys"`
	SeedArtistNames     []string `json:"seed_artist_names"`
	SeedPlaylistNames   []string `json:"seed_playlist_names"`
	SeedCollectionNames []string `json:"seed_collection_names"`

	SonicSmoothing bool   `json:"sonic_smoothing"`
	UseTimePeriods bool   `json:"use_time_periods"`
	CustomTitle    string `json:"custom_title"`

	DeepDiveTarget int `json:"deep_dive_target" validate:"gte=0"`

	// Recency/legacy balance for strict_collection scoring.
	CollectionSlider float64 `json:"collection_slider" validate:"gte=0,lte=1"`

	SeedFallbackMode SeedMode `json:"seed_fallback_mode"`
}

// PlexOverride optionally overrides server settings from the app config.
type PlexOverride struct {
	URL          string `json:"url"`
	Token        string `json:"token"`
	MusicLibrary string `json:"music_library"`
}

// Document is the engine-shape preset envelope.
type Document struct {
	Plex     *PlexOverride `json:"plex,omitempty"`
	Playlist Preset        `json:"playlist"`
}

// Default returns a Preset with all defaults applied.
func Default() Preset {
	return Preset{
		SeedMode:              ModeAuto,
		MaxTracks:             50,
		HistoryLookbackDays:   90,
		ExcludePlayedDays:     15,
		SonicSimilarLimit:     20,
		HistoricalRatio:       0.3,
		ExploitWeight:         0.7,
		RecentlyAddedWeight:   1.0,
		AllowUnrated:          true,
		MinPlayCount:          -1,
		MaxPlayCount:          -1,
		HistoryMaxPlayCount:   -1,
		AllowOffGenreFraction: 0.25,
		DeepDiveTarget:        5,
		CollectionSlider:      0.5,
		SeedFallbackMode:      ModeHistory,
	}
}

var validate = validator.New()

// Validate checks field ranges and enum values.
func (p *Preset) Validate() error {
	if !p.SeedMode.Valid() {
		return fmt.Errorf("unknown seed_mode %q", p.SeedMode)
	}
	if p.SeedFallbackMode != ModeHistory && p.SeedFallbackMode != ModeGenre {
		return fmt.Errorf("seed_fallback_mode must be history or genre, got %q", p.SeedFallbackMode)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("preset validation: %w", err)
	}
	return nil
}

// Parse decodes a preset document in either shape, applying defaults for
// absent fields and validating the result.
func Parse(data []byte) (*Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}

	if isUIShape(probe) {
		return parseUI(data)
	}

	doc := Document{Playlist: Default()}
	if _, ok := probe["playlist"]; ok {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse preset: %w", err)
		}
	} else {
		// Bare playlist record without the envelope.
		if err := json.Unmarshal(data, &doc.Playlist); err != nil {
			return nil, fmt.Errorf("parse preset: %w", err)
		}
	}
	if err := doc.Playlist.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
