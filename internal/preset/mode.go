// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package preset

import "fmt"

// SeedMode selects the candidate expansion strategy.
type SeedMode string

const (
	ModeAuto             SeedMode = ""
	ModeHistory          SeedMode = "history"
	ModeGenre            SeedMode = "genre"
	ModeSonicAlbumMix    SeedMode = "sonic_album_mix"
	ModeSonicArtistMix   SeedMode = "sonic_artist_mix"
	ModeSonicCombo       SeedMode = "sonic_combo"
	ModeTrackSonic       SeedMode = "track_sonic"
	ModeSonicHistory     SeedMode = "sonic_history"
	ModeSonicJourney     SeedMode = "sonic_journey"
	ModeAlbumEchoes      SeedMode = "album_echoes"
	ModeStrictCollection SeedMode = "strict_collection"
)

// modeTitles maps engine mode values to display titles used in generated
// playlist names. The reverse of modeLabels below.
var modeTitles = map[SeedMode]string{
	ModeAuto:             "Auto",
	ModeHistory:          "Listening History",
	ModeGenre:            "Genre Mix",
	ModeSonicAlbumMix:    "Sonic Album Mix",
	ModeSonicArtistMix:   "Sonic Artist Mix",
	ModeSonicCombo:       "Sonic Combo",
	ModeTrackSonic:       "Sonic Tracks Mix",
	ModeSonicHistory:     "Sonic History",
	ModeSonicJourney:     "Sonic Journey",
	ModeAlbumEchoes:      "Deep Dive",
	ModeStrictCollection: "Strict Collection",
}

// modeLabels translates configuration-UI labels to engine mode values.
var modeLabels = map[string]SeedMode{
	"Auto":                         ModeAuto,
	"Listening History":            ModeHistory,
	"Genre Mix":                    ModeGenre,
	"Sonic Album Mix":              ModeSonicAlbumMix,
	"Sonic Artist Mix":             ModeSonicArtistMix,
	"Sonic Combo":                  ModeSonicCombo,
	"Sonic Tracks Mix":             ModeTrackSonic,
	"Sonic History (Intersection)": ModeSonicHistory,
	"Sonic Journey":                ModeSonicJourney,
	"Deep Dive (Seed Albums)":      ModeAlbumEchoes,
	"Strict Collection":            ModeStrictCollection,
}

// Valid reports whether the mode is a recognized value.
func (m SeedMode) Valid() bool {
	_, ok := modeTitles[m]
	return ok
}

// Title returns the display title used in generated playlist names.
func (m SeedMode) Title() string {
	if t, ok := modeTitles[m]; ok {
		return t
	}
	return string(m)
}

// ModeFromLabel translates a UI mode label to its engine value.
func ModeFromLabel(label string) (SeedMode, error) {
	if m, ok := modeLabels[label]; ok {
		return m, nil
	}
	// Accept engine values directly; some UI exports already carry them.
	if m := SeedMode(label); m.Valid() {
		return m, nil
	}
	return ModeAuto, fmt.Errorf("unknown seed mode label %q", label)
}
