// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

import (
	"regexp"
	"strings"

	"github.com/tomtom215/aria/internal/models"
)

// Fuzzy fingerprints collapse near-duplicate tracks: the live cut, the 2014
// remaster, and the deluxe-edition copy of the same song all reduce to one
// clean(artist)_clean(title) key, deduped first-seen-wins.

var (
	// Bracketed annotations that mark alternate editions of the same song.
	editionRe = regexp.MustCompile(`(?i)[(\[][^)\]]*(live|remaster|deluxe|feat)[^)\]]*[)\]]`)
	// Trailing " - ..." subtitles ("Song - 2011 Remaster", "Song - Live").
	subtitleRe = regexp.MustCompile(`\s+-\s+[^-]*$`)
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9 ]+`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// cleanName normalizes an artist or title for fuzzy matching.
func cleanName(s string) string {
	s = strings.ToLower(s)
	s = editionRe.ReplaceAllString(s, "")
	s = subtitleRe.ReplaceAllString(s, "")
	s = nonAlnumRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Fingerprint returns the fuzzy-dedup key for a track.
func Fingerprint(t *models.Track) string {
	return cleanName(t.ArtistName) + "_" + cleanName(t.Title)
}
