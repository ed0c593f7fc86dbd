// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package models

import (
	"strconv"
	"time"
)

// Domain entities used by the generation pipeline. One deserializer per
// entity converts the dynamic Plex wire shape into a typed record with
// explicit fallbacks for optional fields; the pipeline never touches raw
// PlexMetadata after this boundary.

// ItemKind discriminates library item types.
type ItemKind string

const (
	KindTrack  ItemKind = "track"
	KindAlbum  ItemKind = "album"
	KindArtist ItemKind = "artist"
)

// Track is a single music track. RatingKey is unique per Plex server.
// UserRating is 0 when the track is unrated (Plex omits the field; rated
// values are 1-10).
type Track struct {
	RatingKey   string
	Title       string
	AlbumKey    string // parent album rating key
	ArtistKey   string // grandparent artist rating key
	ArtistName  string
	AlbumTitle  string
	Index       int
	DiscIndex   int
	Duration    time.Duration
	AddedAt     time.Time
	UserRating  float64
	ViewCount   int
	RatingCount int // popularity proxy
	Year        int
	Genres      []string
	Collections []string
}

// Album is a music album. Year derives from the explicit year field or the
// original release date, in that order.
type Album struct {
	RatingKey   string
	Title       string
	ArtistKey   string
	Year        int
	Genres      []string
	Collections []string
	UserRating  float64
}

// Artist is a music artist.
type Artist struct {
	RatingKey   string
	Title       string
	Genres      []string
	Collections []string
	UserRating  float64
}

// HistoryEntry is one playback-history record from the music section.
type HistoryEntry struct {
	RatingKey string
	ViewedAt  time.Time
}

// tagNames flattens a Plex tag list to its names.
func tagNames(tags []PlexTag) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Tag)
	}
	return names
}

// yearOf derives a release year from the explicit field or the ISO release
// date, returning 0 when neither is usable.
func yearOf(m *PlexMetadata) int {
	if m.Year > 0 {
		return m.Year
	}
	if len(m.OriginallyAvailableAt) >= 4 {
		if y, err := strconv.Atoi(m.OriginallyAvailableAt[:4]); err == nil {
			return y
		}
	}
	return 0
}

// TrackFromMetadata converts a Plex wire record into a Track.
func TrackFromMetadata(m *PlexMetadata) Track {
	artist := m.GrandparentTitle
	if m.OriginalTitle != "" {
		// Track-level artist override (compilations, features).
		artist = m.OriginalTitle
	}
	var added time.Time
	if m.AddedAt > 0 {
		added = time.Unix(m.AddedAt, 0)
	}
	return Track{
		RatingKey:   m.RatingKey,
		Title:       m.Title,
		AlbumKey:    m.ParentRatingKey,
		ArtistKey:   m.GrandparentRatingKey,
		ArtistName:  artist,
		AlbumTitle:  m.ParentTitle,
		Index:       m.Index,
		DiscIndex:   m.ParentIndex,
		Duration:    time.Duration(m.Duration) * time.Millisecond,
		AddedAt:     added,
		UserRating:  m.UserRating,
		ViewCount:   m.ViewCount,
		RatingCount: m.RatingCount,
		Year:        yearOf(m),
		Genres:      tagNames(m.Genre),
		Collections: tagNames(m.Collection),
	}
}

// AlbumFromMetadata converts a Plex wire record into an Album.
func AlbumFromMetadata(m *PlexMetadata) Album {
	return Album{
		RatingKey:   m.RatingKey,
		Title:       m.Title,
		ArtistKey:   m.ParentRatingKey,
		Year:        yearOf(m),
		Genres:      tagNames(m.Genre),
		Collections: tagNames(m.Collection),
		UserRating:  m.UserRating,
	}
}

// ArtistFromMetadata converts a Plex wire record into an Artist.
func ArtistFromMetadata(m *PlexMetadata) Artist {
	return Artist{
		RatingKey:   m.RatingKey,
		Title:       m.Title,
		Genres:      tagNames(m.Genre),
		Collections: tagNames(m.Collection),
		UserRating:  m.UserRating,
	}
}

// Rated reports whether the track carries a user rating.
func (t *Track) Rated() bool { return t.UserRating > 0 }

// Rated reports whether the album carries a user rating.
func (a *Album) Rated() bool { return a.UserRating > 0 }

// Rated reports whether the artist carries a user rating.
func (a *Artist) Rated() bool { return a.UserRating > 0 }
