// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package models

// Plex REST API Models
// These structures represent responses from Plex Media Server REST API
// endpoints used by the playlist engine.
// Documentation: https://plexapi.dev and https://www.plexopedia.com/plex-media-server/api/

// PlexMetadataResponse is the envelope returned by metadata, children,
// search, nearest, and history endpoints.
type PlexMetadataResponse struct {
	MediaContainer PlexMetadataContainer `json:"MediaContainer"`
}

// PlexMetadataContainer wraps a metadata array.
type PlexMetadataContainer struct {
	Size     int            `json:"size"`
	Metadata []PlexMetadata `json:"Metadata,omitempty"`
}

// PlexMetadata is a single library item (track, album, or artist) or a
// history record. Field population depends on the item type:
//   - track: ParentRatingKey=album, GrandparentRatingKey=artist,
//     Index=track number, ParentIndex=disc number
//   - album: ParentRatingKey=artist, Year/OriginallyAvailableAt=release
//   - artist: only identity, tags, and rating fields
type PlexMetadata struct {
	RatingKey            string `json:"ratingKey"`
	Key                  string `json:"key,omitempty"`
	ParentRatingKey      string `json:"parentRatingKey,omitempty"`
	GrandparentRatingKey string `json:"grandparentRatingKey,omitempty"`

	Type             string `json:"type"` // "track", "album", "artist"
	Title            string `json:"title"`
	ParentTitle      string `json:"parentTitle,omitempty"`      // album name (for tracks)
	GrandparentTitle string `json:"grandparentTitle,omitempty"` // artist name (for tracks)
	OriginalTitle    string `json:"originalTitle,omitempty"`    // track-level artist override

	Index       int `json:"index,omitempty"`       // track number / album index
	ParentIndex int `json:"parentIndex,omitempty"` // disc number

	Duration              int64   `json:"duration,omitempty"` // milliseconds
	AddedAt               int64   `json:"addedAt,omitempty"`  // Unix timestamp
	UserRating            float64 `json:"userRating,omitempty"`
	ViewCount             int     `json:"viewCount,omitempty"`
	RatingCount           int     `json:"ratingCount,omitempty"`
	Year                  int     `json:"year,omitempty"`
	ParentYear            int     `json:"parentYear,omitempty"`
	OriginallyAvailableAt string  `json:"originallyAvailableAt,omitempty"` // ISO 8601 date

	// History records only.
	ViewedAt         int64 `json:"viewedAt,omitempty"`
	LibrarySectionID int   `json:"librarySectionID,omitempty"`

	Genre      []PlexTag `json:"Genre,omitempty"`
	Collection []PlexTag `json:"Collection,omitempty"`
}

// PlexTag is a genre/collection/mood tag attached to a library item.
type PlexTag struct {
	Tag string `json:"tag"`
}

// PlexIdentityResponse is the envelope for GET /identity.
type PlexIdentityResponse struct {
	MediaContainer PlexIdentityContainer `json:"MediaContainer"`
}

// PlexIdentityContainer carries server identity information.
type PlexIdentityContainer struct {
	MachineIdentifier string `json:"machineIdentifier"`
	Version           string `json:"version"`
	Platform          string `json:"platform"`
}

// PlexLibrarySectionsResponse is the envelope for GET /library/sections.
type PlexLibrarySectionsResponse struct {
	MediaContainer PlexLibrarySectionsContainer `json:"MediaContainer"`
}

// PlexLibrarySectionsContainer wraps the list of library sections.
type PlexLibrarySectionsContainer struct {
	Size      int                  `json:"size"`
	Directory []PlexLibrarySection `json:"Directory,omitempty"`
}

// PlexLibrarySection is a single library section (Movies, Music, ...).
type PlexLibrarySection struct {
	Key   string `json:"key"`
	UUID  string `json:"uuid,omitempty"`
	Title string `json:"title"`
	Type  string `json:"type"` // "artist" for music sections
}

// PlexPlaylistsResponse is the envelope for GET /playlists.
type PlexPlaylistsResponse struct {
	MediaContainer PlexPlaylistsContainer `json:"MediaContainer"`
}

// PlexPlaylistsContainer wraps the playlist list.
type PlexPlaylistsContainer struct {
	Size     int            `json:"size"`
	Metadata []PlexPlaylist `json:"Metadata,omitempty"`
}

// PlexPlaylist is a playlist header.
type PlexPlaylist struct {
	RatingKey    string `json:"ratingKey"`
	Key          string `json:"key,omitempty"`
	Title        string `json:"title"`
	Summary      string `json:"summary,omitempty"`
	Smart        bool   `json:"smart,omitempty"`
	PlaylistType string `json:"playlistType,omitempty"` // "audio"
	LeafCount    int    `json:"leafCount,omitempty"`
}

// PlexCollectionsResponse is the envelope for section collection listings.
type PlexCollectionsResponse struct {
	MediaContainer PlexCollectionsContainer `json:"MediaContainer"`
}

// PlexCollectionsContainer wraps the collection list.
type PlexCollectionsContainer struct {
	Size     int              `json:"size"`
	Metadata []PlexCollection `json:"Metadata,omitempty"`
}

// PlexCollection is a collection header within a section.
type PlexCollection struct {
	RatingKey string `json:"ratingKey"`
	Title     string `json:"title"`
	Subtype   string `json:"subtype,omitempty"` // "artist", "album", "track"
}
