// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package plex

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/tomtom215/aria/internal/models"
)

// Sonic-similarity lookups over the server's built-in sonic analysis graph.
// Plex exposes two surfaces for tracks: the newer "related/sonic" hub and
// the older "nearest" endpoint. The track lookup tries the hub first and
// falls back; album and artist lookups only have "nearest".

// SonicSimilarTracks fetches the sonically nearest tracks for a seed track.
//
// Endpoints: GET /library/metadata/{key}/related/sonic?limit={n}
//
//	GET /library/metadata/{key}/nearest?context=sonicallySimilar&limit={n}
func (c *Client) SonicSimilarTracks(ctx context.Context, trackKey string, limit int) ([]models.Track, error) {
	query := url.Values{}
	if limit > 0 {
		query.Add("limit", fmt.Sprintf("%d", limit))
	}

	var resp models.PlexMetadataResponse
	err := c.doJSONRequestWithQuery(ctx, "sonic_tracks", "/library/metadata/"+trackKey+"/related/sonic", query, &resp)
	if err == nil && len(resp.MediaContainer.Metadata) > 0 {
		return tracksFromContainer(&resp.MediaContainer), nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		// Transport failure: the fallback would hit the same wall.
		return nil, err
	}

	query.Set("context", "sonicallySimilar")
	resp = models.PlexMetadataResponse{}
	if err := c.doJSONRequestWithQuery(ctx, "sonic_tracks", "/library/metadata/"+trackKey+"/nearest", query, &resp); err != nil {
		return nil, err
	}
	return tracksFromContainer(&resp.MediaContainer), nil
}

// SonicSimilarAlbums fetches the sonically nearest albums for a seed album.
//
// Endpoint: GET /library/metadata/{key}/nearest?limit={n}
func (c *Client) SonicSimilarAlbums(ctx context.Context, albumKey string, limit int) ([]models.Album, error) {
	query := url.Values{}
	if limit > 0 {
		query.Add("limit", fmt.Sprintf("%d", limit))
	}
	var resp models.PlexMetadataResponse
	if err := c.doJSONRequestWithQuery(ctx, "sonic_albums", "/library/metadata/"+albumKey+"/nearest", query, &resp); err != nil {
		return nil, err
	}
	albums := make([]models.Album, 0, len(resp.MediaContainer.Metadata))
	for i := range resp.MediaContainer.Metadata {
		m := &resp.MediaContainer.Metadata[i]
		if m.Type != "" && m.Type != "album" {
			continue
		}
		albums = append(albums, models.AlbumFromMetadata(m))
	}
	return albums, nil
}

// SonicSimilarArtists fetches the sonically nearest artists for a seed artist.
//
// Endpoint: GET /library/metadata/{key}/nearest?limit={n}
func (c *Client) SonicSimilarArtists(ctx context.Context, artistKey string, limit int) ([]models.Artist, error) {
	query := url.Values{}
	if limit > 0 {
		query.Add("limit", fmt.Sprintf("%d", limit))
	}
	var resp models.PlexMetadataResponse
	if err := c.doJSONRequestWithQuery(ctx, "sonic_artists", "/library/metadata/"+artistKey+"/nearest", query, &resp); err != nil {
		return nil, err
	}
	artists := make([]models.Artist, 0, len(resp.MediaContainer.Metadata))
	for i := range resp.MediaContainer.Metadata {
		m := &resp.MediaContainer.Metadata[i]
		if m.Type != "" && m.Type != "artist" {
			continue
		}
		artists = append(artists, models.ArtistFromMetadata(m))
	}
	return artists, nil
}
