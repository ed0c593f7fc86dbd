// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package plex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tomtom215/aria/internal/models"
)

// ListPlaylists lists audio playlists on the server.
//
// Endpoint: GET /playlists?playlistType=audio
func (c *Client) ListPlaylists(ctx context.Context) ([]models.PlexPlaylist, error) {
	query := url.Values{}
	query.Add("playlistType", "audio")
	var resp models.PlexPlaylistsResponse
	if err := c.doJSONRequestWithQuery(ctx, "playlists", "/playlists", query, &resp); err != nil {
		return nil, err
	}
	return resp.MediaContainer.Metadata, nil
}

// FindPlaylistByName resolves a playlist by exact title.
func (c *Client) FindPlaylistByName(ctx context.Context, title string) (*models.PlexPlaylist, error) {
	playlists, err := c.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		if playlists[i].Title == title {
			return &playlists[i], nil
		}
	}
	return nil, fmt.Errorf("playlist %q: %w", title, ErrNotFound)
}

// PlaylistItems lists the tracks of a playlist.
//
// Endpoint: GET /playlists/{key}/items
func (c *Client) PlaylistItems(ctx context.Context, playlistKey string) ([]models.Track, error) {
	var resp models.PlexMetadataResponse
	if err := c.doJSONRequest(ctx, "playlist_items", "/playlists/"+playlistKey+"/items", &resp); err != nil {
		return nil, err
	}
	return tracksFromContainer(&resp.MediaContainer), nil
}

// CreatePlaylist creates an audio playlist containing the given tracks and
// returns its header.
//
// Endpoint: POST /playlists?type=audio&smart=0&title={t}&uri={server uri}
func (c *Client) CreatePlaylist(ctx context.Context, title string, trackKeys []string) (*models.PlexPlaylist, error) {
	query := url.Values{}
	query.Add("type", "audio")
	query.Add("smart", "0")
	query.Add("title", title)
	query.Add("uri", c.libraryURI(trackKeys))

	var resp models.PlexPlaylistsResponse
	if err := c.doRequest(ctx, requestConfig{
		method:   http.MethodPost,
		endpoint: "playlist_create",
		path:     "/playlists",
		query:    query,
	}, &resp); err != nil {
		return nil, err
	}
	if len(resp.MediaContainer.Metadata) == 0 {
		return nil, fmt.Errorf("create playlist %q: empty response", title)
	}
	return &resp.MediaContainer.Metadata[0], nil
}

// ClearPlaylistItems removes every item from a playlist, keeping the
// playlist itself (and any external references to it) intact.
//
// Endpoint: DELETE /playlists/{key}/items
func (c *Client) ClearPlaylistItems(ctx context.Context, playlistKey string) error {
	return c.doRequest(ctx, requestConfig{
		method:   http.MethodDelete,
		endpoint: "playlist_clear",
		path:     "/playlists/" + playlistKey + "/items",
	}, nil)
}

// AddPlaylistItems appends tracks to an existing playlist.
//
// Endpoint: PUT /playlists/{key}/items?uri={server uri}
func (c *Client) AddPlaylistItems(ctx context.Context, playlistKey string, trackKeys []string) error {
	query := url.Values{}
	query.Add("uri", c.libraryURI(trackKeys))
	return c.doRequest(ctx, requestConfig{
		method:   http.MethodPut,
		endpoint: "playlist_add",
		path:     "/playlists/" + playlistKey + "/items",
		query:    query,
	}, nil)
}

// SetPlaylistSummary updates a playlist's summary text.
//
// Endpoint: PUT /playlists/{key}?summary={s}
func (c *Client) SetPlaylistSummary(ctx context.Context, playlistKey, summary string) error {
	query := url.Values{}
	query.Add("summary", summary)
	return c.doRequest(ctx, requestConfig{
		method:   http.MethodPut,
		endpoint: "playlist_summary",
		path:     "/playlists/" + playlistKey,
		query:    query,
	}, nil)
}

// UploadPlaylistPoster uploads PNG bytes as the playlist poster.
//
// Endpoint: POST /playlists/{key}/posters
func (c *Client) UploadPlaylistPoster(ctx context.Context, playlistKey string, png []byte) error {
	return c.doRequest(ctx, requestConfig{
		method:   http.MethodPost,
		endpoint: "playlist_poster",
		path:     "/playlists/" + playlistKey + "/posters",
		body:     png,
		bodyType: "image/png",
	}, nil)
}

// libraryURI builds the server://.../library/metadata/{k1,k2,...} reference
// used by playlist mutation endpoints. Identity() must have run first to
// learn the machine identifier.
func (c *Client) libraryURI(trackKeys []string) string {
	return fmt.Sprintf("server://%s/com.plexapp.plugins.library/library/metadata/%s",
		c.machineID, strings.Join(trackKeys, ","))
}
