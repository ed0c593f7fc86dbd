// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package plex

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tomtom215/aria/internal/models"
)

// Plex library item type codes used in section queries.
const (
	typeArtist = "8"
	typeAlbum  = "9"
	typeTrack  = "10"
)

// FetchItem retrieves one library item by rating key as a tagged union.
//
// Endpoint: GET /library/metadata/{ratingKey}
func (c *Client) FetchItem(ctx context.Context, ratingKey string) (*Item, error) {
	var resp models.PlexMetadataResponse
	if err := c.doJSONRequest(ctx, "metadata", "/library/metadata/"+ratingKey, &resp); err != nil {
		return nil, err
	}
	if len(resp.MediaContainer.Metadata) == 0 {
		return nil, fmt.Errorf("metadata %s: %w", ratingKey, ErrNotFound)
	}
	return itemFromMetadata(&resp.MediaContainer.Metadata[0])
}

// FetchTrack retrieves a track by rating key, failing if the key resolves to
// a different entity type.
func (c *Client) FetchTrack(ctx context.Context, ratingKey string) (*models.Track, error) {
	item, err := c.FetchItem(ctx, ratingKey)
	if err != nil {
		return nil, err
	}
	if item.Kind != models.KindTrack {
		return nil, fmt.Errorf("item %s is %s, not a track", ratingKey, item.Kind)
	}
	return item.Track, nil
}

// FetchAlbum retrieves an album by rating key.
func (c *Client) FetchAlbum(ctx context.Context, ratingKey string) (*models.Album, error) {
	item, err := c.FetchItem(ctx, ratingKey)
	if err != nil {
		return nil, err
	}
	if item.Kind != models.KindAlbum {
		return nil, fmt.Errorf("item %s is %s, not an album", ratingKey, item.Kind)
	}
	return item.Album, nil
}

// FetchArtist retrieves an artist by rating key.
func (c *Client) FetchArtist(ctx context.Context, ratingKey string) (*models.Artist, error) {
	item, err := c.FetchItem(ctx, ratingKey)
	if err != nil {
		return nil, err
	}
	if item.Kind != models.KindArtist {
		return nil, fmt.Errorf("item %s is %s, not an artist", ratingKey, item.Kind)
	}
	return item.Artist, nil
}

// ListArtists lists all artists in the music section.
//
// Endpoint: GET /library/sections/{key}/all?type=8
func (c *Client) ListArtists(ctx context.Context) ([]models.Artist, error) {
	query := url.Values{}
	query.Add("type", typeArtist)
	var resp models.PlexMetadataResponse
	if err := c.doJSONRequestWithQuery(ctx, "section_all", "/library/sections/"+c.sectionKey+"/all", query, &resp); err != nil {
		return nil, err
	}
	artists := make([]models.Artist, 0, len(resp.MediaContainer.Metadata))
	for i := range resp.MediaContainer.Metadata {
		artists = append(artists, models.ArtistFromMetadata(&resp.MediaContainer.Metadata[i]))
	}
	return artists, nil
}

// ListAlbums lists an artist's albums.
//
// Endpoint: GET /library/metadata/{artistKey}/children
func (c *Client) ListAlbums(ctx context.Context, artistKey string) ([]models.Album, error) {
	var resp models.PlexMetadataResponse
	if err := c.doJSONRequest(ctx, "children", "/library/metadata/"+artistKey+"/children", &resp); err != nil {
		return nil, err
	}
	albums := make([]models.Album, 0, len(resp.MediaContainer.Metadata))
	for i := range resp.MediaContainer.Metadata {
		albums = append(albums, models.AlbumFromMetadata(&resp.MediaContainer.Metadata[i]))
	}
	return albums, nil
}

// ListAlbumTracks lists an album's tracks.
//
// Endpoint: GET /library/metadata/{albumKey}/children
func (c *Client) ListAlbumTracks(ctx context.Context, albumKey string) ([]models.Track, error) {
	var resp models.PlexMetadataResponse
	if err := c.doJSONRequest(ctx, "children", "/library/metadata/"+albumKey+"/children", &resp); err != nil {
		return nil, err
	}
	return tracksFromContainer(&resp.MediaContainer), nil
}

// ListArtistTracks lists every track under an artist.
//
// Endpoint: GET /library/metadata/{artistKey}/allLeaves
func (c *Client) ListArtistTracks(ctx context.Context, artistKey string) ([]models.Track, error) {
	var resp models.PlexMetadataResponse
	if err := c.doJSONRequest(ctx, "all_leaves", "/library/metadata/"+artistKey+"/allLeaves", &resp); err != nil {
		return nil, err
	}
	return tracksFromContainer(&resp.MediaContainer), nil
}

// SearchTracksByGenre lists section tracks carrying the genre tag.
//
// Endpoint: GET /library/sections/{key}/all?type=10&genre.tag={genre}
func (c *Client) SearchTracksByGenre(ctx context.Context, genre string, limit int) ([]models.Track, error) {
	query := url.Values{}
	query.Add("type", typeTrack)
	query.Add("genre.tag", genre)
	if limit > 0 {
		query.Add("X-Plex-Container-Size", fmt.Sprintf("%d", limit))
	}
	var resp models.PlexMetadataResponse
	if err := c.doJSONRequestWithQuery(ctx, "genre_search", "/library/sections/"+c.sectionKey+"/all", query, &resp); err != nil {
		return nil, err
	}
	return tracksFromContainer(&resp.MediaContainer), nil
}

// SearchAlbumsByGenre lists section albums carrying the genre tag.
//
// Endpoint: GET /library/sections/{key}/all?type=9&genre.tag={genre}
func (c *Client) SearchAlbumsByGenre(ctx context.Context, genre string, limit int) ([]models.Album, error) {
	query := url.Values{}
	query.Add("type", typeAlbum)
	query.Add("genre.tag", genre)
	if limit > 0 {
		query.Add("X-Plex-Container-Size", fmt.Sprintf("%d", limit))
	}
	var resp models.PlexMetadataResponse
	if err := c.doJSONRequestWithQuery(ctx, "genre_search", "/library/sections/"+c.sectionKey+"/all", query, &resp); err != nil {
		return nil, err
	}
	albums := make([]models.Album, 0, len(resp.MediaContainer.Metadata))
	for i := range resp.MediaContainer.Metadata {
		albums = append(albums, models.AlbumFromMetadata(&resp.MediaContainer.Metadata[i]))
	}
	return albums, nil
}

// SearchArtistsByName lists section artists matching a title.
//
// Endpoint: GET /library/sections/{key}/all?type=8&title={name}
func (c *Client) SearchArtistsByName(ctx context.Context, name string) ([]models.Artist, error) {
	query := url.Values{}
	query.Add("type", typeArtist)
	query.Add("title", name)
	var resp models.PlexMetadataResponse
	if err := c.doJSONRequestWithQuery(ctx, "artist_search", "/library/sections/"+c.sectionKey+"/all", query, &resp); err != nil {
		return nil, err
	}
	artists := make([]models.Artist, 0, len(resp.MediaContainer.Metadata))
	for i := range resp.MediaContainer.Metadata {
		artists = append(artists, models.ArtistFromMetadata(&resp.MediaContainer.Metadata[i]))
	}
	return artists, nil
}

// FindCollection resolves a collection by title within the music section.
//
// Endpoint: GET /library/sections/{key}/collections
func (c *Client) FindCollection(ctx context.Context, title string) (*models.PlexCollection, error) {
	var resp models.PlexCollectionsResponse
	if err := c.doJSONRequest(ctx, "collections", "/library/sections/"+c.sectionKey+"/collections", &resp); err != nil {
		return nil, err
	}
	for i := range resp.MediaContainer.Metadata {
		if resp.MediaContainer.Metadata[i].Title == title {
			return &resp.MediaContainer.Metadata[i], nil
		}
	}
	return nil, fmt.Errorf("collection %q: %w", title, ErrNotFound)
}

// CollectionItems lists a collection's members as tagged unions. Members
// with unsupported types are skipped.
//
// Endpoint: GET /library/collections/{key}/children
func (c *Client) CollectionItems(ctx context.Context, collectionKey string) ([]*Item, error) {
	var resp models.PlexMetadataResponse
	if err := c.doJSONRequest(ctx, "collection_items", "/library/collections/"+collectionKey+"/children", &resp); err != nil {
		return nil, err
	}
	items := make([]*Item, 0, len(resp.MediaContainer.Metadata))
	for i := range resp.MediaContainer.Metadata {
		item, err := itemFromMetadata(&resp.MediaContainer.Metadata[i])
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// tracksFromContainer converts container metadata to tracks, skipping
// non-track entries.
func tracksFromContainer(mc *models.PlexMetadataContainer) []models.Track {
	tracks := make([]models.Track, 0, len(mc.Metadata))
	for i := range mc.Metadata {
		m := &mc.Metadata[i]
		if m.Type != "" && m.Type != "track" {
			continue
		}
		tracks = append(tracks, models.TrackFromMetadata(m))
	}
	return tracks
}
