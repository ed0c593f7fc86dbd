// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

/*
Package plex implements the Library Client: typed access to the Plex Media
Server REST API scoped to one music section.

Client features:
  - X-Plex-Token authentication on every request
  - Per-call timeout (config client.timeout, default 60s)
  - Global soft rate cap via golang.org/x/time/rate
  - HTTP 429 handling with bounded exponential backoff (Retry-After honored)
  - Optional circuit breaker (sony/gobreaker) around the HTTP transport
  - No automatic retry of failed calls; callers decide whether missing data
    is fatal

File layout:
  - client.go:    Client struct, construction, identity, section resolution
  - request.go:   request building, rate limiting, JSON decoding
  - library.go:   metadata fetch, listings, genre/collection search
  - history.go:   playback history scoped to the music section
  - sonic.go:     sonic-similarity lookups (tracks, albums, artists)
  - playlists.go: playlist enumeration, create/replace, summary, poster
*/
package plex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/aria/internal/config"
	"github.com/tomtom215/aria/internal/models"
)

// ErrNotFound reports a 404 from the Plex API. Callers treat it as a
// per-item skip, never as a run-fatal condition.
var ErrNotFound = errors.New("plex: not found")

// Client handles communication with the Plex Media Server API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *transportBreaker
	timeout    time.Duration

	// sectionKey is set by ResolveMusicSection and scopes library calls.
	sectionKey string
	machineID  string
}

// NewClient creates an authenticated Plex client.
func NewClient(plexCfg config.PlexConfig, clientCfg config.ClientConfig) *Client {
	c := &Client{
		baseURL: plexCfg.URL,
		token:   plexCfg.Token,
		timeout: clientCfg.Timeout,
		httpClient: &http.Client{
			Timeout: clientCfg.Timeout,
		},
	}
	if clientCfg.RequestsPerSecond > 0 {
		burst := clientCfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(clientCfg.RequestsPerSecond), burst)
	}
	if clientCfg.BreakerEnabled {
		c.breaker = newTransportBreaker("plex-api")
	}
	return c
}

// Identity fetches the server identity. Used as the connectivity probe at
// run start and for the machine identifier needed by playlist creation.
func (c *Client) Identity(ctx context.Context) (*models.PlexIdentityContainer, error) {
	var resp models.PlexIdentityResponse
	if err := c.doJSONRequest(ctx, "identity", "/identity", &resp); err != nil {
		return nil, err
	}
	c.machineID = resp.MediaContainer.MachineIdentifier
	return &resp.MediaContainer, nil
}

// ResolveMusicSection locates the music library section by title and
// remembers its key for subsequent library calls.
func (c *Client) ResolveMusicSection(ctx context.Context, title string) error {
	var resp models.PlexLibrarySectionsResponse
	if err := c.doJSONRequest(ctx, "sections", "/library/sections", &resp); err != nil {
		return err
	}
	for _, dir := range resp.MediaContainer.Directory {
		if dir.Type == "artist" && dir.Title == title {
			c.sectionKey = dir.Key
			return nil
		}
	}
	return fmt.Errorf("music library section %q not found", title)
}

// SectionKey returns the resolved music section key ("" before resolution).
func (c *Client) SectionKey() string { return c.sectionKey }

// Item is a tagged union over the three library entity types.
type Item struct {
	Kind   models.ItemKind
	Track  *models.Track
	Album  *models.Album
	Artist *models.Artist
}

// itemFromMetadata converts a wire record into the tagged union.
func itemFromMetadata(m *models.PlexMetadata) (*Item, error) {
	switch m.Type {
	case "track":
		t := models.TrackFromMetadata(m)
		return &Item{Kind: models.KindTrack, Track: &t}, nil
	case "album":
		a := models.AlbumFromMetadata(m)
		return &Item{Kind: models.KindAlbum, Album: &a}, nil
	case "artist":
		a := models.ArtistFromMetadata(m)
		return &Item{Kind: models.KindArtist, Artist: &a}, nil
	default:
		return nil, fmt.Errorf("unsupported item type %q", m.Type)
	}
}
