// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/tomtom215/aria/internal/models"
	"github.com/tomtom215/aria/internal/plex"
)

// fakeLibrary is an in-memory Library for pipeline tests. Relations are
// stored as key lists so tests can wire arbitrary sonic graphs without a
// server. All methods are safe for concurrent use.
type fakeLibrary struct {
	mu sync.Mutex

	tracks  map[string]models.Track
	albums  map[string]models.Album
	artists map[string]models.Artist

	albumTracks  map[string][]string // album key -> track keys
	artistAlbums map[string][]string // artist key -> album keys

	history []models.HistoryEntry

	sonicTracks  map[string][]string
	sonicAlbums  map[string][]string
	sonicArtists map[string][]string

	genreTracks map[string][]string
	genreAlbums map[string][]string

	collections map[string][]string // title -> item keys (any kind)

	playlists       map[string]*fakePlaylist // by rating key
	nextPlaylistKey int

	identityErr error
	sectionErr  error
	publishErr  error
	summaryErr  error
	posterErr   error

	sonicCalls int
}

type fakePlaylist struct {
	meta  models.PlexPlaylist
	items []string
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		tracks:       map[string]models.Track{},
		albums:       map[string]models.Album{},
		artists:      map[string]models.Artist{},
		albumTracks:  map[string][]string{},
		artistAlbums: map[string][]string{},
		sonicTracks:  map[string][]string{},
		sonicAlbums:  map[string][]string{},
		sonicArtists: map[string][]string{},
		genreTracks:  map[string][]string{},
		genreAlbums:  map[string][]string{},
		collections:  map[string][]string{},
		playlists:    map[string]*fakePlaylist{},
	}
}

// addTrack registers a track and wires it into its album and artist.
func (f *fakeLibrary) addTrack(t models.Track) {
	f.tracks[t.RatingKey] = t
	if t.AlbumKey != "" {
		if _, ok := f.albums[t.AlbumKey]; !ok {
			f.albums[t.AlbumKey] = models.Album{
				RatingKey: t.AlbumKey,
				Title:     t.AlbumTitle,
				ArtistKey: t.ArtistKey,
				Year:      t.Year,
			}
		}
		f.albumTracks[t.AlbumKey] = append(f.albumTracks[t.AlbumKey], t.RatingKey)
	}
	if t.ArtistKey != "" {
		if _, ok := f.artists[t.ArtistKey]; !ok {
			f.artists[t.ArtistKey] = models.Artist{RatingKey: t.ArtistKey, Title: t.ArtistName}
		}
		if t.AlbumKey != "" && !contains(f.artistAlbums[t.ArtistKey], t.AlbumKey) {
			f.artistAlbums[t.ArtistKey] = append(f.artistAlbums[t.ArtistKey], t.AlbumKey)
		}
	}
}

func contains(list []string, key string) bool {
	for _, k := range list {
		if k == key {
			return true
		}
	}
	return false
}

// track is shorthand for a playable test track.
func track(key, title, albumKey, artistKey, artistName string) models.Track {
	return models.Track{
		RatingKey:  key,
		Title:      title,
		AlbumKey:   albumKey,
		ArtistKey:  artistKey,
		ArtistName: artistName,
		AlbumTitle: "Album " + albumKey,
		Duration:   3 * time.Minute,
	}
}

func (f *fakeLibrary) Identity(_ context.Context) (*models.PlexIdentityContainer, error) {
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	return &models.PlexIdentityContainer{MachineIdentifier: "fake-machine"}, nil
}

func (f *fakeLibrary) ResolveMusicSection(_ context.Context, _ string) error {
	return f.sectionErr
}

func (f *fakeLibrary) FetchItem(_ context.Context, key string) (*plex.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tracks[key]; ok {
		return &plex.Item{Kind: models.KindTrack, Track: &t}, nil
	}
	if a, ok := f.albums[key]; ok {
		return &plex.Item{Kind: models.KindAlbum, Album: &a}, nil
	}
	if a, ok := f.artists[key]; ok {
		return &plex.Item{Kind: models.KindArtist, Artist: &a}, nil
	}
	return nil, plex.ErrNotFound
}

func (f *fakeLibrary) FetchAlbum(_ context.Context, key string) (*models.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.albums[key]; ok {
		return &a, nil
	}
	return nil, plex.ErrNotFound
}

func (f *fakeLibrary) FetchArtist(_ context.Context, key string) (*models.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.artists[key]; ok {
		return &a, nil
	}
	return nil, plex.ErrNotFound
}

func (f *fakeLibrary) ListAlbums(_ context.Context, artistKey string) ([]models.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Album
	for _, key := range f.artistAlbums[artistKey] {
		out = append(out, f.albums[key])
	}
	return out, nil
}

func (f *fakeLibrary) ListAlbumTracks(_ context.Context, albumKey string) ([]models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trackList(f.albumTracks[albumKey]), nil
}

func (f *fakeLibrary) ListArtistTracks(_ context.Context, artistKey string) ([]models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Track
	for _, albumKey := range f.artistAlbums[artistKey] {
		out = append(out, f.trackList(f.albumTracks[albumKey])...)
	}
	return out, nil
}

// trackList resolves keys to tracks; caller must hold mu.
func (f *fakeLibrary) trackList(keys []string) []models.Track {
	var out []models.Track
	for _, key := range keys {
		if t, ok := f.tracks[key]; ok {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeLibrary) SearchTracksByGenre(_ context.Context, genre string, limit int) ([]models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.trackList(f.genreTracks[genre])
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLibrary) SearchAlbumsByGenre(_ context.Context, genre string, limit int) ([]models.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Album
	for _, key := range f.genreAlbums[genre] {
		out = append(out, f.albums[key])
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLibrary) SearchArtistsByName(_ context.Context, name string) ([]models.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Artist
	for _, a := range f.artists {
		if a.Title == name {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeLibrary) History(_ context.Context, since time.Time) ([]models.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.HistoryEntry
	for _, h := range f.history {
		if h.ViewedAt.After(since) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeLibrary) SonicSimilarTracks(_ context.Context, key string, limit int) ([]models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sonicCalls++
	out := f.trackList(f.sonicTracks[key])
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLibrary) SonicSimilarAlbums(_ context.Context, key string, limit int) ([]models.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Album
	for _, k := range f.sonicAlbums[key] {
		out = append(out, f.albums[k])
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLibrary) SonicSimilarArtists(_ context.Context, key string, limit int) ([]models.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Artist
	for _, k := range f.sonicArtists[key] {
		out = append(out, f.artists[k])
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLibrary) FindCollection(_ context.Context, title string) (*models.PlexCollection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.collections[title]; ok {
		return &models.PlexCollection{RatingKey: "coll-" + title, Title: title}, nil
	}
	return nil, plex.ErrNotFound
}

func (f *fakeLibrary) CollectionItems(_ context.Context, collectionKey string) ([]*plex.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	title := collectionKey[len("coll-"):]
	keys, ok := f.collections[title]
	if !ok {
		return nil, plex.ErrNotFound
	}
	var out []*plex.Item
	for _, key := range keys {
		if t, ok := f.tracks[key]; ok {
			out = append(out, &plex.Item{Kind: models.KindTrack, Track: &t})
			continue
		}
		if a, ok := f.albums[key]; ok {
			out = append(out, &plex.Item{Kind: models.KindAlbum, Album: &a})
			continue
		}
		if a, ok := f.artists[key]; ok {
			out = append(out, &plex.Item{Kind: models.KindArtist, Artist: &a})
		}
	}
	return out, nil
}

func (f *fakeLibrary) FindPlaylistByName(_ context.Context, title string) (*models.PlexPlaylist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pl := range f.playlists {
		if pl.meta.Title == title {
			meta := pl.meta
			return &meta, nil
		}
	}
	return nil, plex.ErrNotFound
}

func (f *fakeLibrary) PlaylistItems(_ context.Context, key string) ([]models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pl, ok := f.playlists[key]
	if !ok {
		return nil, plex.ErrNotFound
	}
	return f.trackList(pl.items), nil
}

func (f *fakeLibrary) CreatePlaylist(_ context.Context, title string, trackKeys []string) (*models.PlexPlaylist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.nextPlaylistKey++
	key := "pl-" + strconv.Itoa(f.nextPlaylistKey)
	f.playlists[key] = &fakePlaylist{
		meta:  models.PlexPlaylist{RatingKey: key, Title: title, PlaylistType: "audio"},
		items: append([]string(nil), trackKeys...),
	}
	meta := f.playlists[key].meta
	return &meta, nil
}

func (f *fakeLibrary) ClearPlaylistItems(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pl, ok := f.playlists[key]
	if !ok {
		return plex.ErrNotFound
	}
	pl.items = nil
	return nil
}

func (f *fakeLibrary) AddPlaylistItems(_ context.Context, key string, trackKeys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	pl, ok := f.playlists[key]
	if !ok {
		return plex.ErrNotFound
	}
	pl.items = append(pl.items, trackKeys...)
	return nil
}

func (f *fakeLibrary) SetPlaylistSummary(_ context.Context, key, summary string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summaryErr != nil {
		return f.summaryErr
	}
	pl, ok := f.playlists[key]
	if !ok {
		return plex.ErrNotFound
	}
	pl.meta.Summary = summary
	return nil
}

func (f *fakeLibrary) UploadPlaylistPoster(_ context.Context, key string, png []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.posterErr != nil {
		return f.posterErr
	}
	if _, ok := f.playlists[key]; !ok {
		return plex.ErrNotFound
	}
	if len(png) == 0 {
		return fmt.Errorf("empty poster")
	}
	return nil
}
