// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/aria/internal/cover"
	"github.com/tomtom215/aria/internal/plex"
	"github.com/tomtom215/aria/internal/preset"
)

// playlistTitle is the custom title when set, otherwise the generated
// "Playlist Creator • {mode} ({yy-mm-dd})" form.
func (e *Engine) playlistTitle(mode preset.SeedMode) string {
	if e.pre.CustomTitle != "" {
		return e.pre.CustomTitle
	}
	return fmt.Sprintf("Playlist Creator • %s (%s)", mode.Title(), e.now().Format("06-01-02"))
}

// publish writes the final selection to the server. An existing playlist
// with the same title is replaced in place (clear then re-add) so external
// references to it survive; otherwise a new playlist is created. Every step
// here, summary and poster included, is a publish failure when it errors.
func (e *Engine) publish(ctx context.Context, res *Result) (string, error) {
	keys := make([]string, len(res.Tracks))
	for i := range res.Tracks {
		keys[i] = res.Tracks[i].RatingKey
	}

	var playlistKey string
	existing, err := e.lib.FindPlaylistByName(ctx, res.Title)
	switch {
	case err == nil:
		playlistKey = existing.RatingKey
		e.log.Info().Str("title", res.Title).Str("key", playlistKey).Msg("Replacing existing playlist")
		if err := e.lib.ClearPlaylistItems(ctx, playlistKey); err != nil {
			return "", fmt.Errorf("clear playlist: %w", err)
		}
		if err := e.lib.AddPlaylistItems(ctx, playlistKey, keys); err != nil {
			return "", fmt.Errorf("add playlist items: %w", err)
		}
	case errors.Is(err, plex.ErrNotFound):
		e.log.Info().Str("title", res.Title).Int("tracks", len(keys)).Msg("Creating playlist")
		created, err := e.lib.CreatePlaylist(ctx, res.Title, keys)
		if err != nil {
			return "", fmt.Errorf("create playlist: %w", err)
		}
		playlistKey = created.RatingKey
	default:
		return "", fmt.Errorf("look up playlist: %w", err)
	}

	summary := fmt.Sprintf("Generated %s. Mode: %s. Tracks: %d.",
		e.now().Format("2006-01-02 15:04"), res.Mode, len(res.Tracks))
	if err := e.lib.SetPlaylistSummary(ctx, playlistKey, summary); err != nil {
		return "", fmt.Errorf("set playlist summary: %w", err)
	}

	png, err := cover.Render(res.Title, e.now())
	if err != nil {
		return "", fmt.Errorf("render poster: %w", err)
	}
	if err := e.lib.UploadPlaylistPoster(ctx, playlistKey, png); err != nil {
		return "", fmt.Errorf("upload poster: %w", err)
	}
	return playlistKey, nil
}
