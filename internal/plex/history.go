// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package plex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/aria/internal/models"
)

// History fetches playback history since the given time, scoped to the
// resolved music section, newest first.
//
// Endpoint: GET /status/sessions/history/all?viewedAt>={ts}&librarySectionID={id}
func (c *Client) History(ctx context.Context, since time.Time) ([]models.HistoryEntry, error) {
	query := url.Values{}
	query.Add("sort", "-viewedAt")
	if !since.IsZero() {
		query.Add("viewedAt>", fmt.Sprintf("%d", since.Unix()))
	}
	if c.sectionKey != "" {
		query.Add("librarySectionID", c.sectionKey)
	}

	var resp models.PlexMetadataResponse
	if err := c.doJSONRequestWithQuery(ctx, "history", "/status/sessions/history/all", query, &resp); err != nil {
		return nil, err
	}

	sectionID, _ := strconv.Atoi(c.sectionKey)
	entries := make([]models.HistoryEntry, 0, len(resp.MediaContainer.Metadata))
	for i := range resp.MediaContainer.Metadata {
		m := &resp.MediaContainer.Metadata[i]
		// Older servers ignore the librarySectionID filter; enforce locally.
		if sectionID > 0 && m.LibrarySectionID > 0 && m.LibrarySectionID != sectionID {
			continue
		}
		if m.RatingKey == "" || m.ViewedAt == 0 {
			continue
		}
		entries = append(entries, models.HistoryEntry{
			RatingKey: m.RatingKey,
			ViewedAt:  time.Unix(m.ViewedAt, 0),
		})
	}
	return entries, nil
}
