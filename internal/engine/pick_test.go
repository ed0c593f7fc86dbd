// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

import (
	"context"
	"testing"

	"github.com/tomtom215/aria/internal/preset"
)

func TestPickTrackFromArtist(t *testing.T) {
	lib := newFakeLibrary()
	undated := track("x", "Undated", "al1", "ar1", "Artist One")
	lib.addTrack(undated)
	y1 := track("y1", "Dated One", "al2", "ar1", "Artist One")
	y1.Year = 1995
	y2 := track("y2", "Dated Two", "al2", "ar1", "Artist One")
	y2.Year = 1995
	lib.addTrack(y1)
	lib.addTrack(y2)

	p := preset.Default()
	p.MinYear = 1990
	eng := newTestEngine(lib, p)

	got, ok := eng.pickTrackFromArtist(context.Background(), "ar1")
	if !ok {
		t.Fatal("expected a pick from the dated album")
	}
	if got.AlbumKey != "al2" {
		t.Errorf("album without a year should be rejected whole, got pick from %q", got.AlbumKey)
	}

	p2 := preset.Default()
	p2.MinYear = 2000
	eng2 := newTestEngine(lib, p2)
	if _, ok := eng2.pickTrackFromArtist(context.Background(), "ar1"); ok {
		t.Error("expected no pick when every album violates the year range")
	}
}
