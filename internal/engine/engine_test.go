// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/aria/internal/logging"
	"github.com/tomtom215/aria/internal/models"
	"github.com/tomtom215/aria/internal/preset"
)

var testNow = time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)

func newTestEngine(lib *fakeLibrary, p preset.Preset, opts ...Option) *Engine {
	opts = append([]Option{WithSeed(42), WithNow(func() time.Time { return testNow }), WithDryRun(true)}, opts...)
	return New(lib, p, "Music", opts...)
}

// seedHistoryTracks registers n tracks and history entries viewed daysAgo.
func seedHistoryTracks(lib *fakeLibrary, n, daysAgo int) []string {
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("h%d", i)
		artist := fmt.Sprintf("ar%d", i)
		lib.addTrack(track(key, "History Song "+key, "al-"+key, artist, "Artist "+artist))
		lib.history = append(lib.history, models.HistoryEntry{
			RatingKey: key,
			ViewedAt:  testNow.AddDate(0, 0, -daysAgo),
		})
		keys = append(keys, key)
	}
	return keys
}

func trackKeys(tracks []models.Track) []string {
	keys := make([]string, len(tracks))
	for i := range tracks {
		keys[i] = tracks[i].RatingKey
	}
	return keys
}

func TestRunHistoryMode(t *testing.T) {
	lib := newFakeLibrary()
	seedHistoryTracks(lib, 10, 30)

	p := preset.Default()
	p.SeedMode = preset.ModeHistory

	res, err := newTestEngine(lib, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Tracks) != 10 {
		t.Errorf("expected 10 tracks, got %d", len(res.Tracks))
	}
	if res.Mode != preset.ModeHistory {
		t.Errorf("expected history mode, got %q", res.Mode)
	}
}

func TestRunExclusionWindow(t *testing.T) {
	lib := newFakeLibrary()
	seedHistoryTracks(lib, 5, 30)
	// Played two days ago, inside the default 15-day exclusion window.
	lib.addTrack(track("recent", "Recent Song", "al-r", "ar-r", "Recent Artist"))
	lib.history = append(lib.history, models.HistoryEntry{
		RatingKey: "recent",
		ViewedAt:  testNow.AddDate(0, 0, -2),
	})

	p := preset.Default()
	p.SeedMode = preset.ModeHistory

	res, err := newTestEngine(lib, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, got := range res.Tracks {
		if got.RatingKey == "recent" {
			t.Error("recently played track should be excluded")
		}
	}
	if len(res.Tracks) != 5 {
		t.Errorf("expected 5 tracks, got %d", len(res.Tracks))
	}
}

func TestRunEmptyResult(t *testing.T) {
	lib := newFakeLibrary()
	p := preset.Default()
	p.SeedMode = preset.ModeHistory

	_, err := newTestEngine(lib, p).Run(context.Background())
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestRunConnectError(t *testing.T) {
	lib := newFakeLibrary()
	lib.identityErr = errors.New("connection refused")

	p := preset.Default()
	p.SeedMode = preset.ModeHistory

	_, err := newTestEngine(lib, p).Run(context.Background())
	if !errors.Is(err, ErrConnect) {
		t.Fatalf("expected ErrConnect, got %v", err)
	}
}

func TestRunMissingSection(t *testing.T) {
	lib := newFakeLibrary()
	lib.sectionErr = errors.New("no music section named Music")

	p := preset.Default()
	p.SeedMode = preset.ModeHistory

	_, err := newTestEngine(lib, p).Run(context.Background())
	if !errors.Is(err, ErrConnect) {
		t.Fatalf("expected ErrConnect, got %v", err)
	}
}

func TestRunPublishCreatesPlaylist(t *testing.T) {
	lib := newFakeLibrary()
	seedHistoryTracks(lib, 6, 30)

	p := preset.Default()
	p.SeedMode = preset.ModeHistory

	eng := New(lib, p, "Music", WithSeed(42), WithNow(func() time.Time { return testNow }))
	res, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.PlaylistKey == "" {
		t.Fatal("expected a playlist key")
	}
	wantTitle := "Playlist Creator • Listening History (26-08-24)"
	if res.Title != wantTitle {
		t.Errorf("title: expected %q, got %q", wantTitle, res.Title)
	}

	pl := lib.playlists[res.PlaylistKey]
	if pl == nil {
		t.Fatal("playlist not stored")
	}
	if len(pl.items) != len(res.Tracks) {
		t.Errorf("playlist items: expected %d, got %d", len(res.Tracks), len(pl.items))
	}
	if !strings.Contains(pl.meta.Summary, "Mode: history") {
		t.Errorf("summary missing mode: %q", pl.meta.Summary)
	}
}

func TestRunPublishReplacesInPlace(t *testing.T) {
	lib := newFakeLibrary()
	seedHistoryTracks(lib, 6, 30)

	p := preset.Default()
	p.SeedMode = preset.ModeHistory

	first, err := New(lib, p, "Music", WithSeed(1), WithNow(func() time.Time { return testNow })).Run(context.Background())
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := New(lib, p, "Music", WithSeed(2), WithNow(func() time.Time { return testNow })).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if first.PlaylistKey != second.PlaylistKey {
		t.Errorf("expected replace-in-place, got new key %q vs %q", second.PlaylistKey, first.PlaylistKey)
	}
	if len(lib.playlists) != 1 {
		t.Errorf("expected a single playlist, got %d", len(lib.playlists))
	}
}

func TestRunPublishError(t *testing.T) {
	lib := newFakeLibrary()
	seedHistoryTracks(lib, 6, 30)
	lib.publishErr = errors.New("server error")

	p := preset.Default()
	p.SeedMode = preset.ModeHistory

	_, err := New(lib, p, "Music", WithSeed(42), WithNow(func() time.Time { return testNow })).Run(context.Background())
	if !errors.Is(err, ErrPublish) {
		t.Fatalf("expected ErrPublish, got %v", err)
	}
}

func TestRunPosterAndSummaryFailuresFatal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeLibrary)
	}{
		{"summary", func(f *fakeLibrary) { f.summaryErr = errors.New("server error") }},
		{"poster upload", func(f *fakeLibrary) { f.posterErr = errors.New("server error") }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lib := newFakeLibrary()
			seedHistoryTracks(lib, 6, 30)
			tc.mutate(lib)

			p := preset.Default()
			p.SeedMode = preset.ModeHistory

			_, err := New(lib, p, "Music", WithSeed(42), WithNow(func() time.Time { return testNow })).Run(context.Background())
			if !errors.Is(err, ErrPublish) {
				t.Fatalf("expected ErrPublish, got %v", err)
			}
		})
	}
}

func TestRunDeterministicWithFixedSeed(t *testing.T) {
	build := func() *fakeLibrary {
		lib := newFakeLibrary()
		lib.addTrack(track("s1", "Seed One", "al1", "ar1", "Artist One"))
		for i := 0; i < 15; i++ {
			key := fmt.Sprintf("n%d", i)
			artist := fmt.Sprintf("nar%d", i)
			lib.addTrack(track(key, "Neighbor "+key, "nal-"+key, artist, "Artist "+artist))
			lib.sonicTracks["s1"] = append(lib.sonicTracks["s1"], key)
		}
		return lib
	}

	p := preset.Default()
	p.SeedMode = preset.ModeTrackSonic
	p.SeedTrackKeys = preset.Keys{"s1"}
	p.MaxTracks = 10

	a, err := newTestEngine(build(), p).Run(context.Background())
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	b, err := newTestEngine(build(), p).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	aKeys, bKeys := trackKeys(a.Tracks), trackKeys(b.Tracks)
	if len(aKeys) != len(bKeys) {
		t.Fatalf("run lengths differ: %d vs %d", len(aKeys), len(bKeys))
	}
	for i := range aKeys {
		if aKeys[i] != bKeys[i] {
			t.Fatalf("runs diverge at %d: %q vs %q", i, aKeys[i], bKeys[i])
		}
	}
}

func TestTrackSonicExcludesSeeds(t *testing.T) {
	lib := newFakeLibrary()
	lib.addTrack(track("s1", "Seed One", "al1", "ar1", "Artist One"))
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("n%d", i)
		artist := fmt.Sprintf("nar%d", i)
		lib.addTrack(track(key, "Neighbor "+key, "nal-"+key, artist, "Artist "+artist))
		lib.sonicTracks["s1"] = append(lib.sonicTracks["s1"], key)
	}

	p := preset.Default()
	p.SeedMode = preset.ModeTrackSonic
	p.SeedTrackKeys = preset.Keys{"s1"}
	p.HistoryLookbackDays = 0

	res, err := newTestEngine(lib, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Tracks) != 5 {
		t.Errorf("expected 5 neighbors, got %d", len(res.Tracks))
	}
	for _, got := range res.Tracks {
		if got.RatingKey == "s1" {
			t.Error("seed track should not appear in its own neighbor pool")
		}
	}
}

func TestSonicJourneyOrderPreserved(t *testing.T) {
	lib := newFakeLibrary()
	lib.addTrack(track("A", "Start", "alA", "arA", "Artist A"))
	lib.addTrack(track("b", "Step One", "alB", "arB", "Artist B"))
	lib.addTrack(track("c", "Step Two", "alC", "arC", "Artist C"))
	lib.addTrack(track("Z", "End", "alZ", "arZ", "Artist Z"))
	lib.sonicTracks["A"] = []string{"b"}
	lib.sonicTracks["b"] = []string{"c"}
	lib.sonicTracks["c"] = []string{"Z"}

	p := preset.Default()
	p.SeedMode = preset.ModeSonicJourney
	p.SeedTrackKeys = preset.Keys{"A", "Z"}
	p.HistoryLookbackDays = 0
	p.ExcludePlayedDays = 0

	res, err := newTestEngine(lib, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"A", "b", "c", "Z"}
	got := trackKeys(res.Tracks)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("journey order broken: expected %v, got %v", want, got)
		}
	}
}

func TestSonicJourneyInflatesShortPath(t *testing.T) {
	lib := newFakeLibrary()
	lib.addTrack(track("s1", "Start", "alS1", "arS1", "Artist S1"))
	lib.addTrack(track("m", "Middle", "alM", "arM", "Artist M"))
	lib.addTrack(track("s2", "End", "alS2", "arS2", "Artist S2"))
	// Each skeleton node has off-path neighbors available for inflation.
	addNeighbors := func(of string, prefix string) {
		for i := 0; i < 5; i++ {
			key := fmt.Sprintf("%s%d", prefix, i)
			lib.addTrack(track(key, "Filler "+key, "al-"+key, "ar-"+key, "Artist "+key))
			lib.sonicTracks[of] = append(lib.sonicTracks[of], key)
		}
	}
	lib.sonicTracks["s1"] = []string{"m"}
	addNeighbors("s1", "o")
	lib.sonicTracks["m"] = []string{"s2"}
	addNeighbors("m", "p")
	addNeighbors("s2", "q")

	p := preset.Default()
	p.SeedMode = preset.ModeSonicJourney
	p.SeedTrackKeys = preset.Keys{"s1", "s2"}
	p.MaxTracks = 12
	p.HistoryLookbackDays = 0
	p.ExcludePlayedDays = 0

	res, err := newTestEngine(lib, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := trackKeys(res.Tracks)
	if len(got) != p.MaxTracks {
		t.Fatalf("short skeleton should inflate to max_tracks, got %d: %v", len(got), got)
	}
	pos := map[string]int{}
	for i, key := range got {
		pos[key] = i
	}
	mIdx, ok := pos["m"]
	if !ok {
		t.Fatalf("skeleton track m missing from %v", got)
	}
	if got[0] != "s1" || got[len(got)-1] != "s2" {
		t.Errorf("waypoints must bookend the journey, got %v", got)
	}
	if mIdx <= pos["s1"] || mIdx >= pos["s2"] {
		t.Errorf("skeleton order broken: m at %d in %v", mIdx, got)
	}
}

func TestSonicJourneyFallbackBridge(t *testing.T) {
	lib := newFakeLibrary()
	lib.addTrack(track("A", "Start", "alA", "arA", "Artist A"))
	lib.addTrack(track("Z", "End", "alZ", "arZ", "Artist Z"))
	lib.addTrack(track("an", "Near Start", "alAN", "arAN", "Artist AN"))
	lib.addTrack(track("zn", "Near End", "alZN", "arZN", "Artist ZN"))
	// No path from A to Z, only disjoint neighborhoods.
	lib.sonicTracks["A"] = []string{"an"}
	lib.sonicTracks["Z"] = []string{"zn"}

	p := preset.Default()
	p.SeedMode = preset.ModeSonicJourney
	p.SeedTrackKeys = preset.Keys{"A", "Z"}
	p.HistoryLookbackDays = 0
	p.ExcludePlayedDays = 0

	res, err := newTestEngine(lib, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := trackKeys(res.Tracks)
	if len(got) < 2 {
		t.Fatalf("bridge too short: %v", got)
	}
	if got[0] != "A" {
		t.Errorf("bridge should start at the first waypoint, got %q", got[0])
	}
	if got[len(got)-1] != "Z" {
		t.Errorf("bridge should end at the last waypoint, got %q", got[len(got)-1])
	}
}

func TestSonicJourneySingleSeedFallsBack(t *testing.T) {
	lib := newFakeLibrary()
	lib.addTrack(track("s1", "Only Seed", "al1", "ar1", "Artist One"))
	lib.addTrack(track("n1", "Neighbor", "al2", "ar2", "Artist Two"))
	lib.sonicTracks["s1"] = []string{"n1"}

	p := preset.Default()
	p.SeedMode = preset.ModeSonicJourney
	p.SeedTrackKeys = preset.Keys{"s1"}
	p.HistoryLookbackDays = 0

	res, err := newTestEngine(lib, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Tracks) != 1 || res.Tracks[0].RatingKey != "n1" {
		t.Errorf("expected track-sonic fallback with [n1], got %v", trackKeys(res.Tracks))
	}
}

func TestSonicHistoryIntersectionLeads(t *testing.T) {
	lib := newFakeLibrary()
	// Two history tracks on one album, two discovery tracks on a
	// sonic-similar album.
	lib.addTrack(track("h1", "Known One", "al1", "ar1", "Artist One"))
	lib.addTrack(track("h2", "Known Two", "al1", "ar1", "Artist One"))
	lib.addTrack(track("d1", "Discovery One", "al2", "ar2", "Artist Two"))
	lib.addTrack(track("d2", "Discovery Two", "al2", "ar2", "Artist Two"))
	lib.sonicAlbums["al1"] = []string{"al2"}
	lib.history = append(lib.history,
		models.HistoryEntry{RatingKey: "h1", ViewedAt: testNow.AddDate(0, 0, -30)},
		models.HistoryEntry{RatingKey: "h2", ViewedAt: testNow.AddDate(0, 0, -30)},
	)

	p := preset.Default()
	p.SeedMode = preset.ModeSonicHistory
	p.MaxTracks = 4
	p.MaxTracksPerArtist = 0
	p.MaxTracksPerAlbum = 0

	res, err := newTestEngine(lib, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := trackKeys(res.Tracks)
	if len(got) != 4 {
		t.Fatalf("expected 4 tracks, got %v", got)
	}
	lead := map[string]bool{got[0]: true, got[1]: true}
	if !lead["h1"] || !lead["h2"] {
		t.Errorf("intersection tracks should lead, got order %v", got)
	}
}

func TestDeepDiveFairShare(t *testing.T) {
	lib := newFakeLibrary()
	for i := 0; i < 6; i++ {
		lib.addTrack(track(fmt.Sprintf("a%d", i), fmt.Sprintf("A Side %d", i), "al1", "ar1", "Artist One"))
		lib.addTrack(track(fmt.Sprintf("b%d", i), fmt.Sprintf("B Side %d", i), "al2", "ar2", "Artist Two"))
	}

	p := preset.Default()
	p.SeedMode = preset.ModeAlbumEchoes
	p.SeedTrackKeys = preset.Keys{"a0", "b0"}
	p.MaxTracks = 6
	p.HistoryLookbackDays = 0
	p.ExcludePlayedDays = 0

	res, err := newTestEngine(lib, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Tracks) != 6 {
		t.Fatalf("expected 6 tracks, got %d", len(res.Tracks))
	}
	perAlbum := map[string]int{}
	for _, got := range res.Tracks {
		perAlbum[got.AlbumKey]++
		if got.RatingKey == "a0" || got.RatingKey == "b0" {
			t.Errorf("seed track %s should be dropped from its album pool", got.RatingKey)
		}
	}
	if perAlbum["al1"] != 3 || perAlbum["al2"] != 3 {
		t.Errorf("expected a 3/3 album split, got %v", perAlbum)
	}
}

func TestStrictCollectionLegacyOrder(t *testing.T) {
	lib := newFakeLibrary()
	heavy := track("heavy", "Heavy Rotation", "al1", "ar1", "Artist One")
	heavy.ViewCount = 20
	heavy.UserRating = 8
	light := track("light", "Light Rotation", "al2", "ar2", "Artist Two")
	light.ViewCount = 1
	fresh := track("fresh", "Fresh Add", "al3", "ar3", "Artist Three")
	fresh.AddedAt = testNow.AddDate(0, 0, -1)
	lib.addTrack(heavy)
	lib.addTrack(light)
	lib.addTrack(fresh)
	lib.collections["Favorites"] = []string{"heavy", "light", "fresh"}

	p := preset.Default()
	p.SeedMode = preset.ModeStrictCollection
	p.IncludeCollections = []string{"Favorites"}
	p.CollectionSlider = 0 // legacy only
	p.MaxTracks = 5
	p.HistoryLookbackDays = 0
	p.ExcludePlayedDays = 0

	res, err := newTestEngine(lib, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := trackKeys(res.Tracks)
	if len(got) != 3 {
		t.Fatalf("expected 3 tracks, got %v", got)
	}
	if got[0] != "heavy" {
		t.Errorf("legacy scoring should rank the heavy-rotation track first, got %v", got)
	}
}

func TestStrictCollectionUnplayedBonus(t *testing.T) {
	lib := newFakeLibrary()
	played := track("played", "Played", "al1", "ar1", "Artist One")
	played.ViewCount = 3
	played.AddedAt = testNow.AddDate(0, 0, -10)
	unplayed := track("unplayed", "Unplayed", "al2", "ar2", "Artist Two")
	unplayed.AddedAt = testNow.AddDate(0, 0, -10)
	lib.addTrack(played)
	lib.addTrack(unplayed)
	lib.collections["Favorites"] = []string{"played", "unplayed"}

	p := preset.Default()
	p.SeedMode = preset.ModeStrictCollection
	p.IncludeCollections = []string{"Favorites"}
	p.CollectionSlider = 1 // recency leaning, unplayed bonus active
	p.MaxTracks = 5
	p.HistoryLookbackDays = 0
	p.ExcludePlayedDays = 0

	eng := newTestEngine(lib, p)
	pool, err := eng.expandStrictCollection(context.Background())
	if err != nil {
		t.Fatalf("expandStrictCollection() error = %v", err)
	}
	if len(pool) != 2 || pool[0].RatingKey != "unplayed" {
		t.Errorf("unplayed bonus should rank the unplayed track first, got %v", trackKeys(pool))
	}
}

func TestGenreHarvestAlbumFallback(t *testing.T) {
	lib := newFakeLibrary()
	for i := 0; i < 4; i++ {
		lib.addTrack(track(fmt.Sprintf("j%d", i), fmt.Sprintf("Jazz Cut %d", i), "alj", "arj", "Jazz Artist"))
	}
	// Track search is empty for this genre; albums carry it instead.
	lib.genreAlbums["Jazz"] = []string{"alj"}

	p := preset.Default()
	p.SeedMode = preset.ModeGenre
	p.GenreSeeds = []string{"Jazz"}
	p.HistoryLookbackDays = 0

	res, err := newTestEngine(lib, p).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Tracks) != 4 {
		t.Errorf("expected 4 tracks from the album fallback, got %d", len(res.Tracks))
	}
}

func TestHistoryBlend(t *testing.T) {
	lib := newFakeLibrary()
	p := preset.Default()
	p.MaxTracks = 10
	p.HistoricalRatio = 0.5
	eng := newTestEngine(lib, p)

	history := make([]models.Track, 8)
	for i := range history {
		history[i] = track(fmt.Sprintf("h%d", i), "H", "al", "ar", "A")
	}
	pool := []models.Track{track("p1", "P", "al", "ar", "A")}

	blended := eng.blendHistory(preset.ModeTrackSonic, pool, history)
	if len(blended) != 1+5 {
		t.Errorf("expected 5 blended history tracks, got %d extra", len(blended)-1)
	}

	for _, mode := range []preset.SeedMode{preset.ModeHistory, preset.ModeSonicHistory, preset.ModeStrictCollection} {
		if got := eng.blendHistory(mode, pool, history); len(got) != len(pool) {
			t.Errorf("mode %s should skip history blend", mode)
		}
	}
}

func TestSmartSeedPicksDistinct(t *testing.T) {
	lib := newFakeLibrary()
	// Two single-track albums: the picker cycles back to each album long
	// before reaching its target and must not pick the same track twice.
	lib.addTrack(track("tA", "Opener", "alA", "ar1", "Artist One"))
	lib.addTrack(track("tB", "Closer", "alB", "ar1", "Artist One"))

	eng := newTestEngine(lib, preset.Default())
	artist := lib.artists["ar1"]

	picks := eng.smartSeedPicks(context.Background(), &artist, preset.ModeTrackSonic, map[string]struct{}{})
	if len(picks) != 2 {
		t.Fatalf("expected 2 distinct picks, got %v", trackKeys(picks))
	}
	if picks[0].RatingKey == picks[1].RatingKey {
		t.Errorf("picks must be distinct, got %v", trackKeys(picks))
	}
}

func TestRunLogsCarryRunID(t *testing.T) {
	prev := logging.Logger()
	var buf bytes.Buffer
	logging.SetLogger(logging.NewTestLogger(&buf))
	defer logging.SetLogger(prev)

	lib := newFakeLibrary()
	seedHistoryTracks(lib, 3, 30)
	p := preset.Default()
	p.SeedMode = preset.ModeHistory

	ctx := logging.ContextWithRunID(context.Background(), "run-abc123")
	if _, err := newTestEngine(lib, p).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"run_id":"run-abc123"`) {
		t.Error("run logs should carry the context's run ID")
	}
}

func TestEffectiveModeAuto(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*preset.Preset)
		want   preset.SeedMode
	}{
		{"track seeds", func(p *preset.Preset) { p.SeedTrackKeys = preset.Keys{"1"} }, preset.ModeTrackSonic},
		{"artist seeds", func(p *preset.Preset) { p.SeedArtistNames = []string{"X"} }, preset.ModeSonicCombo},
		{"genre seeds", func(p *preset.Preset) { p.GenreSeeds = []string{"Rock"} }, preset.ModeGenre},
		{"nothing", func(p *preset.Preset) {}, preset.ModeHistory},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := preset.Default()
			tc.mutate(&p)
			eng := newTestEngine(newFakeLibrary(), p)
			if got := eng.effectiveMode(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSmootherReturnsPermutation(t *testing.T) {
	lib := newFakeLibrary()
	keys := []string{"t1", "t2", "t3", "t4", "t5"}
	for i, key := range keys {
		lib.addTrack(track(key, "Song "+key, fmt.Sprintf("al%d", i), fmt.Sprintf("ar%d", i), "Artist "+key))
	}
	lib.sonicTracks["t1"] = []string{"t3", "t2"}
	lib.sonicTracks["t3"] = []string{"t5"}

	p := preset.Default()
	eng := newTestEngine(lib, p)

	var in []models.Track
	for _, key := range keys {
		in = append(in, lib.tracks[key])
	}
	out := eng.smooth(context.Background(), in)
	if len(out) != len(in) {
		t.Fatalf("smoother changed length: %d vs %d", len(out), len(in))
	}
	seen := map[string]bool{}
	for _, got := range out {
		if seen[got.RatingKey] {
			t.Fatalf("smoother duplicated %q", got.RatingKey)
		}
		seen[got.RatingKey] = true
	}
	for _, key := range keys {
		if !seen[key] {
			t.Errorf("smoother dropped %q", key)
		}
	}
}

func TestPlaylistTitle(t *testing.T) {
	p := preset.Default()
	eng := newTestEngine(newFakeLibrary(), p)
	want := "Playlist Creator • Sonic Journey (26-08-24)"
	if got := eng.playlistTitle(preset.ModeSonicJourney); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	p.CustomTitle = "My Mix"
	eng = newTestEngine(newFakeLibrary(), p)
	if got := eng.playlistTitle(preset.ModeHistory); got != "My Mix" {
		t.Errorf("custom title not honored, got %q", got)
	}
}
