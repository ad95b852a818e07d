package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/services"
	"github.com/desertthunder/lfx/internal/shared"
)

type mockHistory struct {
	topAlbums     []models.ListeningRecord
	topAlbumsErr  error
	similar       map[string][]string
	similarErr    error
	topAlbum      map[string]string
	similarCalls  int
	topAlbumCalls int
}

func (m *mockHistory) TopAlbums(ctx context.Context, user, period string, limit int) ([]models.ListeningRecord, error) {
	if m.topAlbumsErr != nil {
		return nil, m.topAlbumsErr
	}
	return m.topAlbums, nil
}

func (m *mockHistory) SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error) {
	m.similarCalls++
	if m.similarErr != nil {
		return nil, m.similarErr
	}
	return m.similar[artist], nil
}

func (m *mockHistory) TopAlbumForArtist(ctx context.Context, artist string) (string, error) {
	m.topAlbumCalls++
	if album, ok := m.topAlbum[artist]; ok {
		return album, nil
	}
	return "", fmt.Errorf("%w: no ranked albums for %s", shared.ErrNoResults, artist)
}

func (m *mockHistory) Name() string {
	return "Last.fm"
}

type mockCatalog struct {
	playlist    *models.PlaylistHandle
	createErr   error
	searchs     map[string]*services.SearchResult // keyed artist|album
	searchErrs  map[string]error
	searchCalls int
	albumTracks map[string][]services.TrackResult // keyed album URI
	added       [][]string
	addErr      error
	addErrOnce  bool // if true, only fail the first add call
	addCalls    int
}

func (m *mockCatalog) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.PlaylistHandle, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.playlist != nil {
		return m.playlist, nil
	}
	return &models.PlaylistHandle{ID: "pl_1", PublicURL: "https://open.spotify.com/playlist/pl_1"}, nil
}

func (m *mockCatalog) SearchAlbumTrack(ctx context.Context, album, artist string) (*services.SearchResult, error) {
	m.searchCalls++
	key := artist + "|" + album
	if err, ok := m.searchErrs[key]; ok {
		return nil, err
	}
	if result, ok := m.searchs[key]; ok {
		return result, nil
	}
	return &services.SearchResult{}, nil
}

func (m *mockCatalog) AlbumTracks(ctx context.Context, albumID string, limit int) ([]services.TrackResult, error) {
	return m.albumTracks[albumID], nil
}

func (m *mockCatalog) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	m.addCalls++
	if m.addErr != nil {
		if m.addErrOnce && m.addCalls > 1 {
			// Allow subsequent batches to succeed
		} else {
			return m.addErr
		}
	}
	batch := make([]string, len(uris))
	copy(batch, uris)
	m.added = append(m.added, batch)
	return nil
}

func (m *mockCatalog) Name() string {
	return "Spotify"
}

type mockCache struct {
	matches  map[string]models.TrackMatch // keyed artist|album
	recorded []models.TrackMatch
	cacheErr error
}

func (m *mockCache) LookupMatch(artist, album string) (*models.TrackMatch, bool) {
	if match, ok := m.matches[artist+"|"+album]; ok {
		return &match, true
	}
	return nil, false
}

func (m *mockCache) CacheMatch(match models.TrackMatch) error {
	if m.cacheErr != nil {
		return m.cacheErr
	}
	m.recorded = append(m.recorded, match)
	return nil
}

// trackResult is a shorthand for a single-track search response.
func trackResult(uri string) *services.SearchResult {
	return &services.SearchResult{
		Tracks: []services.TrackResult{{URI: uri}},
	}
}

func TestDiscoveryEngine_Discover(t *testing.T) {
	t.Run("caps the result and short-circuits mid-iteration", func(t *testing.T) {
		history := &mockHistory{
			similar:  map[string][]string{},
			topAlbum: map[string]string{},
		}
		for i := 0; i < 8; i++ {
			artist := fmt.Sprintf("Top %d", i)
			history.topAlbums = append(history.topAlbums, models.ListeningRecord{ArtistName: artist, AlbumName: "Album"})

			a := fmt.Sprintf("Similar %d-a", i)
			b := fmt.Sprintf("Similar %d-b", i)
			history.similar[artist] = []string{a, b}
			history.topAlbum[a] = "Album A"
			history.topAlbum[b] = "Album B"
		}

		engine := NewDiscoveryEngine(history, nil)
		recommendations, err := engine.Discover(context.Background(), nil, DiscoveryOpts{Username: "listener"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(recommendations) != 10 {
			t.Fatalf("expected exactly 10 recommendations, got %d", len(recommendations))
		}

		artists := make(map[string]bool)
		for _, rec := range recommendations {
			if artists[rec.ArtistName] {
				t.Errorf("artist %s appears twice", rec.ArtistName)
			}
			artists[rec.ArtistName] = true
		}

		// Two per album means the cap lands on the fifth album; albums six
		// through eight must never be consulted.
		if history.similarCalls != 5 {
			t.Errorf("expected 5 similar-artist lookups, got %d", history.similarCalls)
		}
	})

	t.Run("deduplicates top artists against their own history", func(t *testing.T) {
		history := &mockHistory{
			topAlbums: []models.ListeningRecord{
				{ArtistName: "Boards of Canada", AlbumName: "Geogaddi"},
				{ArtistName: "Boards of Canada", AlbumName: "Music Has the Right to Children"},
				{ArtistName: "Brian Eno", AlbumName: "Ambient 1"},
			},
			similar:  map[string][]string{},
			topAlbum: map[string]string{},
		}

		engine := NewDiscoveryEngine(history, nil)
		if _, err := engine.Discover(context.Background(), nil, DiscoveryOpts{Username: "listener"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if history.similarCalls != 2 {
			t.Errorf("expected 2 similar-artist lookups for 2 distinct artists, got %d", history.similarCalls)
		}
	})

	t.Run("a seen similar artist consumes its expansion slot", func(t *testing.T) {
		history := &mockHistory{
			topAlbums: []models.ListeningRecord{
				{ArtistName: "Autechre", AlbumName: "Amber"},
			},
			similar: map[string][]string{
				// Autechre is already seen; Plaid takes the second slot and
				// Aphex Twin must never be consulted.
				"Autechre": {"Autechre", "Plaid", "Aphex Twin"},
			},
			topAlbum: map[string]string{
				"Autechre":   "Tri Repetae",
				"Plaid":      "Not for Threes",
				"Aphex Twin": "Selected Ambient Works 85-92",
			},
		}

		engine := NewDiscoveryEngine(history, nil)
		recommendations, err := engine.Discover(context.Background(), nil, DiscoveryOpts{Username: "listener"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(recommendations) != 1 {
			t.Fatalf("expected 1 recommendation, got %d", len(recommendations))
		}
		if recommendations[0].ArtistName != "Plaid" {
			t.Errorf("expected Plaid, got %s", recommendations[0].ArtistName)
		}
		if history.topAlbumCalls != 1 {
			t.Errorf("expected 1 top-album lookup, got %d", history.topAlbumCalls)
		}
	})

	t.Run("an artist without a top album consumes its slot", func(t *testing.T) {
		history := &mockHistory{
			topAlbums: []models.ListeningRecord{
				{ArtistName: "Autechre", AlbumName: "Amber"},
			},
			similar: map[string][]string{
				"Autechre": {"Unknown Artist", "Plaid", "Aphex Twin"},
			},
			topAlbum: map[string]string{
				"Plaid": "Not for Threes",
			},
		}

		engine := NewDiscoveryEngine(history, nil)
		recommendations, err := engine.Discover(context.Background(), nil, DiscoveryOpts{Username: "listener"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(recommendations) != 1 {
			t.Fatalf("expected 1 recommendation, got %d", len(recommendations))
		}
		if recommendations[0].ArtistName != "Plaid" {
			t.Errorf("expected Plaid, got %s", recommendations[0].ArtistName)
		}
		if history.topAlbumCalls != 2 {
			t.Errorf("expected 2 top-album lookups, got %d", history.topAlbumCalls)
		}
	})

	t.Run("similar-artist failures are absorbed", func(t *testing.T) {
		history := &mockHistory{
			topAlbums: []models.ListeningRecord{
				{ArtistName: "Autechre", AlbumName: "Amber"},
				{ArtistName: "Plaid", AlbumName: "Rest Proof Clockwork"},
			},
			similarErr: fmt.Errorf("%w: status 500", shared.ErrAPIRequest),
		}

		engine := NewDiscoveryEngine(history, nil)
		recommendations, err := engine.Discover(context.Background(), nil, DiscoveryOpts{Username: "listener"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(recommendations) != 0 {
			t.Errorf("expected no recommendations, got %d", len(recommendations))
		}
	})

	t.Run("history failure is fatal", func(t *testing.T) {
		history := &mockHistory{
			topAlbumsErr: fmt.Errorf("%w: status 503", shared.ErrHistoryUnavailable),
		}

		engine := NewDiscoveryEngine(history, nil)
		if _, err := engine.Discover(context.Background(), nil, DiscoveryOpts{Username: "listener"}); !errors.Is(err, shared.ErrHistoryUnavailable) {
			t.Errorf("expected ErrHistoryUnavailable, got %v", err)
		}
	})

	t.Run("empty history yields an empty result", func(t *testing.T) {
		engine := NewDiscoveryEngine(&mockHistory{}, nil)
		recommendations, err := engine.Discover(context.Background(), nil, DiscoveryOpts{Username: "listener"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(recommendations) != 0 {
			t.Errorf("expected no recommendations, got %d", len(recommendations))
		}
	})

	t.Run("nil history service", func(t *testing.T) {
		engine := NewDiscoveryEngine(nil, nil)
		if _, err := engine.Discover(context.Background(), nil, DiscoveryOpts{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestDiscoveryEngine_Build(t *testing.T) {
	recommendations := []models.Recommendation{
		{ArtistName: "Plaid", AlbumName: "Not for Threes"},
		{ArtistName: "Autechre", AlbumName: "Tri Repetae"},
	}

	t.Run("resolves recommendations and adds them in one batch", func(t *testing.T) {
		catalog := &mockCatalog{
			searchs: map[string]*services.SearchResult{
				"Plaid|Not for Threes": trackResult("spotify:track:t1"),
				"Autechre|Tri Repetae": trackResult("spotify:track:t2"),
			},
		}

		engine := NewDiscoveryEngine(&mockHistory{}, nil)
		progressCh := make(chan ProgressUpdate, 100)

		result, err := engine.Build(context.Background(), progressCh, catalog, recommendations, BuildOpts{UserID: "lfx_user"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.MatchedCount != 2 {
			t.Errorf("expected 2 matches, got %d", result.MatchedCount)
		}
		if result.AddedCount != 2 {
			t.Errorf("expected 2 added tracks, got %d", result.AddedCount)
		}
		if len(catalog.added) != 1 {
			t.Fatalf("expected 1 add call, got %d", len(catalog.added))
		}
		if catalog.added[0][0] != "spotify:track:t1" || catalog.added[0][1] != "spotify:track:t2" {
			t.Errorf("expected URIs in recommendation order, got %v", catalog.added[0])
		}
		if result.Matches[0].Via != models.MatchViaTrack {
			t.Errorf("expected a track match, got %s", result.Matches[0].Via)
		}

		close(progressCh)
		var sawCreate bool
		for update := range progressCh {
			if update.Phase == CreatePlaylist {
				sawCreate = true
			}
		}
		if !sawCreate {
			t.Error("expected a create_playlist progress update")
		}
	})

	t.Run("falls back to the album's first track", func(t *testing.T) {
		catalog := &mockCatalog{
			searchs: map[string]*services.SearchResult{
				"Plaid|Not for Threes": {
					Albums: []services.AlbumResult{{URI: "spotify:album:a9", Name: "Not for Threes"}},
				},
			},
			albumTracks: map[string][]services.TrackResult{
				"spotify:album:a9": {{URI: "spotify:track:t9"}},
			},
		}

		engine := NewDiscoveryEngine(&mockHistory{}, nil)
		result, err := engine.Build(context.Background(), nil, catalog, recommendations[:1], BuildOpts{UserID: "lfx_user"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.MatchedCount != 1 {
			t.Fatalf("expected 1 match, got %d", result.MatchedCount)
		}
		if result.Matches[0].TrackURI != "spotify:track:t9" {
			t.Errorf("expected the album's first track, got %s", result.Matches[0].TrackURI)
		}
		if result.Matches[0].Via != models.MatchViaAlbum {
			t.Errorf("expected an album match, got %s", result.Matches[0].Via)
		}
	})

	t.Run("a miss skips the entry without aborting the batch", func(t *testing.T) {
		catalog := &mockCatalog{
			searchs: map[string]*services.SearchResult{
				// Plaid matches nothing at all; Autechre resolves.
				"Autechre|Tri Repetae": trackResult("spotify:track:t2"),
			},
		}

		engine := NewDiscoveryEngine(&mockHistory{}, nil)
		result, err := engine.Build(context.Background(), nil, catalog, recommendations, BuildOpts{UserID: "lfx_user"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Matches[0].Matched {
			t.Error("expected the first recommendation to miss")
		}
		if !result.Matches[1].Matched {
			t.Error("expected the second recommendation to match")
		}
		if len(catalog.added) != 1 || len(catalog.added[0]) != 1 {
			t.Fatalf("expected one add call with one URI, got %v", catalog.added)
		}
	})

	t.Run("a failed search skips the entry", func(t *testing.T) {
		catalog := &mockCatalog{
			searchErrs: map[string]error{
				"Plaid|Not for Threes": fmt.Errorf("%w: status 500", shared.ErrAPIRequest),
			},
			searchs: map[string]*services.SearchResult{
				"Autechre|Tri Repetae": trackResult("spotify:track:t2"),
			},
		}

		engine := NewDiscoveryEngine(&mockHistory{}, nil)
		result, err := engine.Build(context.Background(), nil, catalog, recommendations, BuildOpts{UserID: "lfx_user"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.MatchedCount != 1 {
			t.Errorf("expected 1 match, got %d", result.MatchedCount)
		}
	})

	t.Run("chunks additions at the API ceiling", func(t *testing.T) {
		var many []models.Recommendation
		catalog := &mockCatalog{searchs: map[string]*services.SearchResult{}}

		for i := 0; i < 250; i++ {
			artist := fmt.Sprintf("Artist %03d", i)
			album := fmt.Sprintf("Album %03d", i)
			many = append(many, models.Recommendation{ArtistName: artist, AlbumName: album})
			catalog.searchs[artist+"|"+album] = trackResult(fmt.Sprintf("spotify:track:%03d", i))
		}

		engine := NewDiscoveryEngine(&mockHistory{}, nil)
		result, err := engine.Build(context.Background(), nil, catalog, many, BuildOpts{UserID: "lfx_user"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(catalog.added) != 3 {
			t.Fatalf("expected 3 add calls, got %d", len(catalog.added))
		}
		sizes := []int{len(catalog.added[0]), len(catalog.added[1]), len(catalog.added[2])}
		if sizes[0] != 100 || sizes[1] != 100 || sizes[2] != 50 {
			t.Errorf("expected batch sizes 100/100/50, got %v", sizes)
		}
		if catalog.added[1][0] != "spotify:track:100" {
			t.Errorf("expected the second batch to start at track 100, got %s", catalog.added[1][0])
		}
		if result.AddedCount != 250 {
			t.Errorf("expected 250 added tracks, got %d", result.AddedCount)
		}
	})

	t.Run("a failed batch warns and the rest continue", func(t *testing.T) {
		var many []models.Recommendation
		catalog := &mockCatalog{
			searchs:    map[string]*services.SearchResult{},
			addErr:     fmt.Errorf("%w: status 502", shared.ErrAPIRequest),
			addErrOnce: true,
		}

		for i := 0; i < 250; i++ {
			artist := fmt.Sprintf("Artist %03d", i)
			album := fmt.Sprintf("Album %03d", i)
			many = append(many, models.Recommendation{ArtistName: artist, AlbumName: album})
			catalog.searchs[artist+"|"+album] = trackResult(fmt.Sprintf("spotify:track:%03d", i))
		}

		engine := NewDiscoveryEngine(&mockHistory{}, nil)
		result, err := engine.Build(context.Background(), nil, catalog, many, BuildOpts{UserID: "lfx_user"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if catalog.addCalls != 3 {
			t.Errorf("expected all 3 batches attempted, got %d", catalog.addCalls)
		}
		if result.AddedCount != 150 {
			t.Errorf("expected 150 added tracks after one failed batch, got %d", result.AddedCount)
		}
		if len(result.Warnings) != 1 {
			t.Errorf("expected 1 warning, got %v", result.Warnings)
		}
	})

	t.Run("zero matches leave the playlist empty with a warning", func(t *testing.T) {
		catalog := &mockCatalog{}

		engine := NewDiscoveryEngine(&mockHistory{}, nil)
		result, err := engine.Build(context.Background(), nil, catalog, recommendations, BuildOpts{UserID: "lfx_user"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(catalog.added) != 0 {
			t.Errorf("expected no add calls, got %d", len(catalog.added))
		}
		if len(result.Warnings) == 0 {
			t.Error("expected a warning about the empty playlist")
		}
		if result.Playlist == nil {
			t.Error("expected the playlist handle to be returned")
		}
	})

	t.Run("playlist creation failure is fatal", func(t *testing.T) {
		catalog := &mockCatalog{
			createErr: fmt.Errorf("%w: status 403, body: forbidden", shared.ErrPlaylistCreate),
		}

		engine := NewDiscoveryEngine(&mockHistory{}, nil)
		if _, err := engine.Build(context.Background(), nil, catalog, recommendations, BuildOpts{UserID: "lfx_user"}); !errors.Is(err, shared.ErrPlaylistCreate) {
			t.Errorf("expected ErrPlaylistCreate, got %v", err)
		}
	})

	t.Run("nil catalog service", func(t *testing.T) {
		engine := NewDiscoveryEngine(&mockHistory{}, nil)
		if _, err := engine.Build(context.Background(), nil, nil, recommendations, BuildOpts{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestDiscoveryEngine_MatchCache(t *testing.T) {
	recommendations := []models.Recommendation{
		{ArtistName: "Plaid", AlbumName: "Not for Threes"},
		{ArtistName: "Autechre", AlbumName: "Tri Repetae"},
	}

	t.Run("a cache hit skips the search", func(t *testing.T) {
		cache := &mockCache{
			matches: map[string]models.TrackMatch{
				"Plaid|Not for Threes": {
					ArtistName: "Plaid",
					AlbumName:  "Not for Threes",
					TrackURI:   "spotify:track:cached",
					Matched:    true,
					Via:        models.MatchViaCache,
				},
			},
		}
		catalog := &mockCatalog{
			searchs: map[string]*services.SearchResult{
				"Autechre|Tri Repetae": trackResult("spotify:track:t2"),
			},
		}

		engine := NewDiscoveryEngine(&mockHistory{}, cache)
		result, err := engine.Build(context.Background(), nil, catalog, recommendations, BuildOpts{UserID: "lfx_user"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if catalog.searchCalls != 1 {
			t.Errorf("expected 1 search for the uncached pair, got %d", catalog.searchCalls)
		}
		if result.Matches[0].TrackURI != "spotify:track:cached" {
			t.Errorf("expected the cached URI, got %s", result.Matches[0].TrackURI)
		}
		if result.Matches[0].Via != models.MatchViaCache {
			t.Errorf("expected cache provenance, got %s", result.Matches[0].Via)
		}

		// Only the fresh resolution is recorded; the hit is not re-cached.
		if len(cache.recorded) != 1 || cache.recorded[0].ArtistName != "Autechre" {
			t.Errorf("expected exactly the fresh match recorded, got %v", cache.recorded)
		}
	})

	t.Run("cache write failures never disturb the build", func(t *testing.T) {
		cache := &mockCache{cacheErr: errors.New("disk full")}
		catalog := &mockCatalog{
			searchs: map[string]*services.SearchResult{
				"Plaid|Not for Threes": trackResult("spotify:track:t1"),
			},
		}

		engine := NewDiscoveryEngine(&mockHistory{}, cache)
		result, err := engine.Build(context.Background(), nil, catalog, recommendations[:1], BuildOpts{UserID: "lfx_user"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.AddedCount != 1 {
			t.Errorf("expected 1 added track, got %d", result.AddedCount)
		}
	})
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		FetchHistory:   "fetch_history",
		FindSimilar:    "find_similar",
		Authorize:      "authorize",
		CreatePlaylist: "create_playlist",
		SearchTracks:   "search_tracks",
		AddTracks:      "add_tracks",
		Phase(99):      "",
	}

	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(phase), got, want)
		}
	}
}

func TestEngineInterface(t *testing.T) {
	var _ Engine = NewDiscoveryEngine(&mockHistory{}, nil)
}
