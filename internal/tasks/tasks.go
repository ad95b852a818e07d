// package tasks implements the discovery pipeline over the two catalogs.
//
// The core abstraction is DiscoveryEngine, which mines listening history into
// a bounded recommendation list and reconciles it into a populated playlist.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/services"
	"github.com/desertthunder/lfx/internal/shared"
)

// DefaultPlaylistDescription is applied when the config leaves the
// description empty.
const DefaultPlaylistDescription = "Fresh music recommendations based on your Last.fm history"

// DiscoveryOpts bounds a discovery pass. Zero values fall back to the
// documented defaults.
type DiscoveryOpts struct {
	Username           string // history owner, required
	Period             string // history window (default "6month")
	HistoryLimit       int    // top albums pulled from history (default 10)
	SimilarLimit       int    // similar artists fetched per album (default 5)
	ExpandLimit        int    // similar artists expanded per album (default 2)
	MaxRecommendations int    // cap on emitted recommendations (default 10)
}

// normalized returns a copy with defaults filled in.
func (o DiscoveryOpts) normalized() DiscoveryOpts {
	if o.Period == "" {
		o.Period = "6month"
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = 10
	}
	if o.SimilarLimit <= 0 {
		o.SimilarLimit = 5
	}
	if o.ExpandLimit <= 0 {
		o.ExpandLimit = 2
	}
	if o.MaxRecommendations <= 0 {
		o.MaxRecommendations = 10
	}
	return o
}

// BuildOpts names the playlist a build run creates.
type BuildOpts struct {
	UserID      string // catalog account that owns the playlist, required
	Name        string // empty → "Last.fm Discoveries - <date>"
	Description string // empty → DefaultPlaylistDescription
	Public      bool
}

// BuildResult contains all data from one reconciliation pass.
type BuildResult struct {
	Playlist     *models.PlaylistHandle // Created playlist
	Matches      []models.TrackMatch    // One entry per recommendation, in order
	MatchedCount int                    // Recommendations resolved to a URI
	AddedCount   int                    // URIs actually written to the playlist
	Warnings     []string               // Recoverable failures surfaced to the user
}

// MatchCacher persists resolved matches across runs so repeat
// recommendations skip the search round-trip.
//
// Lookup misses and cache write failures are both silent: the cache can
// only ever remove work, never add failure modes.
type MatchCacher interface {
	// LookupMatch returns a previously resolved match for the pair, if any.
	LookupMatch(artist, album string) (*models.TrackMatch, bool)

	// CacheMatch records a freshly resolved match.
	CacheMatch(match models.TrackMatch) error
}

// Engine defines the discovery pipeline operations.
type Engine interface {
	// Discover mines listening history into a deduplicated, capped
	// recommendation list.
	Discover(ctx context.Context, progress chan<- ProgressUpdate, opts DiscoveryOpts) ([]models.Recommendation, error)

	// Build creates a playlist and reconciles recommendations into catalog
	// tracks. The catalog client is a parameter because it only exists once
	// authorization has produced a token.
	Build(ctx context.Context, progress chan<- ProgressUpdate, catalog services.CatalogService, recommendations []models.Recommendation, opts BuildOpts) (*BuildResult, error)
}

// DiscoveryEngine implements Engine over a history service and an
// optional match cache.
type DiscoveryEngine struct {
	history services.HistoryService
	cache   MatchCacher
}

// NewDiscoveryEngine creates a DiscoveryEngine. cache may be nil to
// disable match caching.
func NewDiscoveryEngine(history services.HistoryService, cache MatchCacher) *DiscoveryEngine {
	return &DiscoveryEngine{
		history: history,
		cache:   cache,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *DiscoveryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Discover mines the user's top albums for similar-artist albums.
//
// One seen-set covers both the user's own top artists and every artist
// already recommended, so no artist appears twice in the result. The cap
// is enforced the moment an entry is appended: the engine returns
// mid-iteration rather than finishing the current album.
func (e *DiscoveryEngine) Discover(ctx context.Context, progress chan<- ProgressUpdate, opts DiscoveryOpts) ([]models.Recommendation, error) {
	if e.history == nil {
		return nil, fmt.Errorf("%w: history service not initialized", shared.ErrServiceUnavailable)
	}

	opts = opts.normalized()

	e.sendProgress(progress, fetchHistoryUpdate(1, 1))

	records, err := e.history.TopAlbums(ctx, opts.Username, opts.Period, opts.HistoryLimit)
	if err != nil {
		return nil, err
	}

	recommendations := make([]models.Recommendation, 0, opts.MaxRecommendations)
	seen := make(map[string]bool, len(records))

	for i, record := range records {
		if seen[record.ArtistName] {
			continue
		}
		seen[record.ArtistName] = true

		e.sendProgress(progress, findSimilarUpdate(i+1, len(records), record.ArtistName))

		similar, err := e.history.SimilarArtists(ctx, record.ArtistName, opts.SimilarLimit)
		if err != nil {
			continue
		}

		// Only the first ExpandLimit similar artists are considered; an
		// already-seen artist consumes its slot rather than yielding it to
		// the next in line.
		if len(similar) > opts.ExpandLimit {
			similar = similar[:opts.ExpandLimit]
		}

		for _, name := range similar {
			if seen[name] {
				continue
			}

			album, err := e.history.TopAlbumForArtist(ctx, name)
			if err != nil {
				continue
			}

			seen[name] = true
			rec := models.Recommendation{ArtistName: name, AlbumName: album}
			recommendations = append(recommendations, rec)
			e.sendProgress(progress, recommendationUpdate(len(recommendations), opts.MaxRecommendations, rec))

			if len(recommendations) >= opts.MaxRecommendations {
				return recommendations, nil
			}
		}
	}

	return recommendations, nil
}

// Build creates the playlist and resolves each recommendation to a track
// URI. Resolution misses skip the entry; only playlist creation is fatal.
func (e *DiscoveryEngine) Build(ctx context.Context, progress chan<- ProgressUpdate, catalog services.CatalogService, recommendations []models.Recommendation, opts BuildOpts) (*BuildResult, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Name == "" {
		opts.Name = fmt.Sprintf("Last.fm Discoveries - %s", time.Now().Format("2006-01-02"))
	}
	if opts.Description == "" {
		opts.Description = DefaultPlaylistDescription
	}

	e.sendProgress(progress, createPlaylistUpdate(1, 1))

	handle, err := catalog.CreatePlaylist(ctx, opts.UserID, opts.Name, opts.Description, opts.Public)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, playlistCreatedUpdate(1, 1, handle))

	result := &BuildResult{Playlist: handle}
	total := len(recommendations)

	e.sendProgress(progress, searchTracksUpdate(0, total, nil))

	uris := make([]string, 0, total)
	for i, rec := range recommendations {
		e.sendProgress(progress, searchTracksUpdate(i+1, total, &rec))

		match := e.resolve(ctx, progress, catalog, i+1, total, rec)
		result.Matches = append(result.Matches, match)

		if match.Matched {
			uris = append(uris, match.TrackURI)
			result.MatchedCount++
		}
	}

	if len(uris) == 0 {
		result.Warnings = append(result.Warnings, "No tracks found to add to playlist")
		e.sendProgress(progress, noMatchesUpdate(1, 1))
		return result, nil
	}

	e.sendProgress(progress, addTracksUpdate(1, 1))

	for start := 0; start < len(uris); start += services.MaxTracksPerRequest {
		end := start + services.MaxTracksPerRequest
		if end > len(uris) {
			end = len(uris)
		}

		if err := catalog.AddTracks(ctx, handle.ID, uris[start:end]); err != nil {
			result.Warnings = append(result.Warnings, "Failed to add some tracks to playlist")
			e.sendProgress(progress, batchFailedUpdate(1, 1))
			continue
		}
		result.AddedCount += end - start
	}

	return result, nil
}

// resolve translates one recommendation into a track URI: cache hit,
// else first search track, else the first track of the first matched
// album, else no match.
func (e *DiscoveryEngine) resolve(ctx context.Context, progress chan<- ProgressUpdate, catalog services.CatalogService, step, total int, rec models.Recommendation) models.TrackMatch {
	match := models.TrackMatch{ArtistName: rec.ArtistName, AlbumName: rec.AlbumName}

	if e.cache != nil {
		if cached, ok := e.cache.LookupMatch(rec.ArtistName, rec.AlbumName); ok {
			e.sendProgress(progress, cachedMatchUpdate(step, total, *cached))
			return *cached
		}
	}

	result, err := catalog.SearchAlbumTrack(ctx, rec.AlbumName, rec.ArtistName)
	if err != nil {
		e.sendProgress(progress, searchFailedUpdate(step, total, rec))
		return match
	}

	switch {
	case len(result.Tracks) > 0:
		match.TrackURI = result.Tracks[0].URI
		match.Matched = true
		match.Via = models.MatchViaTrack
		e.sendProgress(progress, trackFoundUpdate(step, total, match))

	case len(result.Albums) > 0:
		tracks, err := catalog.AlbumTracks(ctx, result.Albums[0].URI, 1)
		if err != nil || len(tracks) == 0 {
			return match
		}
		match.TrackURI = tracks[0].URI
		match.Matched = true
		match.Via = models.MatchViaAlbum
		e.sendProgress(progress, albumTrackFoundUpdate(step, total, match))
	}

	if match.Matched && e.cache != nil {
		_ = e.cache.CacheMatch(match)
	}

	return match
}
