package services

import (
	"context"

	"github.com/desertthunder/lfx/internal/models"
)

// HistoryService reads listening history and the similar-artist graph from
// the source catalog.
type HistoryService interface {
	// TopAlbums retrieves the user's most played albums within a period
	// window, most played first. Failure is fatal to a discovery run: with
	// no history there is nothing to work from.
	TopAlbums(ctx context.Context, user, period string, limit int) ([]models.ListeningRecord, error)

	// SimilarArtists retrieves artists similar to the given one, most
	// similar first. Failures are non-fatal; callers treat them as absence.
	SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error)

	// TopAlbumForArtist retrieves the artist's single most popular album.
	// An artist without ranked albums yields shared.ErrNoResults.
	TopAlbumForArtist(ctx context.Context, artist string) (string, error)

	// Name returns the service name (e.g., "Last.fm")
	Name() string
}

// CatalogService creates and populates playlists on the destination catalog.
type CatalogService interface {
	// CreatePlaylist creates an empty playlist owned by userID.
	// Failure is fatal: there is no playlist to populate.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.PlaylistHandle, error)

	// SearchAlbumTrack runs a compound album+artist search returning track
	// and album candidates.
	SearchAlbumTrack(ctx context.Context, album, artist string) (*SearchResult, error)

	// AlbumTracks lists up to limit tracks of an album.
	AlbumTracks(ctx context.Context, albumID string, limit int) ([]TrackResult, error)

	// AddTracks appends track URIs to a playlist, at most 100 per call.
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// Name returns the service name (e.g., "Spotify")
	Name() string
}

// SearchResult carries the track and album candidates a compound catalog
// search returned. Either list may be empty.
type SearchResult struct {
	Tracks []TrackResult
	Albums []AlbumResult
}

// TrackResult identifies one addressable track on the destination catalog.
type TrackResult struct {
	URI  string
	Name string
}

// AlbumResult identifies one album on the destination catalog.
type AlbumResult struct {
	URI  string
	Name string
}
