// Spotify API implementation of [CatalogService]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/shared"
)

const defaultSpotifyBaseURL = "https://api.spotify.com/v1"

// MaxTracksPerRequest is the write API's hard ceiling on URIs per
// track-addition call.
const MaxTracksPerRequest = 100

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyPlaylist represents a Spotify playlist as returned on creation.
type SpotifyPlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ExternalURLs externalURLs `json:"external_urls"`
}

// SpotifyTrack represents a Spotify track in search and album listings.
type SpotifyTrack struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album in search listings.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type pagedTracks struct {
	Items []SpotifyTrack `json:"items"`
}

type pagedAlbums struct {
	Items []SpotifyAlbum `json:"items"`
}

// searchResponse mirrors GET /search: either page may be absent depending on
// the requested types.
type searchResponse struct {
	Tracks *pagedTracks `json:"tracks"`
	Albums *pagedAlbums `json:"albums"`
}

// SpotifyService implements the CatalogService interface for the Spotify Web API.
//
// The bearer token is fixed at construction. It lives only in process memory
// for the duration of one run; nothing here persists or refreshes it.
type SpotifyService struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service bound to an access token.
//
// An empty baseURL selects the public Web API endpoint.
func NewSpotifyService(baseURL, token string) (*SpotifyService, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty access token", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = defaultSpotifyBaseURL
	}

	return &SpotifyService{
		baseURL:    baseURL,
		token:      token,
		httpClient: http.DefaultClient,
	}, nil
}

// Name returns the service name.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated HTTP request to the Spotify API.
// A non-nil body is marshaled to JSON as-is, so a []string becomes a bare
// JSON array.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	apiURL := s.baseURL + endpoint

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CreatePlaylist creates an empty playlist owned by userID.
//
// Calls POST /users/{id}/playlists. A rejected creation is wrapped as
// shared.ErrPlaylistCreate with the response status and body; there is no
// playlist to populate, so callers abort.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.PlaylistHandle, error) {
	body := struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	}{Name: name, Description: description, Public: public}

	var playlist SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPlaylistCreate, err)
	}

	return &models.PlaylistHandle{
		ID:        playlist.ID,
		PublicURL: playlist.ExternalURLs.Spotify,
	}, nil
}

// SearchAlbumTrack runs the compound album+artist search used during
// reconciliation.
//
// Calls GET /search?q=album:<album> artist:<artist>&type=album,track&limit=1.
func (s *SpotifyService) SearchAlbumTrack(ctx context.Context, album, artist string) (*SearchResult, error) {
	query := fmt.Sprintf("album:%s artist:%s", album, artist)
	endpoint := fmt.Sprintf("/search?q=%s&type=album,track&limit=1", url.QueryEscape(query))

	var response searchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	result := &SearchResult{}
	if response.Tracks != nil {
		for _, tr := range response.Tracks.Items {
			result.Tracks = append(result.Tracks, TrackResult{URI: tr.URI, Name: tr.Name})
		}
	}
	if response.Albums != nil {
		for _, al := range response.Albums.Items {
			result.Albums = append(result.Albums, AlbumResult{URI: al.URI, Name: al.Name})
		}
	}

	return result, nil
}

// AlbumTracks lists up to limit tracks of an album in album order.
//
// Calls GET /albums/{id}/tracks. Accepts either a bare album ID or a
// spotify:album: URI; the segment after the last colon is used.
func (s *SpotifyService) AlbumTracks(ctx context.Context, albumID string, limit int) ([]TrackResult, error) {
	if limit <= 0 {
		limit = 1
	}

	if idx := strings.LastIndex(albumID, ":"); idx >= 0 {
		albumID = albumID[idx+1:]
	}

	endpoint := fmt.Sprintf("/albums/%s/tracks?limit=%d", url.PathEscape(albumID), limit)

	var response pagedTracks
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]TrackResult, len(response.Items))
	for i, tr := range response.Items {
		tracks[i] = TrackResult{URI: tr.URI, Name: tr.Name}
	}

	return tracks, nil
}

// AddTracks appends track URIs to a playlist in the given order.
//
// Calls POST /playlists/{id}/tracks with a bare JSON array body. The write
// API caps each call at 100 URIs; callers chunk accordingly.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	if len(uris) > MaxTracksPerRequest {
		return fmt.Errorf("%w: at most %d URIs per call, got %d", shared.ErrInvalidInput, MaxTracksPerRequest, len(uris))
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPost, endpoint, uris, nil)
}
