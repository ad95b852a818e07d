// Last.fm API [HistoryService] implementation
//
// Wraps the audioscrobbler 2.0 read API. Every call carries api_key and
// format=json; responses are JSON envelopes with nested album/artist arrays.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/shared"
	"golang.org/x/time/rate"
)

const defaultLastfmBaseURL string = "http://ws.audioscrobbler.com/2.0/"

// LastfmService implements the HistoryService interface for the Last.fm read API.
//
// Requests are paced by a client-side rate limiter out of politeness toward
// the free API tier. Pacing is not a retry or backoff mechanism; failed calls
// stay failed.
type LastfmService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewLastfmService creates a new Last.fm service instance.
//
// An empty baseURL selects the public audioscrobbler endpoint; rps bounds
// outbound requests per second (defaults to 4).
func NewLastfmService(baseURL, apiKey string, rps float64) *LastfmService {
	if baseURL == "" {
		baseURL = defaultLastfmBaseURL
	}
	if rps <= 0 {
		rps = 4
	}

	return &LastfmService{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Name returns the service name.
func (l *LastfmService) Name() string {
	return "Last.fm"
}

func (l *LastfmService) doRequest(ctx context.Context, apiMethod string, params url.Values, result any) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	params.Set("method", apiMethod)
	params.Set("api_key", l.apiKey)
	params.Set("format", "json")

	apiURL := l.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error   int    `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// TopAlbums retrieves the user's most played albums within the period window.
//
// Calls method=user.gettopalbums. Any failure is wrapped as
// shared.ErrHistoryUnavailable since a run cannot proceed without history.
func (l *LastfmService) TopAlbums(ctx context.Context, user, period string, limit int) ([]models.ListeningRecord, error) {
	if period == "" {
		period = "6month"
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("user", user)
	params.Set("period", period)
	params.Set("limit", strconv.Itoa(limit))

	var envelope struct {
		TopAlbums struct {
			Album []struct {
				Name   string `json:"name"`
				Artist struct {
					Name string `json:"name"`
				} `json:"artist"`
			} `json:"album"`
		} `json:"topalbums"`
	}

	if err := l.doRequest(ctx, "user.gettopalbums", params, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrHistoryUnavailable, err)
	}

	records := make([]models.ListeningRecord, len(envelope.TopAlbums.Album))
	for i, album := range envelope.TopAlbums.Album {
		records[i] = models.ListeningRecord{
			ArtistName: album.Artist.Name,
			AlbumName:  album.Name,
		}
	}

	return records, nil
}

// SimilarArtists retrieves artists similar to the given one, most similar first.
//
// Calls method=artist.getsimilar.
func (l *LastfmService) SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("artist", artist)
	params.Set("limit", strconv.Itoa(limit))

	var envelope struct {
		SimilarArtists struct {
			Artist []struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"similarartists"`
	}

	if err := l.doRequest(ctx, "artist.getsimilar", params, &envelope); err != nil {
		return nil, err
	}

	names := make([]string, len(envelope.SimilarArtists.Artist))
	for i, a := range envelope.SimilarArtists.Artist {
		names[i] = a.Name
	}

	return names, nil
}

// TopAlbumForArtist retrieves the artist's single most popular album.
//
// Calls method=artist.gettopalbums with limit=1. An empty album list yields
// shared.ErrNoResults, which callers treat as absence rather than failure.
func (l *LastfmService) TopAlbumForArtist(ctx context.Context, artist string) (string, error) {
	params := url.Values{}
	params.Set("artist", artist)
	params.Set("limit", "1")

	var envelope struct {
		TopAlbums struct {
			Album []struct {
				Name string `json:"name"`
			} `json:"album"`
		} `json:"topalbums"`
	}

	if err := l.doRequest(ctx, "artist.gettopalbums", params, &envelope); err != nil {
		return "", err
	}

	if len(envelope.TopAlbums.Album) == 0 {
		return "", fmt.Errorf("%w: no ranked albums for %s", shared.ErrNoResults, artist)
	}

	return envelope.TopAlbums.Album[0].Name, nil
}
