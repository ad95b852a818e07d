// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/services"
)

// MockHistory is a test double for [services.HistoryService].
//
// Canned data is keyed by artist name; absent keys read as empty results.
type MockHistory struct {
	TopAlbumsData []models.ListeningRecord
	TopAlbumsErr  error
	Similar       map[string][]string
	TopAlbum      map[string]string
}

func (m *MockHistory) TopAlbums(ctx context.Context, username, period string, limit int) ([]models.ListeningRecord, error) {
	if m.TopAlbumsErr != nil {
		return nil, m.TopAlbumsErr
	}
	return m.TopAlbumsData, nil
}

func (m *MockHistory) SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error) {
	return m.Similar[artist], nil
}

func (m *MockHistory) TopAlbumForArtist(ctx context.Context, artist string) (string, error) {
	album, ok := m.TopAlbum[artist]
	if !ok {
		return "", fmt.Errorf("no top album for %s", artist)
	}
	return album, nil
}

func (m *MockHistory) Name() string { return "mock-history" }

// MockCatalog is a test double for [services.CatalogService].
//
// Search results are keyed "artist|album". Added records every AddTracks
// batch in call order.
type MockCatalog struct {
	Playlist  *models.PlaylistHandle
	CreateErr error
	Searches  map[string]*services.SearchResult
	SearchErr error
	AlbumData map[string][]services.TrackResult
	Added     [][]string
	AddErr    error
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.PlaylistHandle, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Playlist != nil {
		return m.Playlist, nil
	}
	return &models.PlaylistHandle{
		ID:        "mock_pl",
		PublicURL: "https://open.spotify.com/playlist/mock_pl",
	}, nil
}

func (m *MockCatalog) SearchAlbumTrack(ctx context.Context, album, artist string) (*services.SearchResult, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if result, ok := m.Searches[artist+"|"+album]; ok {
		return result, nil
	}
	return &services.SearchResult{}, nil
}

func (m *MockCatalog) AlbumTracks(ctx context.Context, albumURI string, limit int) ([]services.TrackResult, error) {
	return m.AlbumData[albumURI], nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	batch := make([]string, len(uris))
	copy(batch, uris)
	m.Added = append(m.Added, batch)
	return nil
}

func (m *MockCatalog) Name() string { return "mock-catalog" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
