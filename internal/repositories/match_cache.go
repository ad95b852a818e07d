package repositories

import (
	"fmt"
	"strings"

	"github.com/desertthunder/lfx/internal/models"
)

// MatchCacheAdapter implements tasks.MatchCacher using TrackMatchRepository.
//
// Provides automatic match caching with deduplication via the (artist, album) constraint.
// Duplicate matches are silently ignored (UNIQUE constraint violations).
type MatchCacheAdapter struct {
	repo *TrackMatchRepository
}

// NewMatchCacheAdapter creates a new MatchCacheAdapter with the given repository
func NewMatchCacheAdapter(repo *TrackMatchRepository) *MatchCacheAdapter {
	return &MatchCacheAdapter{repo: repo}
}

// LookupMatch returns the cached match for an (artist, album) pair, stamped
// with cache provenance. The second return reports whether a match was found;
// lookup failures read as misses.
func (a *MatchCacheAdapter) LookupMatch(artist, album string) (*models.TrackMatch, bool) {
	record, err := a.repo.GetByArtistAlbum(artist, album)
	if err != nil {
		return nil, false
	}

	match := record.Match()
	match.Via = models.MatchViaCache
	return &match, true
}

// CacheMatch records a resolved match.
// Returns nil if the (artist, album) pair already exists (deduplication).
// Only returns errors for actual failures (not constraint violations).
func (a *MatchCacheAdapter) CacheMatch(match models.TrackMatch) error {
	existing, err := a.repo.GetByArtistAlbum(match.ArtistName, match.AlbumName)
	if err == nil && existing != nil {
		return nil
	}

	record := models.NewTrackMatchRecord(0, match)

	err = a.repo.Create(record)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache match: %w", err)
	}

	return nil
}
