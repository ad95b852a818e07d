package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/shared"
)

// TrackMatchRepository implements models.Repository[*models.TrackMatchRecord] for match caching.
//
// Handles resolved-match persistence with soft delete support and (artist, album) lookups.
// Matches are recorded after every successful resolution so later runs can skip the search.
type TrackMatchRepository struct {
	db *sql.DB
}

// NewTrackMatchRepository creates a new TrackMatchRepository with the given database connection
func NewTrackMatchRepository(db *sql.DB) *TrackMatchRepository {
	return &TrackMatchRepository{db: db}
}

// Create inserts a new [models.TrackMatchRecord] into the database with generated ID and sequence
func (r *TrackMatchRepository) Create(match *models.TrackMatchRecord) error {
	sequence, err := NextSequence(r.db, "track_matches")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	match.SetID(id)

	if err := match.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO track_matches (id, sequence, artist, album, track_uri, via, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		match.Artist(),
		match.Album(),
		match.TrackURI(),
		string(match.Via()),
		match.CreatedAt(),
		match.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track match: %w", err)
	}

	return nil
}

// Get retrieves a track match by ID, excluding soft-deleted matches
func (r *TrackMatchRepository) Get(id string) (*models.TrackMatchRecord, error) {
	query := `
		SELECT id, sequence, artist, album, track_uri, via, created_at, updated_at, deleted_at
		FROM track_matches
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByArtistAlbum retrieves a track match by its (artist, album) pair
func (r *TrackMatchRepository) GetByArtistAlbum(artist, album string) (*models.TrackMatchRecord, error) {
	query := `
		SELECT id, sequence, artist, album, track_uri, via, created_at, updated_at, deleted_at
		FROM track_matches
		WHERE artist = ? AND album = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, artist, album))
}

// Update modifies an existing track match in the database
func (r *TrackMatchRepository) Update(match *models.TrackMatchRecord) error {
	if err := match.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	match.SetUpdatedAt(now)

	query := `
		UPDATE track_matches
		SET track_uri = ?, via = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		match.TrackURI(),
		string(match.Via()),
		now,
		match.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update track match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("track match not found or already deleted: %s", match.ID())
	}

	return nil
}

// Delete soft-deletes a track match by ID
func (r *TrackMatchRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE track_matches
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete track match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("track match not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all track matches matching the given criteria, excluding soft-deleted matches
func (r *TrackMatchRepository) List(criteria map[string]any) ([]*models.TrackMatchRecord, error) {
	query := `
		SELECT id, sequence, artist, album, track_uri, via, created_at, updated_at, deleted_at
		FROM track_matches
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	if via, ok := criteria["via"].(string); ok && via != "" {
		query += " AND via = ?"
		args = append(args, via)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.TrackMatchRecord
	for rows.Next() {
		match, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return matches, nil
}

// scanOne scans a single [sql.Row] into a [models.TrackMatchRecord]
func (r *TrackMatchRepository) scanOne(row *sql.Row) (*models.TrackMatchRecord, error) {
	var (
		id        string
		sequence  int
		artist    string
		album     string
		trackURI  string
		via       string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &artist, &album, &trackURI, &via, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("track match not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track match: %w", err)
	}

	dto := models.TrackMatch{
		ArtistName: artist,
		AlbumName:  album,
		TrackURI:   trackURI,
		Matched:    true,
		Via:        models.MatchVia(via),
	}

	match := models.NewTrackMatchRecord(sequence, dto)
	match.SetID(id)
	match.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		match.SetDeletedAt(&deletedAt.Time)
	}

	return match, nil
}

// scanRow scans a row from [sql.Rows] into a [models.TrackMatchRecord]
func (r *TrackMatchRepository) scanRow(rows *sql.Rows) (*models.TrackMatchRecord, error) {
	var (
		id        string
		sequence  int
		artist    string
		album     string
		trackURI  string
		via       string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &artist, &album, &trackURI, &via, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan track match: %w", err)
	}

	dto := models.TrackMatch{
		ArtistName: artist,
		AlbumName:  album,
		TrackURI:   trackURI,
		Matched:    true,
		Via:        models.MatchVia(via),
	}

	match := models.NewTrackMatchRecord(sequence, dto)
	match.SetID(id)
	match.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		match.SetDeletedAt(&deletedAt.Time)
	}

	return match, nil
}
