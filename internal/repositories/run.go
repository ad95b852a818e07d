package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/shared"
)

// RunRepository implements models.Repository[*models.Run] for discovery run tracking.
//
// Handles run CRUD operations with soft delete support and status-based queries.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (
			id, sequence, username, period, status, recommendation_count,
			matched_count, added_count, playlist_id, playlist_url,
			error_message, started_at, completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var playlistID any = run.PlaylistID()
	if playlistID == "" {
		playlistID = nil
	}

	var playlistURL any = run.PlaylistURL()
	if playlistURL == "" {
		playlistURL = nil
	}

	var errorMessage any = run.ErrorMessage()
	if errorMessage == "" {
		errorMessage = nil
	}

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.Username(),
		run.Period(),
		run.Status(),
		run.RecommendationCount(),
		run.MatchedCount(),
		run.AddedCount(),
		playlistID,
		playlistURL,
		errorMessage,
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `
		SELECT
			id, sequence, username, period, status, recommendation_count,
			matched_count, added_count, playlist_id, playlist_url,
			error_message, started_at, completed_at, created_at, updated_at,
			deleted_at
		FROM runs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing run in the database
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET status = ?, recommendation_count = ?, matched_count = ?,
			added_count = ?, playlist_id = ?, playlist_url = ?,
			error_message = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	var playlistID any = run.PlaylistID()
	if playlistID == "" {
		playlistID = nil
	}

	var playlistURL any = run.PlaylistURL()
	if playlistURL == "" {
		playlistURL = nil
	}

	var errorMessage any = run.ErrorMessage()
	if errorMessage == "" {
		errorMessage = nil
	}

	result, err := r.db.Exec(query,
		run.Status(),
		run.RecommendationCount(),
		run.MatchedCount(),
		run.AddedCount(),
		playlistID,
		playlistURL,
		errorMessage,
		run.StartedAt(),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", run.ID())
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all runs matching the given criteria, excluding soft-deleted runs.
//
// Results are ordered newest first. A "limit" criterion caps the result count.
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `
		SELECT
			id, sequence, username, period, status, recommendation_count,
			matched_count, added_count, playlist_id, playlist_url,
			error_message, started_at, completed_at, created_at, updated_at,
			deleted_at
		FROM runs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if username, ok := criteria["username"].(string); ok && username != "" {
		query += " AND username = ?"
		args = append(args, username)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanOne scans a single [sql.Row] into a [models.Run]
func (r *RunRepository) scanOne(row *sql.Row) (*models.Run, error) {
	var (
		id                  string
		sequence            int
		username            string
		period              string
		status              string
		recommendationCount int
		matchedCount        int
		addedCount          int
		playlistID          sql.NullString
		playlistURL         sql.NullString
		errorMessage        sql.NullString
		startedAt           sql.NullTime
		completedAt         sql.NullTime
		createdAt           time.Time
		updatedAt           time.Time
		deletedAt           sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &username, &period, &status, &recommendationCount,
		&matchedCount, &addedCount, &playlistID, &playlistURL,
		&errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt,
		&deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewRun(sequence, username, period)
	run.SetID(id)
	run.SetUpdatedAt(updatedAt)

	run.SetStatus(status)
	run.SetRecommendationCount(recommendationCount)
	run.SetMatchedCount(matchedCount)
	run.SetAddedCount(addedCount)
	if playlistID.Valid {
		run.SetPlaylistID(playlistID.String)
	}
	if playlistURL.Valid {
		run.SetPlaylistURL(playlistURL.String)
	}
	if errorMessage.Valid {
		run.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		run.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Run]
func (r *RunRepository) scanRow(rows *sql.Rows) (*models.Run, error) {
	var (
		id                  string
		sequence            int
		username            string
		period              string
		status              string
		recommendationCount int
		matchedCount        int
		addedCount          int
		playlistID          sql.NullString
		playlistURL         sql.NullString
		errorMessage        sql.NullString
		startedAt           sql.NullTime
		completedAt         sql.NullTime
		createdAt           time.Time
		updatedAt           time.Time
		deletedAt           sql.NullTime
	)

	err := rows.Scan(
		&id, &sequence, &username, &period, &status, &recommendationCount,
		&matchedCount, &addedCount, &playlistID, &playlistURL,
		&errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewRun(sequence, username, period)
	run.SetID(id)
	run.SetUpdatedAt(updatedAt)

	run.SetStatus(status)
	run.SetRecommendationCount(recommendationCount)
	run.SetMatchedCount(matchedCount)
	run.SetAddedCount(addedCount)
	if playlistID.Valid {
		run.SetPlaylistID(playlistID.String)
	}
	if playlistURL.Valid {
		run.SetPlaylistURL(playlistURL.String)
	}
	if errorMessage.Valid {
		run.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		run.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
