package models

import (
	"fmt"
	"time"
)

// Run status values persisted in the runs table.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run records a single discovery run: the history window it read, how many
// recommendations it produced, and the playlist it built.
type Run struct {
	id                  string
	sequence            int
	username            string
	period              string
	status              string
	recommendationCount int
	matchedCount        int
	addedCount          int
	playlistID          string
	playlistURL         string
	errorMessage        string
	startedAt           *time.Time
	completedAt         *time.Time
	createdAt           time.Time
	updatedAt           time.Time
	deletedAt           *time.Time
}

// NewRun creates a pending Run for the given listener and history window.
func NewRun(sequence int, username, period string) *Run {
	now := time.Now()
	return &Run{
		sequence:  sequence,
		username:  username,
		period:    period,
		status:    RunStatusPending,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) ID() string               { return r.id }
func (r *Run) Sequence() int            { return r.sequence }
func (r *Run) Username() string         { return r.username }
func (r *Run) Period() string           { return r.period }
func (r *Run) Status() string           { return r.status }
func (r *Run) RecommendationCount() int { return r.recommendationCount }
func (r *Run) MatchedCount() int        { return r.matchedCount }
func (r *Run) AddedCount() int          { return r.addedCount }
func (r *Run) PlaylistID() string       { return r.playlistID }
func (r *Run) PlaylistURL() string      { return r.playlistURL }
func (r *Run) ErrorMessage() string     { return r.errorMessage }
func (r *Run) StartedAt() *time.Time    { return r.startedAt }
func (r *Run) CompletedAt() *time.Time  { return r.completedAt }
func (r *Run) CreatedAt() time.Time     { return r.createdAt }
func (r *Run) UpdatedAt() time.Time     { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time    { return r.deletedAt }

func (r *Run) SetID(id string)              { r.id = id }
func (r *Run) SetSequence(sequence int)     { r.sequence = sequence }
func (r *Run) SetStatus(status string)      { r.status = status }
func (r *Run) SetRecommendationCount(n int) { r.recommendationCount = n }
func (r *Run) SetMatchedCount(n int)        { r.matchedCount = n }
func (r *Run) SetAddedCount(n int)          { r.addedCount = n }
func (r *Run) SetPlaylistID(id string)      { r.playlistID = id }
func (r *Run) SetPlaylistURL(url string)    { r.playlistURL = url }
func (r *Run) SetErrorMessage(msg string)   { r.errorMessage = msg }
func (r *Run) SetStartedAt(t *time.Time)    { r.startedAt = t }
func (r *Run) SetCompletedAt(t *time.Time)  { r.completedAt = t }
func (r *Run) SetUpdatedAt(t time.Time)     { r.updatedAt = t }
func (r *Run) SetDeletedAt(t *time.Time)    { r.deletedAt = t }

// Validate checks that the run carries a listener, a history window, a known
// status, and non-negative counters
func (r *Run) Validate() error {
	if r.username == "" {
		return fmt.Errorf("run username is required")
	}
	if r.period == "" {
		return fmt.Errorf("run period is required")
	}
	switch r.status {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusFailed:
	default:
		return fmt.Errorf("invalid run status: %s", r.status)
	}
	if r.recommendationCount < 0 || r.matchedCount < 0 || r.addedCount < 0 {
		return fmt.Errorf("run counts cannot be negative")
	}
	return nil
}
