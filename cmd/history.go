package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/repositories"
	"github.com/desertthunder/lfx/internal/shared"
	"github.com/urfave/cli/v3"
)

// runView is the JSON shape for a recorded run.
type runView struct {
	ID              string     `json:"id"`
	Sequence        int        `json:"sequence"`
	Username        string     `json:"username"`
	Period          string     `json:"period"`
	Status          string     `json:"status"`
	Recommendations int        `json:"recommendations"`
	Matched         int        `json:"matched"`
	Added           int        `json:"added"`
	PlaylistID      string     `json:"playlist_id,omitempty"`
	PlaylistURL     string     `json:"playlist_url,omitempty"`
	Error           string     `json:"error,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

func newRunView(run *models.Run) runView {
	return runView{
		ID:              run.ID(),
		Sequence:        run.Sequence(),
		Username:        run.Username(),
		Period:          run.Period(),
		Status:          run.Status(),
		Recommendations: run.RecommendationCount(),
		Matched:         run.MatchedCount(),
		Added:           run.AddedCount(),
		PlaylistID:      run.PlaylistID(),
		PlaylistURL:     run.PlaylistURL(),
		Error:           run.ErrorMessage(),
		StartedAt:       run.StartedAt(),
		CompletedAt:     run.CompletedAt(),
	}
}

// History lists recorded runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	limit := cmd.Int("limit")

	if _, err := os.Stat(r.config.Database.Path); err != nil {
		return fmt.Errorf("%w: database not found at %s (run 'lfx setup' first)", shared.ErrMissingConfig, r.config.Database.Path)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if limit > 0 {
		criteria["limit"] = limit
	}

	runs, err := repositories.NewRunRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if useJSON {
		views := make([]runView, 0, len(runs))
		for _, run := range runs {
			views = append(views, newRunView(run))
		}
		return r.writeJSON(views, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet. Try 'lfx run'.\n")
	}

	for _, run := range runs {
		r.writePlain("#%d [%s] %s (%s)\n", run.Sequence(), run.Status(), run.Username(), run.Period())
		if started := run.StartedAt(); started != nil {
			r.writePlain("   Started: %s\n", started.Format("2006-01-02 15:04"))
		}
		r.writePlain("   Recommendations: %d, matched %d, added %d\n", run.RecommendationCount(), run.MatchedCount(), run.AddedCount())
		if url := run.PlaylistURL(); url != "" {
			r.writePlain("   Playlist: %s\n", url)
		}
		if msg := run.ErrorMessage(); msg != "" {
			r.writePlain("   Error: %s\n", msg)
		}
		r.writePlain("\n")
	}

	return nil
}
