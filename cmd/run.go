package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/repositories"
	"github.com/desertthunder/lfx/internal/services"
	"github.com/desertthunder/lfx/internal/shared"
	"github.com/desertthunder/lfx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Run executes the whole pipeline: discover recommendations, confirm,
// authorize with Spotify, and build the playlist. Every run is recorded in
// the local database when one exists; storage trouble degrades to a warning
// and never blocks the pipeline.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	dryRun := cmd.Bool("dry-run")
	skipConfirm := cmd.Bool("yes")
	public := cmd.Bool("public")
	nameOverride := cmd.String("name")
	limit := cmd.Int("limit")
	noBrowser := cmd.Bool("no-browser")

	if err := r.requireLastfm(); err != nil {
		return err
	}
	if !dryRun {
		if err := r.requireSpotify(); err != nil {
			return err
		}
	}

	opts := r.discoveryOpts(limit, "")
	r.logger.Info("starting run", "username", opts.Username, "period", opts.Period, "dry_run", dryRun)

	db, runs, run := r.beginRun(opts)
	if db != nil {
		defer db.Close()
	}

	engine := r.engine
	if r.config.Cache.Enabled && db != nil {
		cache := repositories.NewMatchCacheAdapter(repositories.NewTrackMatchRepository(db))
		engine = tasks.NewDiscoveryEngine(r.history, cache)
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := r.discoveryPrinter(progressCh)
	recommendations, err := engine.Discover(ctx, progressCh, opts)
	close(progressCh)
	<-done
	if err != nil {
		r.failRun(runs, run, err)
		return err
	}

	if len(recommendations) == 0 {
		r.writePlain("❌ Couldn't find any recommendations.\n")
		r.completeRun(runs, run, 0, nil)
		return nil
	}

	r.writePlain("\n✨ Found these recommendations:\n")
	for i, rec := range recommendations {
		r.writePlain("%d. %s - %s\n", i+1, rec.ArtistName, rec.AlbumName)
	}

	if dryRun {
		r.writePlain("\nDry run: no playlist created.\n")
		r.completeRun(runs, run, len(recommendations), nil)
		return nil
	}

	if !skipConfirm {
		ok, err := r.confirm("\nCreate a Spotify playlist from %d recommendations? [y/N]: ", len(recommendations))
		if err != nil {
			r.failRun(runs, run, err)
			return err
		}
		if !ok {
			r.writePlain("Aborted.\n")
			r.completeRun(runs, run, len(recommendations), nil)
			return nil
		}
	}

	r.writePlain("\n🔐 Starting Spotify authorization...\n")
	token, err := r.authorize(ctx, 0)
	if err != nil {
		r.failRun(runs, run, err)
		return err
	}

	catalog, err := services.NewSpotifyService("", token.AccessToken)
	if err != nil {
		r.failRun(runs, run, err)
		return err
	}

	buildOpts := tasks.BuildOpts{
		UserID:      r.config.Spotify.UserID,
		Name:        r.config.Playlist.Name,
		Description: r.config.Playlist.Description,
		Public:      r.config.Playlist.Public || public,
	}
	if nameOverride != "" {
		buildOpts.Name = nameOverride
	}

	progressCh = make(chan tasks.ProgressUpdate, 50)
	done = r.buildPrinter(progressCh)
	result, err := engine.Build(ctx, progressCh, catalog, recommendations, buildOpts)
	close(progressCh)
	<-done
	if err != nil {
		r.writePlain("\n❌ Failed to create Spotify playlist: %s\n", err)
		r.failRun(runs, run, err)
		return err
	}

	r.writePlainHeader("✅ Successfully created Spotify playlist!")
	r.writePlain("Matched: %d/%d recommendations\n", result.MatchedCount, len(recommendations))
	r.writePlain("Added: %d tracks\n", result.AddedCount)
	r.writePlain("🎵 Open your playlist here: %s\n", result.Playlist.PublicURL)

	skipped := 0
	for _, match := range result.Matches {
		if !match.Matched {
			skipped++
		}
	}
	if skipped > 0 {
		r.writePlain("\nNo match found for %d recommendations:\n", skipped)
		for _, match := range result.Matches {
			if !match.Matched {
				r.writePlain("  - %s - %s\n", match.ArtistName, match.AlbumName)
			}
		}
	}

	if !noBrowser {
		if err := shared.OpenBrowser(result.Playlist.PublicURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	r.completeRun(runs, run, len(recommendations), result)
	return nil
}

// buildPrinter consumes build progress on a goroutine, mirroring
// discoveryPrinter for the playlist phases.
func (r *Runner) buildPrinter(progressCh <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.CreatePlaylist:
				r.writePlain("\n📝 %s\n", update.Message)
			case tasks.SearchTracks:
				if update.Step == 0 {
					r.writePlain("\n🔍 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.AddTracks:
				r.writePlain("\n➕ %s\n", update.Message)
			}
		}
	}()
	return done
}

// beginRun opens the run ledger if the database exists. A missing or broken
// database returns nils; callers treat that as history disabled.
func (r *Runner) beginRun(opts tasks.DiscoveryOpts) (*sql.DB, *repositories.RunRepository, *models.Run) {
	if _, err := os.Stat(r.config.Database.Path); err != nil {
		r.logger.Warn("run history disabled: database not found (run 'lfx setup' to create it)", "path", r.config.Database.Path)
		return nil, nil, nil
	}

	db, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("run history disabled", "error", err)
		return nil, nil, nil
	}

	run := models.NewRun(0, opts.Username, opts.Period)
	now := time.Now()
	run.SetStartedAt(&now)
	run.SetStatus(models.RunStatusRunning)

	runs := repositories.NewRunRepository(db)
	if err := runs.Create(run); err != nil {
		r.logger.Warn("failed to record run", "error", err)
		db.Close()
		return nil, nil, nil
	}

	return db, runs, run
}

// completeRun marks the run completed. A nil result covers the discovery-only
// outcomes: dry runs, aborted confirmations, and empty discoveries.
func (r *Runner) completeRun(runs *repositories.RunRepository, run *models.Run, recommendations int, result *tasks.BuildResult) {
	if runs == nil || run == nil {
		return
	}

	now := time.Now()
	run.SetStatus(models.RunStatusCompleted)
	run.SetRecommendationCount(recommendations)
	run.SetCompletedAt(&now)
	if result != nil {
		run.SetMatchedCount(result.MatchedCount)
		run.SetAddedCount(result.AddedCount)
		if result.Playlist != nil {
			run.SetPlaylistID(result.Playlist.ID)
			run.SetPlaylistURL(result.Playlist.PublicURL)
		}
	}

	if err := runs.Update(run); err != nil {
		r.logger.Warn("failed to update run record", "error", err)
	}
}

// failRun marks the run failed with the causing error.
func (r *Runner) failRun(runs *repositories.RunRepository, run *models.Run, cause error) {
	if runs == nil || run == nil {
		return
	}

	now := time.Now()
	run.SetStatus(models.RunStatusFailed)
	run.SetErrorMessage(cause.Error())
	run.SetCompletedAt(&now)

	if err := runs.Update(run); err != nil {
		r.logger.Warn("failed to update run record", "error", err)
	}
}
