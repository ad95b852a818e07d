package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/repositories"
	"github.com/desertthunder/lfx/internal/server"
	"github.com/desertthunder/lfx/internal/services"
	"github.com/desertthunder/lfx/internal/shared"
	"github.com/desertthunder/lfx/internal/tasks"
	"github.com/desertthunder/lfx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI: browse recommendations, toggle
// the ones you want, and build the playlist without leaving the screen.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLastfm(); err != nil {
		return err
	}
	if err := r.requireSpotify(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/lfx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine := r.engine
	if r.config.Cache.Enabled {
		if _, err := os.Stat(r.config.Database.Path); err == nil {
			db, err := r.openDatabase()
			if err != nil {
				r.logger.Warn("match cache disabled", "error", err)
			} else {
				defer db.Close()
				cache := repositories.NewMatchCacheAdapter(repositories.NewTrackMatchRepository(db))
				engine = tasks.NewDiscoveryEngine(r.history, cache)
			}
		}
	}

	// Authorization happens mid-build, so the catalog client cannot exist when
	// the model is constructed. The model calls back here instead; Authorizer
	// output goes to io.Discard because stdout belongs to the TUI.
	build := func(ctx context.Context, recommendations []models.Recommendation, progress chan<- tasks.ProgressUpdate) (*tasks.BuildResult, error) {
		if progress != nil {
			select {
			case progress <- tasks.ProgressUpdate{Phase: tasks.Authorize, Message: "Waiting for Spotify authorization in your browser..."}:
			default:
			}
		}

		token, err := server.NewAuthorizer(r.config, io.Discard).Authorize(ctx)
		if err != nil {
			return nil, err
		}

		catalog, err := services.NewSpotifyService("", token.AccessToken)
		if err != nil {
			return nil, err
		}

		return engine.Build(ctx, progress, catalog, recommendations, tasks.BuildOpts{
			UserID:      r.config.Spotify.UserID,
			Name:        r.config.Playlist.Name,
			Description: r.config.Playlist.Description,
			Public:      r.config.Playlist.Public,
		})
	}

	model := ui.NewModel(ctx, engine, r.discoveryOpts(0, ""), build)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
