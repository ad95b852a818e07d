package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/desertthunder/lfx/internal/formatter"
	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/shared"
	"github.com/desertthunder/lfx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Discover runs the discovery pass and prints, exports, or JSON-dumps the
// recommendations. Spotify is never touched.
func (r *Runner) Discover(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	exportFormat := cmd.String("export")
	outputBase := cmd.String("output")
	limit := cmd.Int("limit")
	period := cmd.String("period")

	if err := r.requireLastfm(); err != nil {
		return err
	}

	opts := r.discoveryOpts(limit, period)
	r.logger.Info("starting discovery", "username", opts.Username, "period", opts.Period)

	// Progress lines would corrupt machine-readable output.
	var progressCh chan tasks.ProgressUpdate
	var done <-chan struct{}
	if !useJSON {
		progressCh = make(chan tasks.ProgressUpdate, 50)
		done = r.discoveryPrinter(progressCh)
	}

	recommendations, err := r.engine.Discover(ctx, progressCh, opts)
	if progressCh != nil {
		close(progressCh)
		<-done
	}
	if err != nil {
		return err
	}

	if len(recommendations) == 0 {
		r.writePlain("❌ Couldn't find any recommendations.\n")
		return nil
	}

	export := &models.RunExport{
		Username:        opts.Username,
		Period:          opts.Period,
		GeneratedAt:     time.Now(),
		Recommendations: recommendations,
	}

	if useJSON {
		return r.writeJSON(export, true)
	}

	r.writePlain("\n✨ Found these recommendations:\n")
	for i, rec := range recommendations {
		r.writePlain("%d. %s - %s\n", i+1, rec.ArtistName, rec.AlbumName)
	}

	if exportFormat != "" {
		return r.exportRun(export, exportFormat, outputBase)
	}

	return nil
}

// discoveryPrinter consumes discovery progress on a goroutine. The returned
// channel closes once the stream is drained, so callers can keep summaries
// from interleaving with progress lines.
func (r *Runner) discoveryPrinter(progressCh <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchHistory:
				r.writePlain("%s\n", update.Message)
			case tasks.FindSimilar:
				if update.Data != nil {
					r.writePlain("  %s\n", update.Message)
				} else {
					r.writePlain("%s\n", update.Message)
				}
			}
		}
	}()
	return done
}

// exportRun writes the run to disk in the requested format.
func (r *Runner) exportRun(export *models.RunExport, format, base string) error {
	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, base)
		if err != nil {
			return fmt.Errorf("failed to export CSV: %w", err)
		}
		r.writePlain("\n✓ Recommendations exported to %s\n", result.RecommendationsFile)
		r.writePlain("✓ Run metadata written to %s\n", result.RunFile)
	case "markdown", "md":
		result, err := formatter.WriteMarkdownExport(export, base)
		if err != nil {
			return fmt.Errorf("failed to export Markdown: %w", err)
		}
		r.writePlain("\n✓ Exported to %s\n", filepath.Join(result.Directory, "README.md"))
	case "text", "txt":
		path, err := formatter.WriteTextExport(export, base)
		if err != nil {
			return fmt.Errorf("failed to export text: %w", err)
		}
		r.writePlain("\n✓ Exported to %s\n", path)
	case "json":
		path, err := formatter.WriteJSONExport(export, base)
		if err != nil {
			return fmt.Errorf("failed to export JSON: %w", err)
		}
		r.writePlain("\n✓ Exported to %s\n", path)
	default:
		return fmt.Errorf("%w: unknown export format %q (want csv, markdown, text, or json)", shared.ErrInvalidFlag, format)
	}

	return nil
}
