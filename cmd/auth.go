package main

import (
	"context"

	"github.com/desertthunder/lfx/internal/server"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Auth walks through the Spotify authorization flow once, as a smoke test of
// the credentials and redirect URI. The token stays in memory and is gone when
// the process exits.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSpotify(); err != nil {
		return err
	}

	r.writePlain("🔐 Starting Spotify authorization...\n")

	token, err := r.authorize(ctx, cmd.Int("timeout"))
	if err != nil {
		return err
	}

	r.logger.Info("authorization successful", "expiry", token.Expiry)

	r.writePlainln("✓ Authorization successful")
	return r.writePlain("Token valid until %s. Tokens live in memory only, so playlist commands will prompt again.\n",
		token.Expiry.Format("15:04:05"))
}

// authorize runs the browser-and-callback dance. A positive timeoutSeconds
// overrides the configured callback timeout for this call only.
func (r *Runner) authorize(ctx context.Context, timeoutSeconds int) (*oauth2.Token, error) {
	cfg := *r.config
	if timeoutSeconds > 0 {
		cfg.Server.TimeoutSeconds = timeoutSeconds
	}
	return server.NewAuthorizer(&cfg, r.output).Authorize(ctx)
}
