// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand writes the starter config file and initializes the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config file",
			},
		},
		Action: r.Setup,
	}
}

// discoverCommand runs the discovery pass without touching Spotify.
func discoverCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "discover",
		Aliases: []string{"d"},
		Usage:   "Find album recommendations from your Last.fm history",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Export format: csv, markdown, text, json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Base path for exported files",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum recommendations to emit",
			},
			&cli.StringFlag{
				Name:    "period",
				Aliases: []string{"p"},
				Usage:   "History window (7day, 1month, 3month, 6month, 12month, overall)",
			},
		},
		Action: r.Discover,
	}
}

// authCommand runs the loopback authorization flow end to end.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Test Spotify authorization without building a playlist",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Seconds to wait for the browser callback",
			},
		},
		Action: r.Auth,
	}
}

// runCommand executes the full discover → authorize → build pipeline.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Discover recommendations and build a Spotify playlist from them",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Stop after printing recommendations",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
			&cli.BoolFlag{
				Name:  "public",
				Usage: "Create a public playlist",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Playlist name",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum recommendations to emit",
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Do not open the finished playlist in a browser",
			},
		},
		Action: r.Run,
	}
}

// historyCommand lists past runs recorded in the database.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past discovery runs",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum runs to list",
				Value:   10,
			},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for interactive discovery runs.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive discover/confirm/build interface",
		Action:  r.TUI,
	}
}
