package main

import (
	"context"
	"os"

	"github.com/desertthunder/lfx/internal/services"
	"github.com/desertthunder/lfx/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	// A missing .env is the normal case; config.toml and real environment
	// variables cover it.
	_ = godotenv.Load()

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}
	config.ApplyEnv()

	var history services.HistoryService
	if config.Lastfm.APIKey != "" {
		history = services.NewLastfmService("", config.Lastfm.APIKey, config.Lastfm.RequestsPerSecond)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		History:    history,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "lfx",
		Usage:    "Discover new music from your Last.fm history and build Spotify playlists",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error(err.Error())
		os.Exit(shared.ExitCode(err))
	}
}
