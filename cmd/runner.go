package main

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lfx/internal/services"
	"github.com/desertthunder/lfx/internal/shared"
	"github.com/desertthunder/lfx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	history    services.HistoryService
	engine     tasks.Engine
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	History    services.HistoryService
	Engine     tasks.Engine
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Engine == nil && opts.History != nil {
		opts.Engine = tasks.NewDiscoveryEngine(opts.History, nil)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		history:    opts.History,
		engine:     opts.Engine,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

// SetLogger swaps the runner's logger, e.g. for file logging during the TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, discoverCommand, authCommand, runCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireLastfm checks that the discovery side of the pipeline is usable.
func (r *Runner) requireLastfm() error {
	if r.engine == nil {
		return fmt.Errorf("%w: lastfm api_key (set LASTFM_API_KEY or lastfm.api_key)", shared.ErrMissingCredentials)
	}
	if r.config.Lastfm.Username == "" {
		return fmt.Errorf("%w: lastfm username (set LASTFM_USERNAME or lastfm.username)", shared.ErrMissingCredentials)
	}
	return nil
}

// requireSpotify checks that the catalog side of the pipeline is usable.
func (r *Runner) requireSpotify() error {
	if r.config.Spotify.ClientID == "" || r.config.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id/client_secret (set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET)", shared.ErrMissingCredentials)
	}
	if r.config.Spotify.UserID == "" {
		return fmt.Errorf("%w: spotify user_id (set SPOTIFY_USER_ID or spotify.user_id)", shared.ErrMissingCredentials)
	}
	if r.config.Spotify.RedirectURI == "" {
		return fmt.Errorf("%w: spotify redirect_uri is required", shared.ErrInvalidConfig)
	}
	return nil
}

// discoveryOpts builds engine options from config with flag overrides.
func (r *Runner) discoveryOpts(limit int, period string) tasks.DiscoveryOpts {
	opts := tasks.DiscoveryOpts{
		Username:           r.config.Lastfm.Username,
		Period:             r.config.Discovery.Period,
		HistoryLimit:       r.config.Discovery.HistoryLimit,
		SimilarLimit:       r.config.Discovery.SimilarLimit,
		ExpandLimit:        r.config.Discovery.ExpandLimit,
		MaxRecommendations: r.config.Discovery.MaxRecommendations,
	}
	if period != "" {
		opts.Period = period
	}
	if limit > 0 {
		opts.MaxRecommendations = limit
	}
	return opts
}

// openDatabase opens the configured SQLite database. The caller owns the
// returned handle.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

// confirm prints the prompt and reads one line from input. Only y/yes (any
// case) is an approval; EOF or a read failure counts as a refusal.
func (r *Runner) confirm(format string, args ...any) (bool, error) {
	if err := r.writePlain(format, args...); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
