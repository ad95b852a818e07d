package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Lastfm    LastfmConfig    `toml:"lastfm"`
	Spotify   SpotifyConfig   `toml:"spotify"`
	Discovery DiscoveryConfig `toml:"discovery"`
	Playlist  PlaylistConfig  `toml:"playlist"`
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Cache     CacheConfig     `toml:"cache"`
}

// LastfmConfig contains Last.fm API credentials and request pacing.
type LastfmConfig struct {
	APIKey            string  `toml:"api_key"`
	Username          string  `toml:"username"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// SpotifyConfig contains Spotify application credentials.
//
// RedirectURI must be pre-registered in the Spotify application settings and
// its port must agree with [ServerConfig].
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	UserID       string `toml:"user_id"`
	RedirectURI  string `toml:"redirect_uri"`
}

// DiscoveryConfig bounds the recommendation walk over the similar-artist graph.
type DiscoveryConfig struct {
	Period             string `toml:"period"`              // history window, e.g. "6month"
	HistoryLimit       int    `toml:"history_limit"`       // top albums read from history
	SimilarLimit       int    `toml:"similar_limit"`       // similar artists fetched per history artist
	ExpandLimit        int    `toml:"expand_limit"`        // similar artists expanded into recommendations
	MaxRecommendations int    `toml:"max_recommendations"` // hard cap on the recommendation list
}

// PlaylistConfig names the playlist created on each run.
type PlaylistConfig struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Public      bool   `toml:"public"`
}

// ServerConfig contains loopback callback listener settings.
type ServerConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// CacheConfig toggles the local track-match cache. Disabled by default so a
// fresh install always resolves against the live catalog.
type CacheConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overlays environment variables onto the config. Environment values
// win over file values so one-off runs never require editing config.toml.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		c.Lastfm.APIKey = v
	}
	if v := os.Getenv("LASTFM_USERNAME"); v != "" {
		c.Lastfm.Username = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_USER_ID"); v != "" {
		c.Spotify.UserID = v
	}
}

// Validate checks that every credential the pipeline needs is present
func (c *Config) Validate() error {
	if c.Lastfm.APIKey == "" {
		return fmt.Errorf("%w: lastfm api_key (set LASTFM_API_KEY or lastfm.api_key)", ErrMissingCredentials)
	}
	if c.Lastfm.Username == "" {
		return fmt.Errorf("%w: lastfm username (set LASTFM_USERNAME or lastfm.username)", ErrMissingCredentials)
	}
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id/client_secret (set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET)", ErrMissingCredentials)
	}
	if c.Spotify.UserID == "" {
		return fmt.Errorf("%w: spotify user_id (set SPOTIFY_USER_ID or spotify.user_id)", ErrMissingCredentials)
	}
	if c.Spotify.RedirectURI == "" {
		return fmt.Errorf("%w: spotify redirect_uri is required", ErrInvalidConfig)
	}
	return nil
}

// SaveConfig writes the config to the specified path as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
