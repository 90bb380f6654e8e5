package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Export      ExportConfig      `toml:"export"`
	API         APIConfig         `toml:"api"`
}

// CredentialsConfig contains service credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the Spotify application settings. Authorization uses
// PKCE, so no client secret is required.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
}

// DatabaseConfig contains token store settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ExportConfig controls where backup files are written by default.
type ExportConfig struct {
	Directory string `toml:"directory"`
}

// APIConfig controls pacing of remote calls.
type APIConfig struct {
	RateLimit float64 `toml:"rate_limit"` // requests per second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
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

// ApplyEnv overlays environment credentials onto the config. SPOTIFY_ID and
// SPOTIFY_REDIRECT_URI take precedence over file values.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SPOTIFY_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		c.Credentials.Spotify.RedirectURI = v
	}
}

// SpotifyReady reports whether enough Spotify settings are present to
// authorize an account.
func (c *Config) SpotifyReady() error {
	if c.Credentials.Spotify.ClientID == "" {
		return fmt.Errorf("%w: set credentials.spotify.client_id or SPOTIFY_ID", ErrMissingCredentials)
	}
	if c.Credentials.Spotify.RedirectURI == "" {
		return fmt.Errorf("%w: set credentials.spotify.redirect_uri or SPOTIFY_REDIRECT_URI", ErrMissingCredentials)
	}
	return nil
}

// CallbackAddr derives the listen address for the OAuth callback server from
// the configured redirect URI, so the two can never disagree.
func (c *Config) CallbackAddr() (string, error) {
	u, err := url.Parse(c.Credentials.Spotify.RedirectURI)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: redirect URI %q is not a valid URL", ErrInvalidConfig, c.Credentials.Spotify.RedirectURI)
	}
	host := u.Host
	if u.Port() == "" {
		if u.Scheme == "https" {
			host += ":443"
		} else {
			host += ":80"
		}
	}
	return host, nil
}
