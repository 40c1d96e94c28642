// Package config resolves the configuration directory and loads settings
// from config.yaml and DODO_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/oauth2"
)

const (
	// AppName is the application directory name.
	AppName = "dodo"

	// ConfigFile is the optional settings file in the config directory.
	ConfigFile = "config.yaml"

	// SessionFile is the stored session of the hosted backend.
	SessionFile = "session.json"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored Google OAuth token filename.
	TokenFile = "token.json"

	// DatabaseFile is the default SQLite database of the local backend.
	DatabaseFile = "dodo.db"
)

// Backend names.
const (
	BackendLocal    = "local"
	BackendSupabase = "supabase"
	BackendGoogle   = "google"
	BackendPostgres = "postgres"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Backend  string         `mapstructure:"backend"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
	Google   GoogleConfig   `mapstructure:"google"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Local    LocalConfig    `mapstructure:"local"`
	Log      LogConfig      `mapstructure:"log"`
}

// SupabaseConfig locates the hosted project.
type SupabaseConfig struct {
	URL     string `mapstructure:"url"`
	AnonKey string `mapstructure:"anon_key"`
}

// GoogleConfig selects the Google Tasks list holding the tasks.
type GoogleConfig struct {
	List string `mapstructure:"list"`
}

// PostgresConfig is a direct database connection.
type PostgresConfig struct {
	URL    string `mapstructure:"url"`
	UserID string `mapstructure:"user_id"`
}

// LocalConfig is the offline SQLite backend.
type LocalConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig controls the optional log file.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// New creates a Config with defaults for the given directory.
// If configDir is empty, uses XDG_CONFIG_HOME/dodo or $HOME/.config/dodo.
func New(configDir string) *Config {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:     dir,
		Backend: BackendLocal,
		Google:  GoogleConfig{List: "@default"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads config.yaml from the config directory, if present, and
// DODO_* environment variables (DODO_BACKEND, DODO_SUPABASE_URL, ...).
func Load(configDir string) (*Config, error) {
	cfg := New(configDir)

	v := viper.New()
	v.SetConfigFile(filepath.Join(cfg.Dir, ConfigFile))
	v.SetEnvPrefix("DODO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("google.list", cfg.Google.List)
	v.SetDefault("log.level", cfg.Log.Level)
	for _, key := range []string{"supabase.url", "supabase.anon_key", "postgres.url", "postgres.user_id", "local.path", "log.file"} {
		v.SetDefault(key, "")
	}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case BackendLocal, BackendSupabase, BackendGoogle, BackendPostgres:
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SessionPath returns the path to the stored hosted-backend session.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// OAuthClientPath returns the path to the Google OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored Google OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// DatabasePath returns the SQLite file of the local backend.
func (c *Config) DatabasePath() string {
	if c.Local.Path != "" {
		return c.Local.Path
	}
	return filepath.Join(c.Dir, DatabaseFile)
}

// CredentialPath returns the file holding the credentials of the configured
// backend, or "" if the backend needs none.
func (c *Config) CredentialPath() string {
	switch c.Backend {
	case BackendSupabase:
		return c.SessionPath()
	case BackendGoogle:
		return c.TokenPath()
	default:
		return ""
	}
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasCredentials checks if the credential file of the backend exists.
// Backends without credentials always have them.
func (c *Config) HasCredentials() bool {
	path := c.CredentialPath()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

// RemoveCredentials deletes the credential file of the backend.
func (c *Config) RemoveCredentials() error {
	path := c.CredentialPath()
	if path == "" {
		return nil
	}
	return os.Remove(path)
}

// LoadToken reads an OAuth token from path.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return &token, nil
}

// SaveToken writes an OAuth token to path with mode 0600.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
