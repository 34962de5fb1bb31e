package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config leaves a field unset.
const (
	DefaultBaseURL        = "http://localhost:8000"
	DefaultDebounce       = 500 * time.Millisecond
	DefaultSavedDisplay   = 2 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)

// ErrNotLoggedIn is returned by RequireToken when no credential is stored.
var ErrNotLoggedIn = errors.New("not logged in. run 'quill login' first")

// AutosaveConfig holds the editor persistence timings.
type AutosaveConfig struct {
	Debounce     time.Duration `yaml:"debounce,omitempty"`
	SavedDisplay time.Duration `yaml:"saved_display,omitempty"`
}

// Config holds client configuration stored at ~/.quill/config.
type Config struct {
	Token          string         `yaml:"token"`
	Username       string         `yaml:"username"`
	BaseURL        string         `yaml:"base_url,omitempty"`
	Theme          string         `yaml:"theme,omitempty"`
	Autosave       AutosaveConfig `yaml:"autosave,omitempty"`
	RequestTimeout time.Duration  `yaml:"request_timeout,omitempty"`
	LogLevel       string         `yaml:"log_level,omitempty"`
}

// Dir returns the directory holding config and logs.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".quill")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config")
}

// LogPath returns the log file path.
func LogPath() string {
	return filepath.Join(Dir(), "quill.log")
}

// Load reads and parses the config file. Returns error if missing or insecure.
func Load() (*Config, error) {
	path := Path()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault returns the stored config, or an empty one if none exists yet.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0600)
}

// RequireToken fails when no credential is stored.
func (c *Config) RequireToken() error {
	if c == nil || strings.TrimSpace(c.Token) == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// APIBaseURL returns the configured API URL or the default.
func (c *Config) APIBaseURL() string {
	if c == nil || strings.TrimSpace(c.BaseURL) == "" {
		return DefaultBaseURL
	}
	return strings.TrimSpace(c.BaseURL)
}

// DebounceDelay is the quiet period before an edit is persisted.
func (c *Config) DebounceDelay() time.Duration {
	if c == nil || c.Autosave.Debounce <= 0 {
		return DefaultDebounce
	}
	return c.Autosave.Debounce
}

// SavedDisplayDelay is how long the "Saved" status stays visible.
func (c *Config) SavedDisplayDelay() time.Duration {
	if c == nil || c.Autosave.SavedDisplay <= 0 {
		return DefaultSavedDisplay
	}
	return c.Autosave.SavedDisplay
}

// HTTPTimeout bounds every remote call.
func (c *Config) HTTPTimeout() time.Duration {
	if c == nil || c.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return c.RequestTimeout
}

// Level returns the configured log level name.
func (c *Config) Level() string {
	if c == nil || strings.TrimSpace(c.LogLevel) == "" {
		return DefaultLogLevel
	}
	return strings.TrimSpace(c.LogLevel)
}
