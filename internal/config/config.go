package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is used when the config leaves api_url empty.
const DefaultAPIURL = "https://api.howdju.com"

// Config holds CLI configuration stored at ~/.howdju/config.
type Config struct {
	APIURL     string `yaml:"api_url,omitempty"`
	AuthToken  string `yaml:"auth_token,omitempty"`
	Email      string `yaml:"email,omitempty"`
	LogLevel   string `yaml:"log_level,omitempty"`
	TrackingID string `yaml:"tracking_id,omitempty"`
}

// Dir returns the directory holding config and logs.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".howdju")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config")
}

// LogPath returns the file the TUI logs to.
func LogPath() string {
	return filepath.Join(Dir(), "howdju.log")
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

// LoadOrDefault is Load, except that a missing file yields an empty config.
// Browsing the public graph works without logging in.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// BaseURL returns the API root, falling back to DefaultAPIURL.
func (c *Config) BaseURL() string {
	if c == nil || c.APIURL == "" {
		return DefaultAPIURL
	}
	return c.APIURL
}

// IsLoggedIn reports whether an auth token is stored.
func (c *Config) IsLoggedIn() bool {
	return c != nil && c.AuthToken != ""
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

	return os.WriteFile(path, data, 0600)
}
