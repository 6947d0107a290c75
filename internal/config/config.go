// Package config loads the YAML application configuration, creating a
// default file on first run and saving atomically.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when the LINECAL_CONFIG env var is unset.
const DefaultPath = "config.yaml"

// TelegramConfig holds the push-notification bot credentials. Empty
// values disable push and fall back to the console notifier.
type TelegramConfig struct {
	Token  string `yaml:"token" json:"token"`
	ChatID int64  `yaml:"chat_id" json:"chat_id"`
}

// ProfileConfig identifies the local user. Standing in for an external
// login, it is what scopes every storage key.
type ProfileConfig struct {
	UserID      string `yaml:"user_id" json:"user_id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path" json:"db_path"`

	// Timezone is the IANA zone for cron jobs (e.g. "Asia/Tokyo").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is the first weekday of calendar grids: "sunday" or
	// "monday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// ReconcileMinutes is how often reminder timers are re-armed.
	ReconcileMinutes int `yaml:"reconcile_minutes" json:"reconcile_minutes"`

	// SummaryTime is the HH:MM time of the daily summary push. Empty
	// disables it.
	SummaryTime string `yaml:"summary_time" json:"summary_time"`

	Profile  ProfileConfig  `yaml:"profile" json:"profile"`
	Telegram TelegramConfig `yaml:"telegram" json:"telegram"`

	// BasicAuth, if non-nil, guards every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:           "127.0.0.1:8080",
		DBPath:           "linecal.db",
		Timezone:         "Asia/Tokyo",
		WeekStart:        "sunday",
		ReconcileMinutes: 30,
		SummaryTime:      "08:00",
		Profile: ProfileConfig{
			UserID:      "local",
			DisplayName: "ローカルユーザー",
		},
	}
}

// Path resolves the config file location from the environment.
func Path() string {
	if p := os.Getenv("LINECAL_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Normalize fills missing or invalid values so partially-filled configs
// still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.DBPath == "" {
		c.DBPath = "linecal.db"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Tokyo"
	}
	switch c.WeekStart {
	case "sunday", "monday":
	default:
		c.WeekStart = "sunday"
	}
	if c.ReconcileMinutes <= 0 {
		c.ReconcileMinutes = 30
	}
	if c.Profile.UserID == "" {
		c.Profile.UserID = "local"
	}
	if c.Profile.DisplayName == "" {
		c.Profile.DisplayName = "ローカルユーザー"
	}
}

// WeekStartsOn maps the WeekStart string to a weekday index, 0 for
// Sunday.
func (c *Config) WeekStartsOn() int {
	if c.WeekStart == "monday" {
		return 1
	}
	return 0
}

// Load reads the YAML config at path. A missing file is a first run:
// the default config is written there and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the config atomically with 0600 permissions, creating the
// parent directory as needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".linecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
