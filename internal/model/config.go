package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// StoreConfig holds settings for the backing store.
type StoreConfig struct {
	// Path is the SQLite database file. ":memory:" keeps everything in RAM.
	Path string `mapstructure:"path" yaml:"path"`

	// TimeoutSec bounds every store call.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Env   string `mapstructure:"env" yaml:"env"`
	Level string `mapstructure:"level" yaml:"level"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme       string `mapstructure:"theme" yaml:"theme"`
	SortBy      string `mapstructure:"sort_by" yaml:"sort_by"`
	StatsPeriod string `mapstructure:"stats_period" yaml:"stats_period"`
}

// SyncConfig controls how the todo list is refreshed from the store.
type SyncConfig struct {
	// SequenceFetches discards fetch responses that resolve after a newer
	// fetch was issued.
	SequenceFetches bool `mapstructure:"sequence_fetches" yaml:"sequence_fetches"`

	// PollIntervalSec is how often the board reloads in the background.
	// Zero disables polling.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// AuthConfig holds settings for the session credential vault.
type AuthConfig struct {
	// KeyringBackend forces a keyring backend ("file", "keychain", ...).
	// Empty lets the keyring pick the best available one.
	KeyringBackend string `mapstructure:"keyring_backend" yaml:"keyring_backend"`

	// KeyringDir is used by the file backend.
	KeyringDir string `mapstructure:"keyring_dir" yaml:"keyring_dir"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
}

// DarkTheme reports whether dark category colors should be used.
func (c *AppConfig) DarkTheme() bool {
	return strings.EqualFold(c.Display.Theme, "dark")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tasknest/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "tasknest", "config.yaml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "tasknest")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	dir := defaultDataDir()
	return &AppConfig{
		Store: StoreConfig{
			Path:       filepath.Join(dir, "tasknest.db"),
			TimeoutSec: 10,
		},
		Log: LogConfig{
			Env:   "development",
			Level: "info",
		},
		Display: DisplayConfig{
			Theme:       "light",
			SortBy:      string(SortByCreatedAt),
			StatsPeriod: "week",
		},
		Sync: SyncConfig{
			SequenceFetches: true,
			PollIntervalSec: 60,
		},
		Auth: AuthConfig{
			KeyringDir: filepath.Join(dir, "credentials"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.timeout_sec", d.Store.TimeoutSec)
	v.SetDefault("log.env", d.Log.Env)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.sort_by", d.Display.SortBy)
	v.SetDefault("display.stats_period", d.Display.StatsPeriod)
	v.SetDefault("sync.sequence_fetches", d.Sync.SequenceFetches)
	v.SetDefault("sync.poll_interval_sec", d.Sync.PollIntervalSec)
	v.SetDefault("auth.keyring_backend", d.Auth.KeyringBackend)
	v.SetDefault("auth.keyring_dir", d.Auth.KeyringDir)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values may be overridden with TASKNEST_* environment variables
// (e.g. TASKNEST_STORE_PATH). A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("tasknest")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !os.IsNotExist(err) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if _, err := ParseSortOption(cfg.Display.SortBy); err != nil {
		return nil, fmt.Errorf("parsing config %s: display.sort_by: %w", path, err)
	}
	if cfg.Store.TimeoutSec <= 0 {
		cfg.Store.TimeoutSec = 10
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("store", cfg.Store)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)
	v.Set("sync", cfg.Sync)
	v.Set("auth", cfg.Auth)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
