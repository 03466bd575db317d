// ABOUTME: gymbot configuration: a YAML file overlaid with environment variables.
// ABOUTME: Normalizes defaults and opens the store and catalog the config points at.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/gymbot/internal/catalog"
	"github.com/harperreed/gymbot/internal/storage"
)

// EnvPrefix prefixes every environment override, e.g. GYMBOT_TELEGRAM_TOKEN.
const EnvPrefix = "GYMBOT"

const (
	DefaultLongPollTimeout = 10
	DefaultSessionTTL      = 360
	DefaultCleanup         = 10
	DefaultReminderHour    = 18
	DefaultLogLevel        = "info"
)

// Config stores gymbot configuration.
type Config struct {
	Telegram Telegram `yaml:"telegram"`
	Storage  Storage  `yaml:"storage"`
	Session  Session  `yaml:"session"`
	Reminder Reminder `yaml:"reminder"`
	Catalog  Catalog  `yaml:"catalog"`
	Logging  Logging  `yaml:"logging"`
	Metrics  Metrics  `yaml:"metrics"`
	Backup   Backup   `yaml:"backup"`
}

type Telegram struct {
	Token                  string `yaml:"token,omitempty" split_words:"true"`
	LongPollTimeoutSeconds int    `yaml:"long_poll_timeout_seconds" split_words:"true"`
}

type Storage struct {
	// DBPath supports ~ expansion. Empty means $XDG_DATA_HOME/gymbot/gymbot.db.
	DBPath        string `yaml:"db_path,omitempty" split_words:"true"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms,omitempty" split_words:"true"`
}

type Session struct {
	TTLMinutes             int `yaml:"ttl_minutes" split_words:"true"`
	CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes" split_words:"true"`
}

type Reminder struct {
	Enabled   bool `yaml:"enabled"`
	HourUTC   int  `yaml:"hour_utc" split_words:"true"`
	MinuteUTC int  `yaml:"minute_utc" split_words:"true"`
}

type Catalog struct {
	// Path is a catalog YAML file or a directory of group folders with images.
	Path string `yaml:"path,omitempty"`
}

type Logging struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file,omitempty"`
	Console bool   `yaml:"console"`
	JSON    bool   `yaml:"json"`
}

type Metrics struct {
	// Listen is the ops HTTP address; empty disables it.
	Listen string `yaml:"listen,omitempty"`
}

type Backup struct {
	S3Bucket    string `yaml:"s3_bucket,omitempty" split_words:"true"`
	S3Region    string `yaml:"s3_region,omitempty" split_words:"true"`
	S3Endpoint  string `yaml:"s3_endpoint,omitempty" split_words:"true"`
	S3PathStyle bool   `yaml:"s3_path_style,omitempty" split_words:"true"`
	Prefix      string `yaml:"prefix,omitempty"`
}

// Enabled reports whether exports should be uploaded.
func (b Backup) Enabled() bool {
	return b.S3Bucket != ""
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Telegram: Telegram{LongPollTimeoutSeconds: DefaultLongPollTimeout},
		Session: Session{
			TTLMinutes:             DefaultSessionTTL,
			CleanupIntervalMinutes: DefaultCleanup,
		},
		Reminder: Reminder{Enabled: true, HourUTC: DefaultReminderHour},
		Logging:  Logging{Level: DefaultLogLevel, Console: true},
	}
}

// Normalize fills zero values with defaults and clamps out-of-range ones.
func Normalize(cfg *Config) {
	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	if cfg.Telegram.LongPollTimeoutSeconds <= 0 {
		cfg.Telegram.LongPollTimeoutSeconds = DefaultLongPollTimeout
	}
	if cfg.Storage.BusyTimeoutMS < 0 {
		cfg.Storage.BusyTimeoutMS = 0
	}
	if cfg.Session.TTLMinutes <= 0 {
		cfg.Session.TTLMinutes = DefaultSessionTTL
	}
	if cfg.Session.CleanupIntervalMinutes <= 0 {
		cfg.Session.CleanupIntervalMinutes = DefaultCleanup
	}
	cfg.Reminder.HourUTC = clamp(cfg.Reminder.HourUTC, 0, 23)
	cfg.Reminder.MinuteUTC = clamp(cfg.Reminder.MinuteUTC, 0, 59)
	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	cfg.Backup.Prefix = strings.Trim(cfg.Backup.Prefix, "/")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GetDBPath returns the database path with ~ expanded.
func (c *Config) GetDBPath() string {
	if c.Storage.DBPath == "" {
		return storage.DefaultDBPath()
	}
	return ExpandPath(c.Storage.DBPath)
}

// SessionTTL is how long an idle conversation is kept.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// CleanupInterval is how often abandoned conversations are swept.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.Session.CleanupIntervalMinutes) * time.Minute
}

// LongPollTimeout is the Telegram long-poll timeout.
func (c *Config) LongPollTimeout() time.Duration {
	return time.Duration(c.Telegram.LongPollTimeoutSeconds) * time.Second
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens the configured database.
func (c *Config) OpenStorage() (*storage.DB, error) {
	return storage.OpenWithOptions(c.GetDBPath(), storage.Options{
		BusyTimeout: time.Duration(c.Storage.BusyTimeoutMS) * time.Millisecond,
	})
}

// LoadCatalog returns the configured catalog, or the built-in one when no
// path is set.
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	if c.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	path := ExpandPath(c.Catalog.Path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog path: %w", err)
	}
	if info.IsDir() {
		return catalog.LoadDir(path)
	}
	return catalog.LoadFile(path)
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "gymbot", "config.yaml")
}

// Load reads the config at path (GetConfigPath when empty), applies
// environment overrides and normalizes the result. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyLegacyEnv(cfg)
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	Normalize(cfg)
	return cfg, nil
}

// applyLegacyEnv honors the variable names older deployments used. The
// prefixed names processed afterwards take precedence.
func applyLegacyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
}

// Save writes the config to GetConfigPath.
func (c *Config) Save() error {
	path := GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
