// Package config loads stitch runtime configuration from YAML and STITCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config is the complete runtime configuration.
type Config struct {
	// Definitions is a YAML/JSON file or a directory of wizard documents.
	Definitions string      `yaml:"definitions"`
	Store       StoreConfig `yaml:"store"`
	HTTP        HTTPConfig  `yaml:"http"`
	Log         LogConfig   `yaml:"log"`
}

// StoreConfig selects and configures the wizard state store.
type StoreConfig struct {
	Driver string       `yaml:"driver"`
	File   FileConfig   `yaml:"file"`
	Redis  RedisConfig  `yaml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite"`

	// EncryptionKey is a base64 encoded 32 byte AES key. Empty disables encryption.
	EncryptionKey string `yaml:"encryption_key"`
	// FallbackKeys are older encryption keys still accepted for reads.
	FallbackKeys []string `yaml:"fallback_keys"`
	// Mask lists regular expressions of field keys that are never persisted in clear.
	Mask []string `yaml:"mask"`
}

type FileConfig struct {
	Dir string `yaml:"dir"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type SQLiteConfig struct {
	DSN string `yaml:"dsn"`
}

type HTTPConfig struct {
	Addr        string `yaml:"addr"`
	MetricsPath string `yaml:"metrics_path"`
	// SessionCookie is the cookie carrying the session id when no X-Session-ID header is sent.
	SessionCookie string `yaml:"session_cookie"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration that runs entirely in memory.
func Default() *Config {
	return &Config{
		Definitions: "wizards.yaml",
		Store: StoreConfig{
			Driver: DriverMemory,
			File:   FileConfig{Dir: filepath.Join(".stitch", "state")},
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "stitch:"},
			SQLite: SQLiteConfig{DSN: filepath.Join(".stitch", "stitch.db")},
		},
		HTTP: HTTPConfig{
			Addr:          ":8080",
			MetricsPath:   "/metrics",
			SessionCookie: "stitch_session",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load loads configuration from an optional YAML file and the environment.
// Environment variables take precedence over file-based configuration.
// If configPath is empty, only defaults and environment variables are used.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadEnvFiles loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func (c *Config) loadFromEnv() error {
	strs := map[string]*string{
		"STITCH_DEFINITIONS":         &c.Definitions,
		"STITCH_STORE_DRIVER":        &c.Store.Driver,
		"STITCH_STORE_FILE_DIR":      &c.Store.File.Dir,
		"STITCH_REDIS_ADDR":          &c.Store.Redis.Addr,
		"STITCH_REDIS_PASSWORD":      &c.Store.Redis.Password,
		"STITCH_REDIS_PREFIX":        &c.Store.Redis.Prefix,
		"STITCH_SQLITE_DSN":          &c.Store.SQLite.DSN,
		"STITCH_ENCRYPTION_KEY":      &c.Store.EncryptionKey,
		"STITCH_HTTP_ADDR":           &c.HTTP.Addr,
		"STITCH_HTTP_METRICS_PATH":   &c.HTTP.MetricsPath,
		"STITCH_HTTP_SESSION_COOKIE": &c.HTTP.SessionCookie,
		"STITCH_LOG_LEVEL":           &c.Log.Level,
		"STITCH_LOG_FORMAT":          &c.Log.Format,
	}
	for name, dst := range strs {
		if val, ok := os.LookupEnv(name); ok {
			*dst = val
		}
	}

	if val := os.Getenv("STITCH_REDIS_DB"); val != "" {
		db, err := cast.ToIntE(val)
		if err != nil {
			return fmt.Errorf("STITCH_REDIS_DB: %w", err)
		}
		c.Store.Redis.DB = db
	}
	if val := os.Getenv("STITCH_REDIS_TTL"); val != "" {
		ttl, err := cast.ToDurationE(val)
		if err != nil {
			return fmt.Errorf("STITCH_REDIS_TTL: %w", err)
		}
		c.Store.Redis.TTL = ttl
	}
	if val := os.Getenv("STITCH_STORE_MASK"); val != "" {
		c.Store.Mask = strings.Split(val, ",")
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Definitions) == "" {
		errs = append(errs, errors.New("definitions must not be empty"))
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.File.Dir == "" {
			errs = append(errs, errors.New("store.file.dir is required for the file driver"))
		}
	case DriverRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required for the redis driver"))
		}
		if c.Store.Redis.TTL < 0 {
			errs = append(errs, fmt.Errorf("store.redis.ttl must not be negative, got %v", c.Store.Redis.TTL))
		}
	case DriverSQLite:
		if c.Store.SQLite.DSN == "" {
			errs = append(errs, errors.New("store.sqlite.dsn is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver must be one of [memory, file, redis, sqlite], got %q", c.Store.Driver))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Errorf("log.level must be one of [debug, info, warn, warning, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, fmt.Errorf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if c.HTTP.MetricsPath != "" && !strings.HasPrefix(c.HTTP.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("http.metrics_path must start with '/', got %q", c.HTTP.MetricsPath))
	}

	return errors.Join(errs...)
}
