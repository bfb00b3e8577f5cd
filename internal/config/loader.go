package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config captures the runtime settings for the tutoring scheduler. Values come
// from an optional TOML file, overridden by TUTORSCHED_* environment
// variables.
type Config struct {
	HTTPPort              int    `toml:"http_port"`
	DatabasePath          string `toml:"database_path"`
	LockPath              string `toml:"lock_path"`
	Timezone              string `toml:"timezone"`
	LogLevel              string `toml:"log_level"`
	MaterializeWindowDays int    `toml:"materialize_window_days"`
	TimelineCacheTTL      string `toml:"timeline_cache_ttl"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		HTTPPort:              8080,
		DatabasePath:          "tutorsched.db",
		LockPath:              "tutorsched.lock",
		Timezone:              "Local",
		LogLevel:              "info",
		MaterializeWindowDays: 30,
		TimelineCacheTTL:      "30s",
	}
}

// Load builds the configuration from defaults, the TOML file at path (ignored
// when the file does not exist), and finally the process environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// No file is fine, defaults plus environment apply.
		case err != nil:
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnvironment(); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvironment() error {
	invalid := make([]string, 0, 2)

	if value := strings.TrimSpace(os.Getenv("TUTORSCHED_HTTP_PORT")); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 {
			invalid = append(invalid, "TUTORSCHED_HTTP_PORT")
		} else {
			c.HTTPPort = port
		}
	}
	if value := strings.TrimSpace(os.Getenv("TUTORSCHED_DATABASE_PATH")); value != "" {
		c.DatabasePath = value
	}
	if value := strings.TrimSpace(os.Getenv("TUTORSCHED_LOCK_PATH")); value != "" {
		c.LockPath = value
	}
	if value := strings.TrimSpace(os.Getenv("TUTORSCHED_TIMEZONE")); value != "" {
		c.Timezone = value
	}
	if value := strings.TrimSpace(os.Getenv("TUTORSCHED_LOG_LEVEL")); value != "" {
		c.LogLevel = value
	}
	if value := strings.TrimSpace(os.Getenv("TUTORSCHED_MATERIALIZE_WINDOW_DAYS")); value != "" {
		days, err := strconv.Atoi(value)
		if err != nil || days <= 0 {
			invalid = append(invalid, "TUTORSCHED_MATERIALIZE_WINDOW_DAYS")
		} else {
			c.MaterializeWindowDays = days
		}
	}
	if value := strings.TrimSpace(os.Getenv("TUTORSCHED_TIMELINE_CACHE_TTL")); value != "" {
		c.TimelineCacheTTL = value
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

func (c *Config) validate() error {
	invalid := make([]string, 0, 2)

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		invalid = append(invalid, "http_port")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		invalid = append(invalid, "database_path")
	}
	if c.MaterializeWindowDays <= 0 {
		invalid = append(invalid, "materialize_window_days")
	}
	if _, err := c.Location(); err != nil {
		invalid = append(invalid, "timezone")
	}
	if _, err := c.CacheTTL(); err != nil {
		invalid = append(invalid, "timeline_cache_ttl")
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, "log_level")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// Location resolves the configured time zone. "Local" and an empty value map
// to the host zone.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "Local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// CacheTTL parses the timeline cache TTL. An empty value means the service
// default applies.
func (c Config) CacheTTL() (time.Duration, error) {
	value := strings.TrimSpace(c.TimelineCacheTTL)
	if value == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(value)
	if err != nil || ttl < 0 {
		return 0, fmt.Errorf("invalid timeline cache TTL %q", value)
	}
	return ttl, nil
}

// MaterializeWindow returns the half-open horizon for automatic
// materialization starting from now.
func (c Config) MaterializeWindow(now time.Time) (from, to time.Time) {
	from = now
	to = now.AddDate(0, 0, c.MaterializeWindowDays)
	return from, to
}
