package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/vire-markets/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	API         APIConfig       `toml:"api"`
	Dashboard   DashboardConfig `toml:"dashboard"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

// APIConfig points at the analytics backend that computes the dashboard metrics.
type APIConfig struct {
	URL      string `toml:"url" validate:"required,url"`
	Endpoint string `toml:"endpoint" validate:"required,startswith=/"`
	Timeout  string `toml:"timeout" validate:"duration"`
}

// DashboardConfig contains refresh and presentation settings.
type DashboardConfig struct {
	RefreshInterval     string   `toml:"refresh_interval" validate:"duration"`
	MinLoadingDisplay   string   `toml:"min_loading_display" validate:"duration"`
	CacheMaxAge         string   `toml:"cache_max_age" validate:"duration"`
	StaleAfter          string   `toml:"stale_after" validate:"duration"`
	InitialRefreshDelay string   `toml:"initial_refresh_delay" validate:"duration"`
	RetainAbsent        string   `toml:"retain_absent" validate:"duration"`
	DrawdownPeriod      string   `toml:"drawdown_period" validate:"oneof=1d 1w 7d 1m 3m 6m 1y 2y 3y 4y 5y"`
	ChangePeriod        string   `toml:"change_period" validate:"oneof=1d 1w 7d 1m 3m 6m 1y 2y 3y 4y 5y"`
	MarketSymbols       []string `toml:"market_symbols" validate:"min=1,dive,required"`
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path" validate:"required"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Outputs    []string `toml:"outputs" validate:"dive,oneof=console file"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// IsDevMode reports whether the environment is "dev".
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// BaseURL returns the externally reachable base URL of the server.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// TimeoutDuration returns the backend request timeout.
func (a APIConfig) TimeoutDuration() time.Duration {
	return parseDuration(a.Timeout, 30*time.Second)
}

// RefreshIntervalDuration returns the auto-refresh interval.
func (d DashboardConfig) RefreshIntervalDuration() time.Duration {
	return parseDuration(d.RefreshInterval, 60*time.Second)
}

// MinLoadingDisplayDuration returns the minimum visible loading time per refresh.
func (d DashboardConfig) MinLoadingDisplayDuration() time.Duration {
	return parseDuration(d.MinLoadingDisplay, 500*time.Millisecond)
}

// CacheMaxAgeDuration returns the age after which a cached snapshot is not rendered on startup.
func (d DashboardConfig) CacheMaxAgeDuration() time.Duration {
	return parseDuration(d.CacheMaxAge, common.FreshnessSnapshot)
}

// StaleAfterDuration returns the per-record staleness threshold.
func (d DashboardConfig) StaleAfterDuration() time.Duration {
	return parseDuration(d.StaleAfter, common.FreshnessRecord)
}

// RetainAbsentDuration returns how long an asset missing from responses is
// kept after its last update. Zero keeps it indefinitely.
func (d DashboardConfig) RetainAbsentDuration() time.Duration {
	return parseDuration(d.RetainAbsent, common.FreshnessRetainAbsent)
}

// InitialRefreshDelayDuration returns the delay of the background refresh after a cached render.
func (d DashboardConfig) InitialRefreshDelayDuration() time.Duration {
	return parseDuration(d.InitialRefreshDelay, 100*time.Millisecond)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// Validate checks mandatory and well-formed fields, returning one issue per failure.
func (c *Config) Validate() []string {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		d, err := time.ParseDuration(s)
		return err == nil && d >= 0
	})

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	issues := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			issues = append(issues, fmt.Sprintf("%s: failed %q (%s), got %q", field, fe.Tag(), fe.Param(), fmt.Sprint(fe.Value())))
		} else {
			issues = append(issues, fmt.Sprintf("%s: failed %q, got %q", field, fe.Tag(), fmt.Sprint(fe.Value())))
		}
	}
	return issues
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies VIRE_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VIRE_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("VIRE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VIRE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if apiURL := os.Getenv("VIRE_API_URL"); apiURL != "" {
		config.API.URL = apiURL
	}
	if interval := os.Getenv("VIRE_REFRESH_INTERVAL"); interval != "" {
		config.Dashboard.RefreshInterval = interval
	}
	if badgerPath := os.Getenv("VIRE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if level := os.Getenv("VIRE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
