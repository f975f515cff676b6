package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/vire-markets/internal/common"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Port != 4241 {
		t.Errorf("expected default port 4241, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected default host localhost, got %s", cfg.Server.Host)
	}
	if cfg.API.Endpoint != "/api/dashboard-data" {
		t.Errorf("expected default endpoint /api/dashboard-data, got %s", cfg.API.Endpoint)
	}
	if cfg.Storage.Badger.Path != "./data/markets" {
		t.Errorf("expected default badger path ./data/markets, got %s", cfg.Storage.Badger.Path)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if got := strings.Join(cfg.Dashboard.MarketSymbols, ","); got != "SPY,^DJI,^GSPC,^VIX" {
		t.Errorf("unexpected default market symbols: %s", got)
	}
}

func TestDefaultConfig_Durations(t *testing.T) {
	d := NewDefaultConfig().Dashboard

	if d.RefreshIntervalDuration() != 60*time.Second {
		t.Errorf("expected refresh interval 60s, got %v", d.RefreshIntervalDuration())
	}
	if d.MinLoadingDisplayDuration() != 500*time.Millisecond {
		t.Errorf("expected min loading display 500ms, got %v", d.MinLoadingDisplayDuration())
	}
	if d.CacheMaxAgeDuration() != 10*time.Minute {
		t.Errorf("expected cache max age 10m, got %v", d.CacheMaxAgeDuration())
	}
	if d.StaleAfterDuration() != 5*time.Minute {
		t.Errorf("expected stale after 5m, got %v", d.StaleAfterDuration())
	}
	if d.RetainAbsentDuration() != 24*time.Hour {
		t.Errorf("expected retain absent 24h, got %v", d.RetainAbsentDuration())
	}
}

func TestDurationFallback(t *testing.T) {
	d := DashboardConfig{RefreshInterval: "not-a-duration"}
	if d.RefreshIntervalDuration() != 60*time.Second {
		t.Errorf("expected fallback 60s, got %v", d.RefreshIntervalDuration())
	}
}

func TestDefaultConfig_Validates(t *testing.T) {
	if issues := NewDefaultConfig().Validate(); len(issues) != 0 {
		t.Errorf("expected default config to validate, got %v", issues)
	}
}

func TestValidate_ReportsIssues(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.API.URL = ""
	cfg.Dashboard.ChangePeriod = "2w"
	cfg.Dashboard.RefreshInterval = "soon"

	issues := cfg.Validate()
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d: %v", len(issues), issues)
	}

	joined := strings.Join(issues, "\n")
	for _, field := range []string{"API.URL", "Dashboard.ChangePeriod", "Dashboard.RefreshInterval"} {
		if !strings.Contains(joined, field) {
			t.Errorf("expected issue mentioning %s, got:\n%s", field, joined)
		}
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	if cfg.Server.Port != 4241 {
		t.Errorf("expected default port 4241, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "test.toml")

	content := `
[server]
port = 9090
host = "0.0.0.0"

[api]
url = "http://analytics:5000"

[dashboard]
refresh_interval = "30s"
drawdown_period = "3m"
market_symbols = ["SPY", "^VIX"]

[storage.badger]
path = "/tmp/test-db"

[logging]
level = "debug"
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.API.URL != "http://analytics:5000" {
		t.Errorf("expected api url http://analytics:5000, got %s", cfg.API.URL)
	}
	if cfg.API.Endpoint != "/api/dashboard-data" {
		t.Errorf("expected endpoint default to survive, got %s", cfg.API.Endpoint)
	}
	if cfg.Dashboard.RefreshIntervalDuration() != 30*time.Second {
		t.Errorf("expected refresh interval 30s, got %v", cfg.Dashboard.RefreshIntervalDuration())
	}
	if cfg.Dashboard.DrawdownPeriod != "3m" {
		t.Errorf("expected drawdown period 3m, got %s", cfg.Dashboard.DrawdownPeriod)
	}
	if cfg.Dashboard.ChangePeriod != "1d" {
		t.Errorf("expected change period default 1d, got %s", cfg.Dashboard.ChangePeriod)
	}
	if len(cfg.Dashboard.MarketSymbols) != 2 {
		t.Errorf("expected 2 market symbols, got %v", cfg.Dashboard.MarketSymbols)
	}
	if cfg.Storage.Badger.Path != "/tmp/test-db" {
		t.Errorf("expected badger path /tmp/test-db, got %s", cfg.Storage.Badger.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFiles_MultipleFiles(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	if err := os.WriteFile(base, []byte("[server]\nport = 7000\nhost = \"base\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(override, []byte("[server]\nport = 8000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected later file to win with port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "base" {
		t.Errorf("expected host from base file, got %s", cfg.Server.Host)
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/config.toml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[server\nport = "), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromFiles(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("VIRE_SERVER_PORT", "9999")
	t.Setenv("VIRE_SERVER_HOST", "envhost")
	t.Setenv("VIRE_API_URL", "http://env-api:5000")
	t.Setenv("VIRE_REFRESH_INTERVAL", "2m")
	t.Setenv("VIRE_BADGER_PATH", "/env/db")
	t.Setenv("VIRE_LOG_LEVEL", "warn")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "envhost" {
		t.Errorf("expected host envhost, got %s", cfg.Server.Host)
	}
	if cfg.API.URL != "http://env-api:5000" {
		t.Errorf("expected api url from env, got %s", cfg.API.URL)
	}
	if cfg.Dashboard.RefreshIntervalDuration() != 2*time.Minute {
		t.Errorf("expected refresh interval 2m, got %v", cfg.Dashboard.RefreshIntervalDuration())
	}
	if cfg.Storage.Badger.Path != "/env/db" {
		t.Errorf("expected badger path /env/db, got %s", cfg.Storage.Badger.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
}

func TestApplyEnvOverrides_InvalidPort(t *testing.T) {
	t.Setenv("VIRE_SERVER_PORT", "not-a-number")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 4241 {
		t.Errorf("expected default port 4241 when env is invalid, got %d", cfg.Server.Port)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 5555, "flaghost")
	if cfg.Server.Port != 5555 {
		t.Errorf("expected port 5555, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "flaghost" {
		t.Errorf("expected host flaghost, got %s", cfg.Server.Host)
	}

	ApplyFlagOverrides(cfg, 0, "")
	if cfg.Server.Port != 5555 || cfg.Server.Host != "flaghost" {
		t.Error("zero-value flags should not override config")
	}
}

func TestDashboardConfig_FreshnessFallbacks(t *testing.T) {
	d := DashboardConfig{CacheMaxAge: "", StaleAfter: "soon"}

	if d.CacheMaxAgeDuration() != common.FreshnessSnapshot {
		t.Errorf("expected cache max age fallback %v, got %v", common.FreshnessSnapshot, d.CacheMaxAgeDuration())
	}
	if d.StaleAfterDuration() != common.FreshnessRecord {
		t.Errorf("expected stale after fallback %v, got %v", common.FreshnessRecord, d.StaleAfterDuration())
	}
}
