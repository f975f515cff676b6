package config

import "github.com/bobmcallan/vire-markets/internal/common"

// DefaultMarketSymbols is the fixed market overview section, in display order.
var DefaultMarketSymbols = []string{"SPY", "^DJI", "^GSPC", "^VIX"}

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	symbols := make([]string, len(DefaultMarketSymbols))
	copy(symbols, DefaultMarketSymbols)

	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 4241,
			Host: "localhost",
		},
		API: APIConfig{
			URL:      "http://localhost:5000",
			Endpoint: "/api/dashboard-data",
			Timeout:  "30s",
		},
		Dashboard: DashboardConfig{
			RefreshInterval:     "60s",
			MinLoadingDisplay:   "500ms",
			CacheMaxAge:         common.FreshnessSnapshot.String(),
			StaleAfter:          common.FreshnessRecord.String(),
			InitialRefreshDelay: "100ms",
			RetainAbsent:        common.FreshnessRetainAbsent.String(),
			DrawdownPeriod:      "1y",
			ChangePeriod:        "1d",
			MarketSymbols:       symbols,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/markets",
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			Outputs: []string{"console"},
		},
	}
}
