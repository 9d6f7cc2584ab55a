package config

import "time"

// Config holds runtime settings for the pawhub client.
//
// Fields:
//   - APIBaseURL: base URL of the platform API.
//   - RequestTimeout: hard per-request deadline applied by the gateway.
//   - DBPath: path of the local SQLite store holding the session tokens.
//   - WatchDebounce: settle time before a token-store change triggers a
//     re-verify.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	DBPath         string
	WatchDebounce  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 25 * time.Second
	c.DBPath = "pawhub.db"
	c.WatchDebounce = 200 * time.Millisecond
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
