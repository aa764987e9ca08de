// Package config loads runtime configuration for the SecureShare CLI.
//
// Sources and precedence: built-in defaults, then an optional JSON file
// (selected via -c or -config), then command-line flags.
package config

import "time"

// Config holds runtime settings for the CLI.
type Config struct {
	// ServerURL is the base URL of the backend HTTP API.
	ServerURL string
	// DatabaseDSN locates the local sqlite metadata database.
	DatabaseDSN string
	// RequestTimeout bounds every individual API call.
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabaseDSN = "secureshare.db"
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
