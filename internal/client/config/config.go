// Package config assembles the client runtime settings from layered
// sources. Precedence, lowest to highest: built-in defaults, environment
// (including an optional .env file), a JSON config file, command-line flags.
package config

import "time"

// Config holds runtime settings for the parcel client.
type Config struct {
	// APIBaseURL is the backend origin, e.g. "https://api.parcel.example".
	APIBaseURL string

	// StoragePath is the sqlite file backing the durable client store.
	StoragePath string

	// RequestTimeout bounds each REST call.
	RequestTimeout time.Duration

	// OnlineCheckInterval is how often the client probes backend liveness.
	OnlineCheckInterval time.Duration

	// UploadURL and UploadPreset configure the external object-storage
	// endpoint used for rider verification documents.
	UploadURL    string
	UploadPreset string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.StoragePath = "parcel.db"
	c.RequestTimeout = 15 * time.Second
	c.OnlineCheckInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, JSON (if present), and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
