package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names recognized by the client.
const (
	envAPIBaseURL   = "PARCEL_API_URL"
	envStoragePath  = "PARCEL_STORAGE_PATH"
	envTimeout      = "PARCEL_REQUEST_TIMEOUT"
	envPingInterval = "PARCEL_PING_INTERVAL"
	envUploadURL    = "PARCEL_UPLOAD_URL"
	envUploadPreset = "PARCEL_UPLOAD_PRESET"
)

// parseEnv overlays Config with values from the process environment.
// A .env file in the working directory is loaded first if present;
// real environment variables win over the file.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv(envAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(envStoragePath); v != "" {
		cfg.StoragePath = v
	}
	if v := os.Getenv(envTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv(envPingInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.OnlineCheckInterval = d
		}
	}
	if v := os.Getenv(envUploadURL); v != "" {
		cfg.UploadURL = v
	}
	if v := os.Getenv(envUploadPreset); v != "" {
		cfg.UploadPreset = v
	}
}
