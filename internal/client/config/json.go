package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/parcel-ng/parcel-client/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// are strings accepted by time.ParseDuration, e.g. "15s".
type JsonConfig struct {
	APIBaseURL          string `json:"api_base_url"`
	StoragePath         string `json:"storage_path"`
	RequestTimeout      string `json:"request_timeout"`
	OnlineCheckInterval string `json:"online_check_interval"`
	UploadURL           string `json:"upload_url"`
	UploadPreset        string `json:"upload_preset"`
}

// parseJson overlays Config with values loaded from the JSON file given
// via -c/-config. With no such flag it is a no-op. Read or parse errors
// panic; the caller decides whether to recover.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.StoragePath != "" {
		cfg.StoragePath = jc.StoragePath
	}
	if jc.RequestTimeout != "" {
		if d, err := time.ParseDuration(jc.RequestTimeout); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if jc.OnlineCheckInterval != "" {
		if d, err := time.ParseDuration(jc.OnlineCheckInterval); err == nil {
			cfg.OnlineCheckInterval = d
		}
	}
	if jc.UploadURL != "" {
		cfg.UploadURL = jc.UploadURL
	}
	if jc.UploadPreset != "" {
		cfg.UploadPreset = jc.UploadPreset
	}
}
