package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"secureshare/internal/flagx"
)

// duration accepts either a string like "30s" or integer nanoseconds, so the
// JSON file stays readable without giving up precision.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		d.Duration = time.Duration(v)
		return nil
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
}

type jsonConfig struct {
	ServerURL      string   `json:"server_url"`
	DatabaseDSN    string   `json:"database_dsn"`
	RequestTimeout duration `json:"request_timeout"`
}

// parseJSON overlays cfg with values from the JSON file named by -c/-config.
// Absent file path means no JSON source. Read or unmarshal errors panic;
// a broken config file should stop startup.
func parseJSON(cfg *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc jsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
