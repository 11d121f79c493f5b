package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/vaultkeeper/internal/flagx"
	"github.com/dmitrijs2005/vaultkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration so they can be written as "3s" or as nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	DatabaseDSN         string         `json:"database_dsn"`
	StorageBackend      string         `json:"storage_backend"`
	RedisURL            string         `json:"redis_url"`
	SyncInterval        timex.Duration `json:"sync_interval"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays Config with the non-empty values of the JSON file given
// by -c or -config. Without such a flag nothing changes.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.StorageBackend, jc.StorageBackend)
	setString(&cfg.RedisURL, jc.RedisURL)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
