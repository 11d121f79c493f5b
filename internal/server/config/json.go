package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/vaultkeeper/internal/flagx"
	"github.com/dmitrijs2005/vaultkeeper/internal/timex"
)

// JsonConfig is the on-disk form of Config. Token lifetimes accept "90s"
// style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	FixturePath                  string         `json:"fixture_path"`
	DatabaseDSN                  string         `json:"database_dsn"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson overlays cfg with the non-empty values of the file given by -c or
// -config.
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

	if jc.EndpointAddrGRPC != "" {
		cfg.EndpointAddrGRPC = jc.EndpointAddrGRPC
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.AccessTokenValidityDuration.Duration != 0 {
		cfg.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	if jc.RefreshTokenValidityDuration.Duration != 0 {
		cfg.RefreshTokenValidityDuration = jc.RefreshTokenValidityDuration.Duration
	}
	if jc.FixturePath != "" {
		cfg.FixturePath = jc.FixturePath
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
