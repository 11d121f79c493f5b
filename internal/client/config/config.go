package config

import (
	"time"
)

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds runtime settings for the vaultkeeper CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - DatabaseDSN: path of the local SQLite state database.
//   - StorageBackend: "sqlite" or "redis", where persisted state lives.
//   - RedisURL: redis:// URL, used when StorageBackend is "redis".
//   - SyncInterval: period of automatic background syncs; zero disables them.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerEndpointAddr  string
	DatabaseDSN         string
	StorageBackend      string
	RedisURL            string
	SyncInterval        time.Duration
	OnlineCheckInterval time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabaseDSN = "vaultkeeper.db"
	c.StorageBackend = StorageSQLite
	c.RedisURL = "redis://localhost:6379/0"
	c.SyncInterval = 5 * time.Minute
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "info"
}

// Load applies defaults, then the JSON file named by -c/-config, then flags.
// Later sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
