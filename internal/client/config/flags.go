package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-b", "-r", "-s", "-i", "-l"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the backend server
//	-d string   local database path
//	-b string   storage backend: sqlite or redis
//	-r string   redis URL
//	-s int      automatic sync interval in seconds, 0 disables
//	-i int      online check interval in seconds
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("vaultkeeper", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local database path")
	fs.StringVar(&cfg.StorageBackend, "b", cfg.StorageBackend, "storage backend (sqlite|redis)")
	fs.StringVar(&cfg.RedisURL, "r", cfg.RedisURL, "redis url")
	syncInterval := fs.Int("s", int(cfg.SyncInterval.Seconds()), "automatic sync interval (in seconds)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	switch cfg.StorageBackend {
	case StorageSQLite, StorageRedis:
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "s":
			cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
	return nil
}
