package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/flagx"
)

var knownFlags = []string{"-a", "-s", "-t", "-r", "-f", "-d", "-l"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-f string   fixture file
//	-d string   PostgreSQL DSN for refresh tokens
//	-l string   log level
//
// Flags it does not know are dropped by flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("vaultkeeper-server", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddrGRPC, "a", cfg.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	accessTokenValidity := fs.Int("t", int(cfg.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidity := fs.Int("r", int(cfg.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")
	fs.StringVar(&cfg.FixturePath, "f", cfg.FixturePath, "fixture file")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	// only flags given explicitly replace durations, which may be finer than a minute
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		case "r":
			cfg.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
		}
	})
	return nil
}
