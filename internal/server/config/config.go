// Package config handles configuration for the development server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the vaultkeeper development server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC endpoint.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - FixturePath: JSON seed file with the served accounts and their vaults.
//   - DatabaseDSN: PostgreSQL DSN (pgx) for refresh tokens; empty keeps them in memory.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrGRPC             string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	FixturePath                  string
	DatabaseDSN                  string
	LogLevel                     string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 1 * time.Minute
	c.RefreshTokenValidityDuration = 3 * time.Minute
	c.FixturePath = "fixtures/dev.json"
	c.LogLevel = "info"
}

// Load applies defaults, then the JSON file named by -c/-config, then flags.
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
