// Package config loads runtime configuration for the vaultkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_dsn": "vaultkeeper.db",
//	  "storage_backend": "sqlite",
//	  "redis_url": "redis://localhost:6379/0",
//	  "sync_interval": "5m",
//	  "online_check_interval": "3s",
//	  "log_level": "info"
//	}
//
// Environment variables are not read.
package config
