// Package config holds the library configuration: where the ledger lives,
// which backend to use, and how payment handles are resolved.
package config

import (
	"fmt"
	"net"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable name in FromEnv.
const EnvPrefix = "DISPERSE_"

// Config collects the settings for opening an engine and a resolver.
type Config struct {
	// DataDir is the directory the ledger database lives in.
	DataDir string `env:"DATA_DIR"`

	// Backend selects the ledger backend: "bolt" or "sqlite".
	Backend string `env:"BACKEND"`

	// MaxBatch caps the number of legs per disbursement call.
	// Zero means uncapped.
	MaxBatch int `env:"MAX_BATCH"`

	// ResolverUpstream is the recursive resolver (host:port) used for
	// DNSSEC-validated handle resolution.
	ResolverUpstream string `env:"RESOLVER_UPSTREAM"`

	// RequireDNSSEC makes handle resolution insist on validated answers.
	RequireDNSSEC bool `env:"REQUIRE_DNSSEC"`
}

// DefaultConfig returns the defaults: bolt backend under ./data, uncapped
// batches, Google Public DNS upstream.
func DefaultConfig() Config {
	return Config{
		DataDir:          "data",
		Backend:          "bolt",
		MaxBatch:         0,
		ResolverUpstream: "8.8.8.8:53",
	}
}

// FromEnv returns DefaultConfig overridden by DISPERSE_-prefixed
// environment variables.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func Validate(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}
	if cfg.Backend != "bolt" && cfg.Backend != "sqlite" {
		return ErrInvalidBackend
	}
	if cfg.MaxBatch < 0 {
		return ErrInvalidMaxBatch
	}
	if cfg.ResolverUpstream != "" {
		if _, _, err := net.SplitHostPort(cfg.ResolverUpstream); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidUpstream, err)
		}
	}
	return nil
}
