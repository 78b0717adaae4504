// Package config handles configuration for the auth server, layered as
// defaults, an optional JSON file, environment variables and finally
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskauth/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// MinSecretKeyBytes is the shortest accepted HMAC signing secret.
const MinSecretKeyBytes = 32

var ErrMissingSecret = errors.New("signing secret is required (set TASKAUTH_JWT_SECRET, JWT_SECRET or -s)")

// Config holds runtime settings for the taskauth server.
//
// Fields:
//   - HTTPAddr: bind address for the JSON HTTP API.
//   - GRPCAddr: bind address for the gRPC endpoint; empty disables it.
//   - DatabaseDSN: postgres:// URL or a SQLite DSN (file:, sqlite://, :memory:).
//   - SecretKey: HMAC secret for signing access tokens. No default.
//   - AccessTokenValidityDuration: lifetime of issued access tokens.
//   - BcryptCost: work factor for password hashes.
//   - LogLevel: debug, info, warn or error.
//   - ShutdownTimeout: grace period for in-flight requests on shutdown.
type Config struct {
	HTTPAddr                    string
	GRPCAddr                    string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	BcryptCost                  int
	LogLevel                    string
	ShutdownTimeout             time.Duration
}

// LoadDefaults populates Config with development defaults. The signing secret
// is deliberately left empty.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = "file:taskauth.db"
	c.SecretKey = ""
	c.AccessTokenValidityDuration = time.Hour
	c.BcryptCost = bcrypt.DefaultCost
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then environ (os.Environ form), then flags in args, and
// validates the result.
func LoadConfig(args []string, environ []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting the server cannot start with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecret
	}
	if len(c.SecretKey) < MinSecretKeyBytes {
		return fmt.Errorf("signing secret must be at least %d bytes", MinSecretKeyBytes)
	}
	if c.HTTPAddr == "" {
		return errors.New("http address is required")
	}
	if c.DatabaseDSN == "" {
		return errors.New("database dsn is required")
	}
	if c.AccessTokenValidityDuration <= 0 {
		return fmt.Errorf("access token validity must be positive, got %s", c.AccessTokenValidityDuration)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
