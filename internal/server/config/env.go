package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const grpcAddrEnv = "TASKAUTH_GRPC_ADDR"

// envConfig lists the recognised environment variables. Pointer fields stay
// nil when the variable is unset so only present values are applied.
type envConfig struct {
	HTTPAddr                    *string        `env:"TASKAUTH_HTTP_ADDR"`
	GRPCAddr                    *string        `env:"TASKAUTH_GRPC_ADDR"`
	DatabaseDSN                 *string        `env:"TASKAUTH_DATABASE_DSN"`
	SecretKey                   *string        `env:"TASKAUTH_JWT_SECRET"`
	LegacySecretKey             *string        `env:"JWT_SECRET"`
	AccessTokenValidityDuration *time.Duration `env:"TASKAUTH_ACCESS_TOKEN_TTL"`
	BcryptCost                  *int           `env:"TASKAUTH_BCRYPT_COST"`
	LogLevel                    *string        `env:"TASKAUTH_LOG_LEVEL"`
	ShutdownTimeout             *time.Duration `env:"TASKAUTH_SHUTDOWN_TIMEOUT"`
}

// parseEnv overlays values from environ, given in os.Environ form.
// TASKAUTH_JWT_SECRET takes precedence over JWT_SECRET.
func parseEnv(config *Config, environ []string) error {
	vars := env.ToMap(environ)

	var e envConfig
	if err := env.ParseWithOptions(&e, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString(&config.HTTPAddr, e.HTTPAddr)
	setString(&config.GRPCAddr, e.GRPCAddr)
	// The parser treats an empty value as unset; an empty gRPC address is
	// meaningful and disables the endpoint.
	if v, ok := vars[grpcAddrEnv]; ok && v == "" {
		config.GRPCAddr = ""
	}
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.SecretKey, e.LegacySecretKey)
	setString(&config.SecretKey, e.SecretKey)
	setString(&config.LogLevel, e.LogLevel)

	if e.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = *e.AccessTokenValidityDuration
	}
	if e.BcryptCost != nil {
		config.BcryptCost = *e.BcryptCost
	}
	if e.ShutdownTimeout != nil {
		config.ShutdownTimeout = *e.ShutdownTimeout
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
