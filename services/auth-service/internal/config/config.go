// Package config loads the auth service configuration from the environment.
// All values have development defaults and are overridable per deployment;
// business logic never reads the environment directly.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// AuthServiceConfig holds all runtime settings for the auth service.
type AuthServiceConfig struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"auth-service"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	HTTPAddr    string `env:"HTTP_ADDR"    envDefault:":8080"`
	HealthAddr  string `env:"HEALTH_ADDR"  envDefault:":9090"`

	// AppPasswordResetURL is the frontend page password reset links point at.
	AppPasswordResetURL string `env:"APP_PASSWORD_RESET_URL" envDefault:"http://localhost:3000/reset-password"`

	Mongo  MongoConfig  `envPrefix:"MONGO_"`
	Token  TokenConfig  `envPrefix:"TOKEN_"`
	Hash   HashConfig   `envPrefix:"HASH_"`
	Consul ConsulConfig `envPrefix:"CONSUL_"`
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI      string `env:"URI"      envDefault:"mongodb://localhost:27017"`
	Database string `env:"DATABASE" envDefault:"biolock"`
}

// TokenConfig holds signing secrets and lifetimes for issued tokens. The
// defaults are insecure development values and must be overridden in
// production.
type TokenConfig struct {
	Issuer                      string        `env:"ISSUER"                          envDefault:"biolock-api"`
	AccessTokenSecret           string        `env:"ACCESS_TOKEN_SECRET"             envDefault:"defaultSecret"`
	AccessTokenExpiresIn        time.Duration `env:"ACCESS_TOKEN_EXPIRES_IN"         envDefault:"1h"`
	PasswordResetTokenSecret    string        `env:"PASSWORD_RESET_TOKEN_SECRET"     envDefault:"defaultResetSecret"`
	PasswordResetTokenExpiresIn time.Duration `env:"PASSWORD_RESET_TOKEN_EXPIRES_IN" envDefault:"15m"`
}

// HashConfig tunes the password hashing cost. TimeCost is the argon2 pass
// count; raise it over time as hardware speeds up.
type HashConfig struct {
	TimeCost uint32 `env:"TIME_COST" envDefault:"3"`
}

// ConsulConfig holds service discovery settings. An empty address disables
// registration.
type ConsulConfig struct {
	Address          string `env:"ADDRESS"`
	AdvertiseAddress string `env:"ADVERTISE_ADDRESS" envDefault:"127.0.0.1"`
	HealthPort       int    `env:"HEALTH_PORT"       envDefault:"9090"`
}

// Load parses the configuration from environment variables.
func Load(logger *zerolog.Logger) *AuthServiceConfig {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate auth service configuration")
	}

	return &cfg
}

func (c *AuthServiceConfig) validate() error {
	if c.Token.AccessTokenSecret == "" {
		return fmt.Errorf("access token secret must not be empty")
	}
	if c.Token.PasswordResetTokenSecret == "" {
		return fmt.Errorf("password reset token secret must not be empty")
	}
	if c.Token.AccessTokenExpiresIn <= 0 {
		return fmt.Errorf("access token lifetime must be positive")
	}
	if c.Token.PasswordResetTokenExpiresIn <= 0 {
		return fmt.Errorf("password reset token lifetime must be positive")
	}

	return nil
}
