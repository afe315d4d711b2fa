package config

import (
	"fmt"
	"time"
)

// AccountConfig is the configuration for the account service.
type AccountConfig struct {
	BaseConfig `koanf:",squash"`

	Auth AuthConfig `koanf:"auth"`
}

// Validate checks the account service configuration.
func (c *AccountConfig) Validate() error {
	if c.Service.Port <= 0 {
		return fmt.Errorf("service port must be positive")
	}
	if c.Auth.AccessTokenDuration <= 0 {
		return fmt.Errorf("access token duration must be positive")
	}
	if IsProduction(&c.Service) && c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret must be set in production")
	}
	return nil
}

// MovieConfig is the configuration for the movie service.
type MovieConfig struct {
	BaseConfig `koanf:",squash"`

	Broker BrokerConfig `koanf:"broker"`
}

// Validate checks the movie service configuration.
func (c *MovieConfig) Validate() error {
	if c.Service.Port <= 0 {
		return fmt.Errorf("service port must be positive")
	}
	if c.Pagination.DefaultPageSize <= 0 || c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		return fmt.Errorf("invalid pagination configuration")
	}
	if c.Broker.NATSURL != "" && len(c.Broker.KafkaBrokers) > 0 {
		return fmt.Errorf("nats and kafka brokers are mutually exclusive")
	}
	return nil
}

// GetDefaultAccountConfig returns the default account service configuration.
func GetDefaultAccountConfig() *AccountConfig {
	return &AccountConfig{
		BaseConfig: BaseConfig{
			Service: ServiceConfig{
				Name:        "account",
				Version:     "1.0.0",
				Environment: "development",
				Port:        8081,
			},
			Database: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "moviestack",
				Database: "moviestack_accounts",
				SSLMode:  "disable",
			},
			Logger: LoggerConfig{
				Level:       "info",
				Format:      "console",
				Development: true,
			},
			Pagination: PaginationConfig{
				DefaultPageSize: 10,
				MaxPageSize:     100,
			},
		},
		Auth: AuthConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 7 * 24 * time.Hour,
		},
	}
}

// GetDefaultMovieConfig returns the default movie service configuration.
func GetDefaultMovieConfig() *MovieConfig {
	return &MovieConfig{
		BaseConfig: BaseConfig{
			Service: ServiceConfig{
				Name:        "movie",
				Version:     "1.0.0",
				Environment: "development",
				Port:        8082,
			},
			Database: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "moviestack",
				Database: "moviestack_movies",
				SSLMode:  "disable",
			},
			Logger: LoggerConfig{
				Level:       "info",
				Format:      "console",
				Development: true,
			},
			Pagination: PaginationConfig{
				DefaultPageSize: 10,
				MaxPageSize:     100,
			},
		},
		Broker: BrokerConfig{
			NATSStream: "MOVIES",
			KafkaTopic: "movie-events",
		},
	}
}
