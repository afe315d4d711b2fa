package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/moviestack/moviestack/pkg/database"
)

// Config is the interface that all service configs must implement.
type Config interface {
	Validate() error
}

// BaseConfig contains common configuration for all services.
type BaseConfig struct {
	Service    ServiceConfig    `koanf:"service"`
	Database   DatabaseConfig   `koanf:"database"`
	Logger     LoggerConfig     `koanf:"logger"`
	Pagination PaginationConfig `koanf:"pagination"`
}

// ServiceConfig contains service-specific metadata.
type ServiceConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // dev, staging, production
	Port        int    `koanf:"port"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Database        string        `koanf:"database"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxConnections  int           `koanf:"max_connections"`
	MinConnections  int           `koanf:"min_connections"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time"`
}

// LoggerConfig contains logging configuration.
type LoggerConfig struct {
	Level       string `koanf:"level"`  // debug, info, warn, error
	Format      string `koanf:"format"` // json, console
	Development bool   `koanf:"development"`
}

// PaginationConfig contains pagination configuration.
type PaginationConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// AuthConfig contains authentication configuration for the account service.
type AuthConfig struct {
	JWTSecret            string        `koanf:"jwt_secret"`
	AccessTokenDuration  time.Duration `koanf:"access_token_duration"`
	RefreshTokenDuration time.Duration `koanf:"refresh_token_duration"`
}

// BrokerConfig contains the optional message broker settings used to fan
// movie events out to other services. NATS and Kafka are mutually exclusive;
// leaving both unset keeps events in-process.
type BrokerConfig struct {
	NATSURL      string   `koanf:"nats_url"`
	NATSStream   string   `koanf:"nats_stream"`
	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`
}

// ToDatabaseConfig converts to the database package's config type.
func (c DatabaseConfig) ToDatabaseConfig() *database.PostgresConfig {
	cfg := database.DefaultPostgresConfig()
	if c.Host != "" {
		cfg.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if c.User != "" {
		cfg.User = c.User
	}
	if c.Password != "" {
		cfg.Password = c.Password
	}
	if c.Database != "" {
		cfg.Database = c.Database
	}
	if c.SSLMode != "" {
		cfg.SSLMode = c.SSLMode
	}
	if c.MaxConnections != 0 {
		cfg.MaxConnections = c.MaxConnections
	}
	if c.MinConnections != 0 {
		cfg.MinConnections = c.MinConnections
	}
	if c.MaxConnLifetime != 0 {
		cfg.MaxConnLifetime = c.MaxConnLifetime
	}
	if c.MaxConnIdleTime != 0 {
		cfg.MaxConnIdleTime = c.MaxConnIdleTime
	}
	return cfg
}

// IsProduction reports whether the service runs in production mode.
func IsProduction(cfg *ServiceConfig) bool {
	return strings.EqualFold(cfg.Environment, "production")
}

// ListenAddress returns the HTTP listen address for the service.
func ListenAddress(cfg *ServiceConfig) string {
	return fmt.Sprintf(":%d", cfg.Port)
}

// Manager handles configuration loading and parsing.
type Manager struct {
	k           *koanf.Koanf
	serviceName string
	configPaths []string
}

// NewManager creates a new configuration manager.
func NewManager(serviceName string) *Manager {
	return &Manager{
		k:           koanf.New("."),
		serviceName: serviceName,
		configPaths: defaultConfigPaths(serviceName),
	}
}

// LoadConfig loads configuration from struct defaults, then config files,
// then environment variables, in increasing order of precedence.
func (m *Manager) LoadConfig(cfg Config) error {
	if err := m.k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, path := range m.configPaths {
		if err := m.loadFromFile(path); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to load config from %s: %w", path, err)
			}
		}
	}

	if err := m.loadFromEnv(); err != nil {
		return fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := m.k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// LoadServiceConfig loads configuration for a service into cfg.
func LoadServiceConfig[T Config](serviceName string, cfg T) error {
	return NewManager(serviceName).LoadConfig(cfg)
}

// MustLoadServiceConfig loads configuration for a service or panics.
func MustLoadServiceConfig[T Config](serviceName string, cfg T) T {
	if err := LoadServiceConfig(serviceName, cfg); err != nil {
		panic(fmt.Sprintf("failed to load %s config: %v", serviceName, err))
	}
	return cfg
}

// loadFromFile loads configuration from a yaml file.
func (m *Manager) loadFromFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return err
	}
	return m.k.Load(file.Provider(path), yaml.Parser())
}

// loadFromEnv loads configuration from environment variables.
func (m *Manager) loadFromEnv() error {
	prefix := "MOVIESTACK_"

	return m.k.Load(env.Provider(prefix, ".", func(s string) string {
		// MOVIESTACK_DATABASE_HOST becomes database.host
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, prefix), "_", "."))
	}), nil)
}

// defaultConfigPaths returns the config file locations to check, in
// increasing order of precedence.
func defaultConfigPaths(serviceName string) []string {
	return []string{
		filepath.Join("/etc/moviestack", serviceName+".yaml"),
		filepath.Join("configs", serviceName+".yaml"),
		"config.yaml",
	}
}
