package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := GetDefaultMovieConfig()
	require.NoError(t, LoadServiceConfig("movie", cfg))

	assert.Equal(t, "movie", cfg.Service.Name)
	assert.Equal(t, 8082, cfg.Service.Port)
	assert.Equal(t, 10, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.Empty(t, cfg.Broker.NATSURL)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("MOVIESTACK_SERVICE_PORT", "9090")
	t.Setenv("MOVIESTACK_DATABASE_HOST", "db.internal")

	cfg := GetDefaultMovieConfig()
	require.NoError(t, LoadServiceConfig("movie", cfg))

	assert.Equal(t, 9090, cfg.Service.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestAccountDefaults(t *testing.T) {
	cfg := GetDefaultAccountConfig()
	require.NoError(t, LoadServiceConfig("account", cfg))

	assert.Equal(t, "account", cfg.Service.Name)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenDuration)
}

func TestAccountValidateRejectsMissingSecretInProduction(t *testing.T) {
	cfg := GetDefaultAccountConfig()
	cfg.Service.Environment = "production"
	cfg.Auth.JWTSecret = ""

	assert.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = "super-secret"
	assert.NoError(t, cfg.Validate())
}

func TestMovieValidateRejectsConflictingBrokers(t *testing.T) {
	cfg := GetDefaultMovieConfig()
	cfg.Broker.NATSURL = "nats://localhost:4222"
	cfg.Broker.KafkaBrokers = []string{"localhost:9092"}

	assert.Error(t, cfg.Validate())

	cfg.Broker.KafkaBrokers = nil
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseConfigConversion(t *testing.T) {
	dc := DatabaseConfig{
		Host:           "db.internal",
		Port:           5433,
		User:           "svc",
		Database:       "movies",
		MaxConnections: 50,
	}

	cfg := dc.ToDatabaseConfig()
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, "svc", cfg.User)
	assert.Equal(t, "movies", cfg.Database)
	assert.Equal(t, 50, cfg.MaxConnections)
	// Unset fields keep their defaults.
	assert.Equal(t, "disable", cfg.SSLMode)
}
