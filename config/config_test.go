package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.False(t, cfg.Database.UseSSL)

	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 5, cfg.Auth.MaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LockDuration)

	assert.Equal(t, "none", cfg.MQBackend)
	assert.Equal(t, "none", cfg.ObjStore)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USE_SSL", "true")
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("LOGIN_LOCK_DURATION", "1h")
	t.Setenv("MQ_BACKEND", "rabbitmq")

	cfg := LoadConfig()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.True(t, cfg.Database.UseSSL)
	assert.Equal(t, "access", cfg.Auth.AccessSecret)
	assert.Equal(t, "refresh", cfg.Auth.RefreshSecret)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 3, cfg.Auth.MaxAttempts)
	assert.Equal(t, time.Hour, cfg.Auth.LockDuration)
	assert.Equal(t, "rabbitmq", cfg.MQBackend)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "not-a-number")
	assert.Equal(t, 42, getEnvInt("TEST_INT", 42))

	t.Setenv("TEST_BOOL", "maybe")
	assert.True(t, getEnvBool("TEST_BOOL", true))

	t.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("TEST_DURATION", time.Minute))
}
