package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DB_DSN", "STORAGE_DRIVER", "SHUTDOWN_TIMEOUT_SECONDS", "LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS", "ACTOR_HEADER", "BCRYPT_COST"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "X-Customer-ID", cfg.ActorHeader)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,,")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("ACTOR_HEADER", "X-Actor")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "X-Actor", cfg.ActorHeader)
}

func TestFromEnv_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "soon")
	t.Setenv("BCRYPT_COST", "high")
	cfg := FromEnv()
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
}

func TestLoad_ReadsDotEnvWithoutOverriding(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nHTTP_ADDR=:7000\n"), 0o600))
	t.Setenv("HTTP_ADDR", ":6000")
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	cfg := Load(path)
	assert.Equal(t, ":6000", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))
}
