package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORAGE_DRIVER", "MinIO")
	t.Setenv("MEDIA_OPTIMIZER_TIMEOUT", "45")
	t.Setenv("QUOTA_DEFAULT_LIMIT_BYTES", "10485760")
	t.Setenv("QUOTA_LOCK", "file")
	t.Setenv("DB_STATEMENT_TIMEOUT", "30s")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "minio", cfg.Storage.Driver)
	assert.Equal(t, "/uploads/temp/", cfg.Storage.TempPublicPrefix)
	assert.Equal(t, 45*time.Second, cfg.Media.OptimizerTimeout)
	assert.Equal(t, "gs", cfg.Media.GhostscriptPath)
	assert.Equal(t, int64(10485760), cfg.Quota.DefaultLimitBytes)
	assert.Equal(t, "file", cfg.Quota.Lock)
	assert.Equal(t, 30*time.Second, cfg.Database.StatementTimeout)
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "Asia/Jakarta"}
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))
	assert.Equal(t, int64(123), getEnvInt64(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))
	assert.Equal(t, int64(10), getEnvInt64(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	t.Setenv(key, "1m30s")
	assert.Equal(t, 90*time.Second, getEnvDuration(key, time.Second))

	t.Setenv(key, "15")
	assert.Equal(t, 15*time.Second, getEnvDuration(key, time.Second))

	t.Setenv(key, "soon")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))
}
