package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	AppName            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	// StatementTimeout is sent as the session's statement_timeout; zero leaves the server default.
	StatementTimeout time.Duration
	AutoMigrate      bool
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StorageConfig selects the permanent store and locates the temp upload area.
type StorageConfig struct {
	// Driver is "local" or "minio".
	Driver string
	// Dir is the permanent root for the local driver.
	Dir string
	// TempDir backs TempPublicPrefix on disk.
	TempDir          string
	TempPublicPrefix string
}

// MediaConfig configures compression and merging.
type MediaConfig struct {
	GhostscriptPath  string
	OptimizerTimeout time.Duration
	ScratchDir       string
	MaxUploadBytes   int64
}

// QuotaConfig configures storage limits.
type QuotaConfig struct {
	DefaultLimitBytes int64
	// Lock is "none", "file" or "redis".
	Lock     string
	LockDir  string
	RedisURL string
	LockTTL  time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Timezone string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Storage  StorageConfig
	Media    MediaConfig
	Quota    QuotaConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			AppName:            getEnv("DB_APP_NAME", "mediadocs"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			StatementTimeout:   getEnvDuration("DB_STATEMENT_TIMEOUT", 0),
			AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Storage: StorageConfig{
			Driver:           strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			Dir:              getEnv("STORAGE_DIR", "./data/storage"),
			TempDir:          getEnv("UPLOAD_TEMP_DIR", "./data/uploads/temp"),
			TempPublicPrefix: getEnv("UPLOAD_TEMP_PREFIX", "/uploads/temp/"),
		},
		Media: MediaConfig{
			GhostscriptPath:  getEnv("GHOSTSCRIPT_PATH", "gs"),
			OptimizerTimeout: getEnvDuration("MEDIA_OPTIMIZER_TIMEOUT", 120*time.Second),
			ScratchDir:       getEnv("MEDIA_SCRATCH_DIR", ""),
			MaxUploadBytes:   getEnvInt64("MAX_UPLOAD_BYTES", 20<<20),
		},
		Quota: QuotaConfig{
			DefaultLimitBytes: getEnvInt64("QUOTA_DEFAULT_LIMIT_BYTES", 100<<20),
			Lock:              strings.ToLower(getEnv("QUOTA_LOCK", "none")),
			LockDir:           getEnv("QUOTA_LOCK_DIR", "./data/locks"),
			RedisURL:          getEnv("QUOTA_REDIS_URL", "redis://localhost:6379/0"),
			LockTTL:           getEnvDuration("QUOTA_LOCK_TTL", 5*time.Minute),
		},
	}
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
