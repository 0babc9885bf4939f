package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"leaddist-service/internal/pkg/jwt"
)

type AppConfig struct {
	// Server
	Env         string
	HTTPAddr    string
	CORSOrigins []string

	// Storage
	DatabaseURL string
	RedisAddrs  []string
	RedisPass   string
	RedisDB     int

	// JWT
	JWT jwt.Config

	// Uploads
	UploadDir   string
	MaxFileSize int64

	// Distribution
	LockTTL  time.Duration
	LockWait time.Duration

	// Login throttling
	LoginMaxAttempts int64
	LoginWindow      time.Duration

	// Seeded super admin
	SuperAdminEmail    string
	SuperAdminPassword string
	SuperAdminName     string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		Env:         getEnv("APP_ENV", "production"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8000"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"*"}),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisAddrs:  getEnvSlice("REDIS_ADDR", []string{"localhost:6379"}),
		RedisPass:   getEnv("REDIS_PASS", ""),
		RedisDB:     getEnvInt("REDIS_DB", 0),

		JWT: jwt.Config{
			Secret:   getEnv("JWT_SECRET", ""),
			Issuer:   getEnv("JWT_ISSUER", "leaddist"),
			Audience: getEnv("JWT_AUDIENCE", "leaddist-admins"),
			TTL:      getEnvDuration("JWT_TTL", 7*24*time.Hour),
		},

		UploadDir:   getEnv("UPLOAD_DIR", os.TempDir()),
		MaxFileSize: int64(getEnvInt("MAX_FILE_SIZE", 10*1024*1024)),

		LockTTL:  getEnvDuration("DISTRIBUTION_LOCK_TTL", 30*time.Second),
		LockWait: getEnvDuration("DISTRIBUTION_LOCK_WAIT", 10*time.Second),

		LoginMaxAttempts: int64(getEnvInt("LOGIN_MAX_ATTEMPTS", 5)),
		LoginWindow:      getEnvDuration("LOGIN_WINDOW", 15*time.Minute),

		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", ""),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", ""),
		SuperAdminName:     getEnv("SUPER_ADMIN_NAME", "Super Administrator"),
	}
}

// Validate reports settings the service cannot start without.
func (c AppConfig) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWT.Secret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	return nil
}

func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
