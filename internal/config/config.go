package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	App      AppConfig
	Piket    PiketConfig
	Admin    AdminConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// RedisConfig is optional; an empty Addr disables live counters and the
// cross-instance reconciliation lease.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Storage        string
	AllowedOrigins []string
	DeviceKey      string
	OnlineWindow   time.Duration
}

// PiketConfig holds the attendance rules.
type PiketConfig struct {
	Timezone        string
	Cutoff          string
	MinimumDuration time.Duration
	ReconcileSpec   string
	AutoMigrate     bool
}

// AdminConfig bootstraps the first admin account when set.
type AdminConfig struct {
	Username string
	Password string
	Name     string
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "reslab_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(dbMaxConns),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	onlineWindow, err := time.ParseDuration(getEnv("DEVICE_ONLINE_WINDOW", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEVICE_ONLINE_WINDOW: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Storage:        strings.ToLower(getEnv("APP_STORAGE", StoragePostgres)),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
		DeviceKey:      getEnv("DEVICE_API_KEY", ""),
		OnlineWindow:   onlineWindow,
	}

	// Piket rules
	minDuration, err := time.ParseDuration(getEnv("PIKET_MIN_DURATION", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PIKET_MIN_DURATION: %w", err)
	}

	config.Piket = PiketConfig{
		Timezone:        getEnv("APP_TIMEZONE", clock.DefaultTimezone),
		Cutoff:          getEnv("PIKET_CUTOFF", "18:00:00"),
		MinimumDuration: minDuration,
		ReconcileSpec:   getEnv("RECONCILE_CRON", "1 18 * * *"),
		AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
	}

	// JWT configuration
	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	config.Admin = AdminConfig{
		Username: getEnv("ADMIN_USERNAME", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
		Name:     getEnv("ADMIN_NAME", "Administrator"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Storage != StoragePostgres && c.App.Storage != StorageMemory {
		return fmt.Errorf("APP_STORAGE must be %q or %q", StoragePostgres, StorageMemory)
	}
	if c.App.Storage == StoragePostgres && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := clock.ParseTimeOfDay(c.Piket.Cutoff); err != nil {
		return fmt.Errorf("invalid PIKET_CUTOFF: %w", err)
	}
	if c.Piket.MinimumDuration <= 0 {
		return fmt.Errorf("PIKET_MIN_DURATION must be positive")
	}
	if c.Admin.Username != "" && len(c.Admin.Password) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
