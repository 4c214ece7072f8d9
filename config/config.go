// Package config loads runtime settings from the environment.
// File: config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"zeus-tournaments/logger"
)

// Session storage and data backend selectors.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	BackendREST     = "rest"
	BackendPostgres = "postgres"
)

// DefaultSessionSecret signs cookies when SESSION_SECRET is unset. Production refuses it.
const DefaultSessionSecret = "secret"

// Config holds everything main needs to wire the application.
type Config struct {
	Env             string
	Port            string
	ApplicationURL  string
	WebsocketURL    string
	SupabaseURL     string
	SupabaseAnonKey string
	SessionSecret   string
	SessionStore    string
	RedisAddr       string
	RedisDB         int
	DataBackend     string
	DatabaseURL     string
	LogDir          string
	MetricsEnabled  bool
	TracingEnabled  bool
	ViewIdleTimeout time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn.Printf("[config.Load] Ignoring unreadable .env file: %v", err)
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		ApplicationURL:  getEnv("APPLICATION_URL", "http://localhost:8080"),
		WebsocketURL:    getEnv("WEBSOCKET_URL", "ws://localhost:8080/view-updates"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		SessionSecret:   getEnv("SESSION_SECRET", DefaultSessionSecret),
		SessionStore:    getEnv("SESSION_STORE", StoreMemory),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		DataBackend:     getEnv("DATA_BACKEND", BackendREST),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		LogDir:          getEnv("LOG_DIR", "./logs"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", false),
		TracingEnabled:  getEnvBool("TRACING_ENABLED", false),
		ViewIdleTimeout: getEnvDuration("VIEW_IDLE_TIMEOUT", 30*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the application cannot start with.
func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if c.Env == "production" && (c.SessionSecret == "" || c.SessionSecret == DefaultSessionSecret) {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	switch c.SessionStore {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	switch c.DataBackend {
	case BackendREST:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_BACKEND=%s", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown DATA_BACKEND %q", c.DataBackend)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as integer, else the default.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Warn.Printf("[config] %s=%q is not an integer, using %d", key, s, def)
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		logger.Warn.Printf("[config] %s=%q is not a boolean, using %v", key, s, def)
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Warn.Printf("[config] %s=%q is not a duration, using %v", key, s, def)
		return def
	}
	return d
}
