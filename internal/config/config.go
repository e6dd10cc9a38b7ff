package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Секреты передаются явно через конфигурацию при старте процесса,
// без глобальных переменных — в тестах подставляются фикстуры.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Auth    AuthConfig
	OAuth   OAuthConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address in host:port form
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// StorageConfig holds database configuration
type StorageConfig struct {
	// Path to the SQLite database file, ":memory:" for tests
	DatabasePath string
	// Startup readiness gate: retry attempts and base delay
	ConnectRetries    int
	ConnectRetryDelay time.Duration
}

// AuthConfig holds session and API token settings
type AuthConfig struct {
	// JWTSecret signs session tokens (HS256)
	JWTSecret string
	// SessionSecret authenticates the session cookie
	SessionSecret string
	// SessionTTL is the fixed lifetime of a session token
	SessionTTL time.Duration
}

// OAuthConfig holds Google OAuth client settings.
// Пустые ClientID/ClientSecret означают, что провайдер не настроен.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	RedirectURL        string
	// ExchangeTimeout bounds server-to-server calls to the provider
	ExchangeTimeout time.Duration
}

// Configured reports whether the Google provider can be used
func (c OAuthConfig) Configured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string // debug, info, warn, error
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("PH_HOST", "0.0.0.0"),
			Port:            getEnv("PH_PORT", "3000"),
			ReadTimeout:     getEnvDuration("PH_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("PH_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("PH_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("PH_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			DatabasePath:      getEnv("PH_DATABASE_PATH", "prompthouse.db"),
			ConnectRetries:    getEnvInt("PH_DB_CONNECT_RETRIES", 5),
			ConnectRetryDelay: getEnvDuration("PH_DB_CONNECT_RETRY_DELAY", 2*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("PH_JWT_SECRET", ""),
			SessionSecret: getEnv("PH_SESSION_SECRET", ""),
			SessionTTL:    getEnvDuration("PH_SESSION_TTL", 24*time.Hour),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:        getEnv("PH_OAUTH_REDIRECT_URL", ""),
			ExchangeTimeout:    getEnvDuration("PH_OAUTH_EXCHANGE_TIMEOUT", 5*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("PH_LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required settings are present
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("PH_JWT_SECRET is required")
	}
	if c.Auth.SessionSecret == "" {
		return fmt.Errorf("PH_SESSION_SECRET is required")
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("PH_DATABASE_PATH cannot be empty")
	}
	if c.Storage.ConnectRetries < 1 {
		return fmt.Errorf("PH_DB_CONNECT_RETRIES must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
