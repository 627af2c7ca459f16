// Package common provides shared utilities for PortafolioAI
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// DefaultJWTSecret is the development signing secret. Production refuses to start with it.
const DefaultJWTSecret = "dev-jwt-secret-change-in-production"

// Config holds all configuration for PortafolioAI
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Auth        AuthConfig      `toml:"auth"`
	Clients     ClientsConfig   `toml:"clients"`
	Cache       CacheConfig     `toml:"cache"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects the document store backend.
type StorageConfig struct {
	Backend   string `toml:"backend"` // "surrealdb" or "file"
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	DataPath  string `toml:"data_path"` // root directory for the file backend
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret        string   `toml:"jwt_secret"`
	TokenExpiry      string   `toml:"token_expiry"`       // duration string, default "10m"
	SlidingExpiry    *bool    `toml:"sliding_expiry"`     // default true
	ResetTokenExpiry string   `toml:"reset_token_expiry"` // duration string, default "30m"
	BcryptCost       int      `toml:"bcrypt_cost"`
	AdminEmails      []string `toml:"admin_emails"`
}

// GetTokenExpiry parses and returns the access token lifetime.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// GetResetTokenExpiry parses and returns the password reset token lifetime.
func (c *AuthConfig) GetResetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.ResetTokenExpiry)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// GetSlidingExpiry reports whether access tokens are renewed past half their lifetime.
func (c *AuthConfig) GetSlidingExpiry() bool {
	if c.SlidingExpiry == nil {
		return true
	}
	return *c.SlidingExpiry
}

// IsAdminEmail reports whether email is listed in admin_emails (case-insensitive).
func (c *AuthConfig) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if strings.ToLower(strings.TrimSpace(e)) == email {
			return true
		}
	}
	return false
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD  EODHDConfig  `toml:"eodhd"`
	Gemini GeminiConfig `toml:"gemini"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	RateLimit       int    `toml:"rate_limit"`
	Timeout         string `toml:"timeout"`
	DefaultExchange string `toml:"default_exchange"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// CacheConfig configures the market quote cache.
type CacheConfig struct {
	Backend       string `toml:"backend"` // "memory" or "redis"
	TTL           string `toml:"ttl"`
	MaxEntries    int    `toml:"max_entries"`
	RedisAddress  string `toml:"redis_address"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// GetTTL parses and returns the cache entry lifetime.
func (c *CacheConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// SchedulerConfig holds schedules for background upkeep jobs (cron syntax with seconds).
type SchedulerConfig struct {
	LogRetention            string `toml:"log_retention"`
	LogRetentionSchedule    string `toml:"log_retention_schedule"`
	ResetTokenSweepSchedule string `toml:"reset_token_sweep_schedule"`
}

// GetLogRetention parses and returns how long audit entries are kept.
func (c *SchedulerConfig) GetLogRetention() time.Duration {
	d, err := time.ParseDuration(c.LogRetention)
	if err != nil || d <= 0 {
		return 90 * 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Storage: StorageConfig{
			Backend:   "surrealdb",
			Address:   "ws://localhost:8001/rpc",
			Namespace: "portafolio",
			Database:  "portafolio",
			Username:  "root",
			Password:  "root",
			DataPath:  "data",
		},
		Auth: AuthConfig{
			JWTSecret:        DefaultJWTSecret,
			TokenExpiry:      "10m",
			ResetTokenExpiry: "30m",
			BcryptCost:       10,
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:         "https://eodhd.com/api",
				RateLimit:       10,
				Timeout:         "30s",
				DefaultExchange: "US",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Cache: CacheConfig{
			Backend:    "memory",
			TTL:        "1m",
			MaxEntries: 500,
		},
		Scheduler: SchedulerConfig{
			LogRetention:            "2160h",
			LogRetentionSchedule:    "0 30 3 * * *",
			ResetTokenSweepSchedule: "0 */15 * * * *",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Outputs:    []string{"console", "file"},
			FilePath:   "./logs/portafolio.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first when present.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PORTAFOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("PORTAFOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("PORTAFOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("PORTAFOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// Storage overrides
	if v := os.Getenv("PORTAFOLIO_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = v
	}
	if v := os.Getenv("PORTAFOLIO_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
	if v := os.Getenv("PORTAFOLIO_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("PORTAFOLIO_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}
	if v := os.Getenv("PORTAFOLIO_DATA_PATH"); v != "" {
		config.Storage.DataPath = v
	}

	// Auth overrides
	if v := os.Getenv("ACCESS_TOKEN_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("PORTAFOLIO_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("PORTAFOLIO_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}
	if v := os.Getenv("PORTAFOLIO_ADMIN_EMAILS"); v != "" {
		config.Auth.AdminEmails = splitCSV(v)
	}

	// Cache overrides
	if v := os.Getenv("PORTAFOLIO_CACHE_BACKEND"); v != "" {
		config.Cache.Backend = v
	}
	if v := os.Getenv("PORTAFOLIO_REDIS_ADDRESS"); v != "" {
		config.Cache.RedisAddress = v
	}

	// Client keys
	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		config.Clients.EODHD.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Clients.Gemini.APIKey = v
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "surrealdb", "file":
	default:
		return fmt.Errorf("unknown storage backend: %s (supported: surrealdb, file)", c.Storage.Backend)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend: %s (supported: memory, redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddress == "" {
		return fmt.Errorf("cache backend redis requires redis_address")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must be set")
	}
	if c.IsProduction() && c.Auth.JWTSecret == DefaultJWTSecret {
		return fmt.Errorf("auth.jwt_secret must be changed in production")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
