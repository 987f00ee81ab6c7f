package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Upstream   UpstreamConfig
	Cache      CacheConfig
	Sentry     SentryConfig
	Resilience ResilienceConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in hours
}

// UpstreamConfig holds connection settings for the remote gift-card API
type UpstreamConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
	// SuccessURL/FailureURL are passed on consumer order creation so the
	// hosted payment page can return the buyer to the storefront.
	SuccessURL string
	FailureURL string
}

// CacheConfig controls client-side caching of upstream reads
type CacheConfig struct {
	ProfileTTLSeconds   int // how long a cached merchant profile is kept at all
	ProfileStaleSeconds int // age after which a cached profile is served but reconciled
	ProductTTLSeconds   int
}

// SentryConfig holds error tracking configuration
type SentryConfig struct {
	DSN     string
	Enabled bool
}

// ResilienceConfig groups runtime resilience controls
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig captures default and per-endpoint breaker tuning
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	SuccessThreshold int
	TimeoutSeconds   int
	IntervalSeconds  int
	ServiceOverrides map[string]CircuitBreakerSettings
}

// CircuitBreakerSettings overrides defaults for a specific upstream operation group
type CircuitBreakerSettings struct {
	FailureThreshold int `json:"failure_threshold"`
	SuccessThreshold int `json:"success_threshold"`
	TimeoutSeconds   int `json:"timeout_seconds"`
	IntervalSeconds  int `json:"interval_seconds"`
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			Expiration: getEnvAsInt("JWT_EXPIRATION", 24),
		},
		Upstream: UpstreamConfig{
			BaseURL:        getEnv("GIFTCARD_API_BASE_URL", "https://api.giftcards.example.com"),
			APIKey:         getEnv("GIFTCARD_API_KEY", ""),
			TimeoutSeconds: getEnvAsInt("GIFTCARD_API_TIMEOUT", 15),
			SuccessURL:     getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success"),
			FailureURL:     getEnv("CHECKOUT_FAILURE_URL", "http://localhost:3000/checkout/failure"),
		},
		Cache: CacheConfig{
			ProfileTTLSeconds:   getEnvAsInt("PROFILE_CACHE_TTL", 86400),
			ProfileStaleSeconds: getEnvAsInt("PROFILE_CACHE_STALE_AFTER", 300),
			ProductTTLSeconds:   getEnvAsInt("PRODUCT_CACHE_TTL", 300),
		},
		Sentry: SentryConfig{
			DSN:     getEnv("SENTRY_DSN", ""),
			Enabled: getEnv("SENTRY_DSN", "") != "",
		},
		Resilience: ResilienceConfig{
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          getEnvAsBool("CB_ENABLED", true),
				FailureThreshold: getEnvAsInt("CB_FAILURE_THRESHOLD", 5),
				SuccessThreshold: getEnvAsInt("CB_SUCCESS_THRESHOLD", 1),
				TimeoutSeconds:   getEnvAsInt("CB_TIMEOUT_SECONDS", 30),
				IntervalSeconds:  getEnvAsInt("CB_INTERVAL_SECONDS", 60),
			},
		},
	}

	if breakerOverrides := getEnv("CB_SERVICE_OVERRIDES", ""); breakerOverrides != "" {
		var serviceConfig map[string]CircuitBreakerSettings
		if err := json.Unmarshal([]byte(breakerOverrides), &serviceConfig); err != nil {
			return nil, fmt.Errorf("invalid CB_SERVICE_OVERRIDES value: %w", err)
		}
		cfg.Resilience.CircuitBreaker.ServiceOverrides = serviceConfig
	}

	if cfg.Upstream.TimeoutSeconds <= 0 {
		cfg.Upstream.TimeoutSeconds = 15
	}

	if cfg.Cache.ProfileStaleSeconds <= 0 {
		cfg.Cache.ProfileStaleSeconds = 300
	}

	if cfg.Resilience.CircuitBreaker.TimeoutSeconds <= 0 {
		cfg.Resilience.CircuitBreaker.TimeoutSeconds = 30
	}

	if cfg.Resilience.CircuitBreaker.IntervalSeconds <= 0 {
		cfg.Resilience.CircuitBreaker.IntervalSeconds = 60
	}

	if cfg.Resilience.CircuitBreaker.FailureThreshold <= 0 {
		cfg.Resilience.CircuitBreaker.FailureThreshold = 5
	}

	if cfg.Resilience.CircuitBreaker.SuccessThreshold <= 0 {
		cfg.Resilience.CircuitBreaker.SuccessThreshold = 1
	}

	return cfg, nil
}

// SettingsFor returns effective breaker settings for a specific upstream operation group
func (c CircuitBreakerConfig) SettingsFor(service string) CircuitBreakerSettings {
	settings := CircuitBreakerSettings{
		FailureThreshold: c.FailureThreshold,
		SuccessThreshold: c.SuccessThreshold,
		TimeoutSeconds:   c.TimeoutSeconds,
		IntervalSeconds:  c.IntervalSeconds,
	}

	if c.ServiceOverrides != nil {
		if override, ok := c.ServiceOverrides[service]; ok {
			if override.FailureThreshold > 0 {
				settings.FailureThreshold = override.FailureThreshold
			}
			if override.SuccessThreshold > 0 {
				settings.SuccessThreshold = override.SuccessThreshold
			}
			if override.TimeoutSeconds > 0 {
				settings.TimeoutSeconds = override.TimeoutSeconds
			}
			if override.IntervalSeconds > 0 {
				settings.IntervalSeconds = override.IntervalSeconds
			}
		}
	}

	if settings.SuccessThreshold <= 0 {
		settings.SuccessThreshold = 1
	}
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 5
	}
	if settings.TimeoutSeconds <= 0 {
		settings.TimeoutSeconds = 30
	}
	if settings.IntervalSeconds <= 0 {
		settings.IntervalSeconds = 60
	}

	return settings
}

// Timeout returns the upstream HTTP timeout as a duration
func (c UpstreamConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ProfileTTL returns how long a cached merchant profile lives
func (c CacheConfig) ProfileTTL() time.Duration {
	return time.Duration(c.ProfileTTLSeconds) * time.Second
}

// ProfileStaleAfter returns the staleness window for cached merchant profiles
func (c CacheConfig) ProfileStaleAfter() time.Duration {
	return time.Duration(c.ProfileStaleSeconds) * time.Second
}

// ProductTTL returns how long cached catalog products live
func (c CacheConfig) ProductTTL() time.Duration {
	return time.Duration(c.ProductTTLSeconds) * time.Second
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
