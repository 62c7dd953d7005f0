// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront gateway
type Config struct {
	App        AppConfig
	Server     ServerConfig
	Redis      RedisConfig
	Session    SessionConfig
	Platform   PlatformConfig
	Storefront StorefrontConfig
	Payments   PaymentsConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	KeyPrefix    string
}

// SessionConfig contains the gateway session cookie configuration
type SessionConfig struct {
	Secret     string
	CookieName string
	Expiry     time.Duration
	Secure     bool
	Domain     string
}

// PlatformConfig describes the upstream commerce platform
type PlatformConfig struct {
	BaseURL            string
	CSRFCookieName     string
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// StorefrontConfig holds cart and checkout presentation settings
type StorefrontConfig struct {
	EmptyCartURL     string
	LoginURL         string
	RegisterURL      string
	OrdersURL        string
	CheckoutLabel    string
	ShippingQuoteTTL time.Duration
	CartModelTTL     time.Duration
	InflightTTL      time.Duration
	CheckoutLockTTL  time.Duration
	PaymentMethod    string
}

// PaymentsConfig contains the PIX presentation settings
type PaymentsConfig struct {
	AllowSimulatedApproval bool
	ApprovalRedirectDelay  time.Duration
	ModalTTL               time.Duration
	WebhookApprovedStatus  string
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	environment := getEnv("APP_ENV", "development")

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "O Especialista Carros Storefront"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: environment,
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			MaxBodyBytes:   getEnvAsInt64("SERVER_MAX_BODY_BYTES", 1<<20), // 1MB
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			KeyPrefix:    getEnv("REDIS_KEY_PREFIX", "storefront"),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", "change-this-session-secret-in-production-please"),
			CookieName: getEnv("SESSION_COOKIE_NAME", "sf_session"),
			Expiry:     getEnvAsDuration("SESSION_EXPIRE", 30*24*time.Hour),
			Secure:     getEnvAsBool("SESSION_COOKIE_SECURE", environment == "production"),
			Domain:     getEnv("SESSION_COOKIE_DOMAIN", ""),
		},
		Platform: PlatformConfig{
			BaseURL:            strings.TrimRight(getEnv("PLATFORM_BASE_URL", "http://localhost:8000"), "/"),
			CSRFCookieName:     getEnv("CSRF_COOKIE_NAME", "csrftoken"),
			Timeout:            getEnvAsDuration("PLATFORM_TIMEOUT", 15*time.Second),
			BreakerMaxFailures: uint32(getEnvAsInt("PLATFORM_BREAKER_MAX_FAILURES", 5)),
			BreakerOpenTimeout: getEnvAsDuration("PLATFORM_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
		Storefront: StorefrontConfig{
			EmptyCartURL:     getEnv("EMPTY_CART_URL", "/home/#products"),
			LoginURL:         getEnv("LOGIN_URL", "/login/"),
			RegisterURL:      getEnv("REGISTER_URL", "/criar-conta/"),
			OrdersURL:        getEnv("ORDERS_URL", "/meus-pedidos/"),
			CheckoutLabel:    getEnv("CHECKOUT_LABEL", "Finalizar Compra"),
			ShippingQuoteTTL: getEnvAsDuration("SHIPPING_QUOTE_TTL", 24*time.Hour),
			CartModelTTL:     getEnvAsDuration("CART_MODEL_TTL", 24*time.Hour),
			InflightTTL:      getEnvAsDuration("INFLIGHT_TTL", 20*time.Second),
			CheckoutLockTTL:  getEnvAsDuration("CHECKOUT_LOCK_TTL", 30*time.Second),
			PaymentMethod:    getEnv("CHECKOUT_PAYMENT_METHOD", "pix"),
		},
		Payments: PaymentsConfig{
			AllowSimulatedApproval: getEnvAsBool("PAYMENTS_ALLOW_SIMULATED_APPROVAL", environment != "production"),
			ApprovalRedirectDelay:  getEnvAsDuration("APPROVAL_REDIRECT_DELAY", 2*time.Second),
			ModalTTL:               getEnvAsDuration("PAYMENT_MODAL_TTL", 30*time.Minute),
			WebhookApprovedStatus:  getEnv("PAYMENT_WEBHOOK_APPROVED_STATUS", "approved"),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-Requested-With", "X-Request-ID"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters long")
	}

	if c.Platform.BaseURL == "" {
		return fmt.Errorf("PLATFORM_BASE_URL is required")
	}
	if c.Platform.CSRFCookieName == "" {
		return fmt.Errorf("CSRF_COOKIE_NAME is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	// Locks must outlast the work they guard
	if c.Storefront.InflightTTL <= c.Platform.Timeout {
		return fmt.Errorf("INFLIGHT_TTL (%s) must be longer than PLATFORM_TIMEOUT (%s)", c.Storefront.InflightTTL, c.Platform.Timeout)
	}
	if c.Storefront.CheckoutLockTTL < c.Server.RequestTimeout {
		return fmt.Errorf("CHECKOUT_LOCK_TTL (%s) must be at least SERVER_REQUEST_TIMEOUT (%s)", c.Storefront.CheckoutLockTTL, c.Server.RequestTimeout)
	}

	// Simulated approvals are a development stand-in for the real webhook
	if c.IsProduction() && c.Payments.AllowSimulatedApproval {
		return fmt.Errorf("PAYMENTS_ALLOW_SIMULATED_APPROVAL cannot be enabled in production")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// RedisKey joins parts under the configured key prefix
func (c *Config) RedisKey(parts ...string) string {
	if c.Redis.KeyPrefix == "" {
		return strings.Join(parts, ":")
	}
	return c.Redis.KeyPrefix + ":" + strings.Join(parts, ":")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
