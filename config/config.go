package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Anthropic configuration
	Anthropic AnthropicConfig

	// Upstream call limits
	Upstream UpstreamConfig

	// Result normalization
	Screener ScreenerConfig

	// HTTP configuration
	HTTP HTTPConfig

	// Environment name (development, production)
	Env string
}

// AnthropicConfig holds Anthropic Messages API configuration
type AnthropicConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	IPOMaxTokens   int
	StockMaxTokens int
}

// UpstreamConfig bounds outbound calls to the model
type UpstreamConfig struct {
	TimeoutSeconds int // execution budget for a single call (default: 60)
	RatePerMinute  int // max outbound calls per minute (default: 30)
}

// ScreenerConfig holds local validation and ordering configuration
type ScreenerConfig struct {
	StrictValidation   bool    // drop records that fail validation (default: false)
	MinMomentumScore   float64 // minimum momentum score kept in strict mode (default: 60)
	SnapshotTTLSeconds int     // reuse the last result for partial re-renders (default: 0, disabled)
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Anthropic: AnthropicConfig{
			APIKey:         os.Getenv("ANTHROPIC_API_KEY"),
			Model:          getEnvString("ANTHROPIC_MODEL", DefaultModel),
			BaseURL:        os.Getenv("ANTHROPIC_BASE_URL"),
			IPOMaxTokens:   getEnvInt("IPO_MAX_TOKENS", 4000),
			StockMaxTokens: getEnvInt("STOCK_MAX_TOKENS", 4096),
		},
		Upstream: UpstreamConfig{
			TimeoutSeconds: getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 60),
			RatePerMinute:  getEnvInt("UPSTREAM_RATE_PER_MINUTE", 30),
		},
		Screener: ScreenerConfig{
			StrictValidation:   getEnvBool("STRICT_VALIDATION", false),
			MinMomentumScore:   getEnvFloatRange("MIN_MOMENTUM_SCORE", 60, 0, 100),
			SnapshotTTLSeconds: getEnvNonNegativeInt("SNAPSHOT_TTL_SECONDS", 0),
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("PORT", "8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
		Env: getEnvString("APP_ENV", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultModel is the model used when ANTHROPIC_MODEL is not set
const DefaultModel = "claude-sonnet-4-20250514"

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Anthropic.Model == "" {
		return fmt.Errorf("ANTHROPIC_MODEL must not be empty")
	}
	if c.Anthropic.IPOMaxTokens <= 0 {
		return fmt.Errorf("IPO_MAX_TOKENS must be positive, got %d", c.Anthropic.IPOMaxTokens)
	}
	if c.Anthropic.StockMaxTokens <= 0 {
		return fmt.Errorf("STOCK_MAX_TOKENS must be positive, got %d", c.Anthropic.StockMaxTokens)
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT_SECONDS must be positive, got %d", c.Upstream.TimeoutSeconds)
	}
	if c.Upstream.RatePerMinute <= 0 {
		return fmt.Errorf("UPSTREAM_RATE_PER_MINUTE must be positive, got %d", c.Upstream.RatePerMinute)
	}
	if c.Screener.MinMomentumScore < 0 || c.Screener.MinMomentumScore > 100 {
		return fmt.Errorf("MIN_MOMENTUM_SCORE must be between 0 and 100, got %.2f", c.Screener.MinMomentumScore)
	}
	if c.HTTP.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}

	return nil
}

// HasAnthropic returns true if an Anthropic credential is available
func (c *Config) HasAnthropic() bool {
	return c.Anthropic.APIKey != ""
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UpstreamTimeout returns the execution budget for one upstream call
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

// SnapshotTTL returns how long a fetched result may be reused for re-rendering
func (c *Config) SnapshotTTL() time.Duration {
	return time.Duration(c.Screener.SnapshotTTLSeconds) * time.Second
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvNonNegativeInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatRange(key string, defaultValue, minVal, maxVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed >= minVal && parsed <= maxVal {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			APIKey:         "",
			Model:          DefaultModel,
			BaseURL:        "",
			IPOMaxTokens:   4000,
			StockMaxTokens: 4096,
		},
		Upstream: UpstreamConfig{
			TimeoutSeconds: 60,
			RatePerMinute:  30,
		},
		Screener: ScreenerConfig{
			StrictValidation:   false,
			MinMomentumScore:   60,
			SnapshotTTLSeconds: 0,
		},
		HTTP: HTTPConfig{
			Port:               "8080",
			CORSAllowedOrigins: "*",
		},
		Env: "development",
	}
}
