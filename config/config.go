package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Generation GenerationConfig `mapstructure:"generation"`
	Articles   ArticlesConfig   `mapstructure:"articles"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GenerationConfig holds OpenRouter and model chain configuration
type GenerationConfig struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	Referer             string        `mapstructure:"referer"`
	Title               string        `mapstructure:"title"`
	Models              []string      `mapstructure:"models"`
	Timeout             time.Duration `mapstructure:"timeout"`
	AttemptTimeout      time.Duration `mapstructure:"attempt_timeout"`
	RequestsPerSecond   float64       `mapstructure:"requests_per_second"`
	Burst               int           `mapstructure:"burst"`
	MaxTokens           int           `mapstructure:"max_tokens"`
	Temperature         float64       `mapstructure:"temperature"`
	TopP                float64       `mapstructure:"top_p"`
	BreakerMinRequests  uint32        `mapstructure:"breaker_min_requests"`
	BreakerFailureRatio float64       `mapstructure:"breaker_failure_ratio"`
	BreakerOpenTimeout  time.Duration `mapstructure:"breaker_open_timeout"`
}

// ArticlesConfig selects the knowledge article source
type ArticlesConfig struct {
	Source   string        `mapstructure:"source"` // "static" or "postgres"
	DSN      string        `mapstructure:"dsn"`
	Limit    int           `mapstructure:"limit"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string `mapstructure:"type"` // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url"`
	Prefix   string `mapstructure:"prefix"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// MatchingConfig tunes classification thresholds and product caps
type MatchingConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	CropTierLimit       int     `mapstructure:"crop_tier_limit"`
	ResultLimit         int     `mapstructure:"result_limit"`
	MaxResponseProducts int     `mapstructure:"max_response_products"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return load("")
}

// LoadFile loads configuration from an explicit file plus environment variables
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/agrihope/")
	}

	// AGRIHOPE_GENERATION_API_KEY -> generation.api_key
	v.SetEnvPrefix("AGRIHOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so Unmarshal sees env overrides
	setDefaults(v)

	// Config file is optional unless given explicitly
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Generation defaults
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("generation.referer", "http://localhost:3000")
	v.SetDefault("generation.title", "Agrihope AI Assistant")
	v.SetDefault("generation.models", []string{
		"meta-llama/llama-3.1-8b-instruct",
		"microsoft/phi-3-mini-128k-instruct",
		"google/gemma-2-9b-it",
		"meta-llama/llama-3-8b-instruct",
	})
	v.SetDefault("generation.timeout", "30s")
	v.SetDefault("generation.attempt_timeout", "20s")
	v.SetDefault("generation.requests_per_second", 2.0)
	v.SetDefault("generation.burst", 5)
	v.SetDefault("generation.max_tokens", 500)
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.top_p", 1.0)
	v.SetDefault("generation.breaker_min_requests", 5)
	v.SetDefault("generation.breaker_failure_ratio", 0.6)
	v.SetDefault("generation.breaker_open_timeout", "30s")

	// Article defaults
	v.SetDefault("articles.source", "static")
	v.SetDefault("articles.dsn", "")
	v.SetDefault("articles.limit", 50)
	v.SetDefault("articles.cache_ttl", "5m")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.prefix", "agrihope:")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.burst", 10)

	// Matching defaults
	v.SetDefault("matching.confidence_threshold", 0.6)
	v.SetDefault("matching.crop_tier_limit", 3)
	v.SetDefault("matching.result_limit", 3)
	v.SetDefault("matching.max_response_products", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if len(config.Generation.Models) == 0 {
		return fmt.Errorf("at least one generation model is required")
	}

	if config.Articles.Source != "static" && config.Articles.Source != "postgres" {
		return fmt.Errorf("articles source must be 'static' or 'postgres', got: %s", config.Articles.Source)
	}

	if config.Articles.Source == "postgres" && config.Articles.DSN == "" {
		return fmt.Errorf("articles DSN is required when source is 'postgres' (set AGRIHOPE_ARTICLES_DSN)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("per-IP rate limit must be positive, got: %d", config.RateLimit.PerIP)
	}

	if t := config.Generation.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("generation temperature must be within [0,2], got: %v", t)
	}

	m := config.Matching
	if m.ConfidenceThreshold < 0 || m.ConfidenceThreshold > 1 {
		return fmt.Errorf("matching confidence threshold must be within [0,1], got: %v", m.ConfidenceThreshold)
	}
	if m.ResultLimit < 1 || m.ResultLimit > 10 {
		return fmt.Errorf("matching result limit must be within 1..10, got: %d", m.ResultLimit)
	}
	if m.CropTierLimit < 1 {
		return fmt.Errorf("matching crop tier limit must be positive, got: %d", m.CropTierLimit)
	}
	if m.MaxResponseProducts < 1 || m.MaxResponseProducts > 10 {
		return fmt.Errorf("max response products must be within 1..10, got: %d", m.MaxResponseProducts)
	}

	return nil
}

// GenerationEnabled reports whether an OpenRouter key is configured
func (c *Config) GenerationEnabled() bool {
	return strings.TrimSpace(c.Generation.APIKey) != ""
}
