package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	IndexName     string // GSI1 - user-level queries
	GSI2IndexName string // GSI2 - direct insight ID lookups
	EventBusName  string

	// Cache configuration
	CacheBackend  string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// External services
	EphemerisURL       string
	GeneratorURL       string
	GeneratorAPIKey    string
	GeneratorModel     string
	GeneratorBackend   string // "http" or "static"
	RequestTimeoutMs   int
	GeneratorTimeoutMs int

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics      bool
	EnableTracing      bool
	EnableSingleFlight bool

	// Path to the optional YAML overlay for domain tunables
	DomainConfigPath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "astroinsight")),
		IndexName:     getEnv("INDEX_NAME", "UserIndex"),
		GSI2IndexName: getEnv("GSI2_INDEX_NAME", "InsightIndex"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "astroinsight-events"),

		CacheBackend:  getEnv("CACHE_BACKEND", "memory"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		EphemerisURL:       getEnv("EPHEMERIS_URL", "http://localhost:8100"),
		GeneratorURL:       getEnv("GENERATOR_URL", ""),
		GeneratorAPIKey:    getEnv("GENERATOR_API_KEY", ""),
		GeneratorModel:     getEnv("GENERATOR_MODEL", "default"),
		GeneratorBackend:   getEnv("GENERATOR_BACKEND", "static"),
		RequestTimeoutMs:   getEnvInt("REQUEST_TIMEOUT_MS", 10000),
		GeneratorTimeoutMs: getEnvInt("GENERATOR_TIMEOUT_MS", 30000),

		LogLevel:           getEnv("LOG_LEVEL", "info"),
		EnableMetrics:      getEnvBool("ENABLE_METRICS", false),
		EnableTracing:      getEnvBool("ENABLE_TRACING", false),
		EnableSingleFlight: getEnvBool("ENABLE_SINGLE_FLIGHT", false),

		DomainConfigPath: getEnv("DOMAIN_CONFIG_PATH", ""),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig for backwards compatibility
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
		if c.GeneratorBackend == "http" && c.GeneratorURL == "" {
			return fmt.Errorf("GENERATOR_URL is required when GENERATOR_BACKEND is http")
		}
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend)
	}
	if c.GeneratorBackend != "http" && c.GeneratorBackend != "static" {
		return fmt.Errorf("GENERATOR_BACKEND must be http or static, got %q", c.GeneratorBackend)
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
