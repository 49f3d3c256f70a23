package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, "static", cfg.GeneratorBackend)
	assert.Equal(t, "astroinsight-events", cfg.EventBusName)
	assert.Equal(t, 10000, cfg.RequestTimeoutMs)
	assert.False(t, cfg.EnableSingleFlight)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ENABLE_SINGLE_FLIGHT", "true")
	t.Setenv("TABLE_NAME", "insights-prod")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.EnableSingleFlight)
	assert.Equal(t, "insights-prod", cfg.DynamoDBTable)
}

func TestValidateRejectsBadBackends(t *testing.T) {
	cfg := &Config{CacheBackend: "memcached", GeneratorBackend: "static"}
	assert.Error(t, cfg.Validate())

	cfg = &Config{CacheBackend: "memory", GeneratorBackend: "grpc"}
	assert.Error(t, cfg.Validate())
}

func TestValidateProductionRequirements(t *testing.T) {
	cfg := &Config{
		Environment:      "production",
		DynamoDBTable:    "insights",
		EventBusName:     "insight-events",
		CacheBackend:     "memory",
		GeneratorBackend: "http",
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GENERATOR_URL")

	cfg.GeneratorURL = "https://generator.internal"
	assert.NoError(t, cfg.Validate())

	cfg.EventBusName = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadDomainConfigWithoutOverlay(t *testing.T) {
	cfg := &Config{Environment: "production", EnableSingleFlight: true}

	dc, err := LoadDomainConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, dc.GeneratorTimeout)
	assert.Equal(t, 30, dc.GenerationsPerHour)
	assert.True(t, dc.EnableSingleFlight)
}

func TestLoadDomainConfigAppliesOverlay(t *testing.T) {
	overlay := `
grouping_window_days: 10
orbs:
  tight: 2.5
orb_scores:
  wide: 0.3
cache:
  daily_ttl_seconds: 43200
generation:
  attempts: 3
  generations_per_hour: 120
enable_single_flight: true
`
	path := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0o600))

	cfg := &Config{Environment: "test", DomainConfigPath: path}
	dc, err := LoadDomainConfig(cfg)
	require.NoError(t, err)

	// Overridden fields.
	assert.Equal(t, 10, dc.GroupingWindowDays)
	assert.Equal(t, 2.5, dc.TightOrb)
	assert.Equal(t, 0.3, dc.WideOrbScore)
	assert.Equal(t, 12*time.Hour, dc.DailyInsightTTL)
	assert.Equal(t, 3, dc.GeneratorAttempts)
	assert.Equal(t, 120, dc.GenerationsPerHour)
	assert.True(t, dc.EnableSingleFlight)

	// Untouched fields keep their defaults.
	assert.Equal(t, 1.0, dc.ExactOrb)
	assert.Equal(t, 1*time.Hour, dc.StableInsightTTL)
	assert.Equal(t, 3, dc.MinKeywordLength)
}

func TestLoadDomainConfigBadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("orbs: [not, a, map]"), 0o600))

	cfg := &Config{Environment: "test", DomainConfigPath: path}
	_, err := LoadDomainConfig(cfg)
	assert.Error(t, err)

	cfg.DomainConfigPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = LoadDomainConfig(cfg)
	assert.Error(t, err)
}
