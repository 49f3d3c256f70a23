package config

import "time"

// DomainConfig holds all configurable business rules of the analysis engine
type DomainConfig struct {
	// Transit grouping
	GroupingWindowDays int

	// Keyword extraction
	MinKeywordLength int

	// Strength scoring orb tiers (degrees)
	ExactOrb    float64
	TightOrb    float64
	ModerateOrb float64

	// Orb decay factors matching the tiers above, plus the wide fallback
	ExactOrbScore    float64
	TightOrbScore    float64
	ModerateOrbScore float64
	WideOrbScore     float64

	// Cache TTLs
	DailyInsightTTL  time.Duration
	StableInsightTTL time.Duration

	// Generation
	GeneratorTimeout   time.Duration
	GeneratorAttempts  int
	MaxPromptLength    int
	GenerationsPerHour int

	// Feature flags
	EnableSingleFlight bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		GroupingWindowDays: 7,

		MinKeywordLength: 3,

		ExactOrb:    1.0,
		TightOrb:    3.0,
		ModerateOrb: 5.0,

		ExactOrbScore:    1.0,
		TightOrbScore:    0.8,
		ModerateOrbScore: 0.6,
		WideOrbScore:     0.4,

		DailyInsightTTL:  24 * time.Hour,
		StableInsightTTL: 1 * time.Hour,

		GeneratorTimeout:   30 * time.Second,
		GeneratorAttempts:  2, // one call plus one retry
		MaxPromptLength:    12000,
		GenerationsPerHour: 60,

		EnableSingleFlight: false,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.GeneratorTimeout = 20 * time.Second
	config.GenerationsPerHour = 30

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.GeneratorTimeout = 2 * time.Minute
	config.GenerationsPerHour = 600
	config.EnableSingleFlight = false

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}
