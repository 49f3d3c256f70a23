package config

import (
	"fmt"
	"os"
	"time"

	domaincfg "astroinsight/domain/config"

	"gopkg.in/yaml.v3"
)

// domainOverlay mirrors the tunable subset of the domain configuration.
// Pointer fields distinguish "unset" from zero so a partial file only
// overrides what it names.
type domainOverlay struct {
	GroupingWindowDays *int `yaml:"grouping_window_days"`
	MinKeywordLength   *int `yaml:"min_keyword_length"`

	Orbs *struct {
		Exact    *float64 `yaml:"exact"`
		Tight    *float64 `yaml:"tight"`
		Moderate *float64 `yaml:"moderate"`
	} `yaml:"orbs"`

	OrbScores *struct {
		Exact    *float64 `yaml:"exact"`
		Tight    *float64 `yaml:"tight"`
		Moderate *float64 `yaml:"moderate"`
		Wide     *float64 `yaml:"wide"`
	} `yaml:"orb_scores"`

	Cache *struct {
		DailyTTLSeconds  *int `yaml:"daily_ttl_seconds"`
		StableTTLSeconds *int `yaml:"stable_ttl_seconds"`
	} `yaml:"cache"`

	Generation *struct {
		TimeoutSeconds     *int `yaml:"timeout_seconds"`
		Attempts           *int `yaml:"attempts"`
		MaxPromptLength    *int `yaml:"max_prompt_length"`
		GenerationsPerHour *int `yaml:"generations_per_hour"`
	} `yaml:"generation"`

	EnableSingleFlight *bool `yaml:"enable_single_flight"`
}

// LoadDomainConfig builds the domain configuration for the environment and
// applies the optional YAML overlay file on top.
func LoadDomainConfig(cfg *Config) (*domaincfg.DomainConfig, error) {
	dc := domaincfg.LoadDomainConfig(cfg.Environment)
	dc.EnableSingleFlight = cfg.EnableSingleFlight

	if cfg.DomainConfigPath == "" {
		return dc, nil
	}

	data, err := os.ReadFile(cfg.DomainConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read domain config overlay: %w", err)
	}

	var overlay domainOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse domain config overlay: %w", err)
	}

	applyOverlay(dc, &overlay)
	return dc, nil
}

func applyOverlay(dc *domaincfg.DomainConfig, o *domainOverlay) {
	if o.GroupingWindowDays != nil {
		dc.GroupingWindowDays = *o.GroupingWindowDays
	}
	if o.MinKeywordLength != nil {
		dc.MinKeywordLength = *o.MinKeywordLength
	}
	if o.Orbs != nil {
		if o.Orbs.Exact != nil {
			dc.ExactOrb = *o.Orbs.Exact
		}
		if o.Orbs.Tight != nil {
			dc.TightOrb = *o.Orbs.Tight
		}
		if o.Orbs.Moderate != nil {
			dc.ModerateOrb = *o.Orbs.Moderate
		}
	}
	if o.OrbScores != nil {
		if o.OrbScores.Exact != nil {
			dc.ExactOrbScore = *o.OrbScores.Exact
		}
		if o.OrbScores.Tight != nil {
			dc.TightOrbScore = *o.OrbScores.Tight
		}
		if o.OrbScores.Moderate != nil {
			dc.ModerateOrbScore = *o.OrbScores.Moderate
		}
		if o.OrbScores.Wide != nil {
			dc.WideOrbScore = *o.OrbScores.Wide
		}
	}
	if o.Cache != nil {
		if o.Cache.DailyTTLSeconds != nil {
			dc.DailyInsightTTL = time.Duration(*o.Cache.DailyTTLSeconds) * time.Second
		}
		if o.Cache.StableTTLSeconds != nil {
			dc.StableInsightTTL = time.Duration(*o.Cache.StableTTLSeconds) * time.Second
		}
	}
	if o.Generation != nil {
		if o.Generation.TimeoutSeconds != nil {
			dc.GeneratorTimeout = time.Duration(*o.Generation.TimeoutSeconds) * time.Second
		}
		if o.Generation.Attempts != nil {
			dc.GeneratorAttempts = *o.Generation.Attempts
		}
		if o.Generation.MaxPromptLength != nil {
			dc.MaxPromptLength = *o.Generation.MaxPromptLength
		}
		if o.Generation.GenerationsPerHour != nil {
			dc.GenerationsPerHour = *o.Generation.GenerationsPerHour
		}
	}
	if o.EnableSingleFlight != nil {
		dc.EnableSingleFlight = *o.EnableSingleFlight
	}
}
