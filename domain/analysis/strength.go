package analysis

import (
	"math"

	"astroinsight/domain/config"
	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
)

// aspectBaseScores is the fixed intensity table per aspect type.
// Aspect types outside the table score the neutral default.
var aspectBaseScores = map[valueobjects.AspectType]float64{
	valueobjects.AspectConjunction:  1.0,
	valueobjects.AspectTrine:        0.9,
	valueobjects.AspectSextile:      0.8,
	valueobjects.AspectOpposition:   0.7,
	valueobjects.AspectSquare:       0.6,
	valueobjects.AspectSemiSquare:   0.5,
	valueobjects.AspectSesquisquare: 0.4,
	valueobjects.AspectQuincunx:     0.3,
	valueobjects.AspectSemiSextile:  0.2,
}

const defaultBaseScore = 0.5

// StrengthScorer computes a confidence/intensity score per group.
// The score depends only on member aspect types and orbs; which planets
// are involved never changes it.
type StrengthScorer struct {
	cfg *config.DomainConfig
}

// NewStrengthScorer creates a scorer using the configured orb tiers
func NewStrengthScorer(cfg *config.DomainConfig) *StrengthScorer {
	return &StrengthScorer{cfg: cfg}
}

// Score averages per-transit contributions (aspect base score times orb
// decay) over the group, clamped to [0,1]. Grouping guarantees non-empty
// groups; an empty one still returns 0 rather than dividing by zero.
func (s *StrengthScorer) Score(group entities.TransitGroup) float64 {
	if len(group.Transits) == 0 {
		return 0
	}

	var sum float64
	for _, t := range group.Transits {
		sum += s.baseScore(t.AspectType) * s.orbDecay(t.Orb)
	}

	return clamp01(sum / float64(len(group.Transits)))
}

func (s *StrengthScorer) baseScore(aspect valueobjects.AspectType) float64 {
	if score, ok := aspectBaseScores[aspect]; ok {
		return score
	}
	return defaultBaseScore
}

// orbDecay discounts a transit by how far it sits from exactness
func (s *StrengthScorer) orbDecay(orb float64) float64 {
	abs := math.Abs(orb)
	switch {
	case abs <= s.cfg.ExactOrb:
		return s.cfg.ExactOrbScore
	case abs <= s.cfg.TightOrb:
		return s.cfg.TightOrbScore
	case abs <= s.cfg.ModerateOrb:
		return s.cfg.ModerateOrbScore
	default:
		return s.cfg.WideOrbScore
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
