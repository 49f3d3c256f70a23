package analysis

import (
	"fmt"
	"strings"

	"astroinsight/domain/config"
	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
	"astroinsight/pkg/text"
)

// Classification is the semantic layer a classifier derives for one group
type Classification struct {
	Type            valueobjects.WindowType
	Title           string
	Description     string
	AspectType      valueobjects.AspectType
	InvolvedPlanets []string
	Keywords        []string
}

// WindowClassifier derives type, title, description, and keywords per group
type WindowClassifier struct {
	minKeywordLength int
}

// NewWindowClassifier creates a classifier
func NewWindowClassifier(cfg *config.DomainConfig) *WindowClassifier {
	return &WindowClassifier{
		minKeywordLength: cfg.MinKeywordLength,
	}
}

// Classify inspects the aspects present in a group and applies a fixed
// priority order: any trine or sextile makes the window an Opportunity,
// else a conjunction makes it Integration, else a square or opposition
// makes it a Challenge; anything left defaults to Integration. Only the
// first matching rule applies, so a trine co-occurring with a square still
// yields Opportunity.
func (c *WindowClassifier) Classify(group entities.TransitGroup) Classification {
	windowType := classifyType(group.Transits)
	planets := uniquePlanets(group.Transits)

	// The representative aspect is the first transit's by sorted date,
	// not a statistical mode.
	representative := group.Transits[0].AspectType

	return Classification{
		Type:            windowType,
		Title:           fmt.Sprintf("%s %s Period", strings.Join(planets, "-"), representative),
		Description:     describe(windowType, planets),
		AspectType:      representative,
		InvolvedPlanets: planets,
		Keywords:        c.extractKeywords(group.Transits),
	}
}

func classifyType(transits []entities.Transit) valueobjects.WindowType {
	var hasConjunction, hasChallenging bool
	for _, t := range transits {
		if t.AspectType.IsHarmonious() {
			return valueobjects.WindowTypeOpportunity
		}
		if t.AspectType == valueobjects.AspectConjunction {
			hasConjunction = true
		}
		if t.AspectType.IsChallenging() {
			hasChallenging = true
		}
	}

	if hasConjunction {
		return valueobjects.WindowTypeIntegration
	}
	if hasChallenging {
		return valueobjects.WindowTypeChallenge
	}
	return valueobjects.WindowTypeIntegration
}

// uniquePlanets dedupes planet names preserving first-appearance order
func uniquePlanets(transits []entities.Transit) []string {
	seen := make(map[string]struct{}, len(transits))
	planets := make([]string, 0, len(transits))
	for _, t := range transits {
		if _, dup := seen[t.Planet]; dup {
			continue
		}
		seen[t.Planet] = struct{}{}
		planets = append(planets, t.Planet)
	}
	return planets
}

func describe(windowType valueobjects.WindowType, planets []string) string {
	list := strings.Join(planets, ", ")
	switch windowType {
	case valueobjects.WindowTypeOpportunity:
		return fmt.Sprintf("A period of flowing energy involving %s, favorable for growth and new initiatives.", list)
	case valueobjects.WindowTypeChallenge:
		return fmt.Sprintf("A period of friction involving %s, calling for patience and deliberate effort.", list)
	default:
		return fmt.Sprintf("A period of consolidation involving %s, suited to integrating recent developments.", list)
	}
}

// extractKeywords tokenizes each transit's description (falling back to its
// influence line), keeping unique lowercase tokens longer than the minimum.
func (c *WindowClassifier) extractKeywords(transits []entities.Transit) []string {
	seen := make(map[string]struct{})
	keywords := make([]string, 0)
	for _, t := range transits {
		for _, token := range text.Tokenize(t.Text(), c.minKeywordLength) {
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			keywords = append(keywords, token)
		}
	}
	return keywords
}
