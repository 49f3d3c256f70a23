package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"astroinsight/domain/config"
	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
)

func groupOf(transits ...entities.Transit) entities.TransitGroup {
	return entities.TransitGroup{
		StartDate: transits[0].ExactDate,
		EndDate:   transits[len(transits)-1].ExactDate.Add(24 * time.Hour),
		Transits:  transits,
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	classifier := NewWindowClassifier(config.DefaultDomainConfig())

	cases := []struct {
		name    string
		aspects []valueobjects.AspectType
		want    valueobjects.WindowType
	}{
		{"trine alone", []valueobjects.AspectType{valueobjects.AspectTrine}, valueobjects.WindowTypeOpportunity},
		{"sextile alone", []valueobjects.AspectType{valueobjects.AspectSextile}, valueobjects.WindowTypeOpportunity},
		{"trine beats square", []valueobjects.AspectType{valueobjects.AspectSquare, valueobjects.AspectTrine}, valueobjects.WindowTypeOpportunity},
		{"sextile beats opposition and conjunction", []valueobjects.AspectType{valueobjects.AspectOpposition, valueobjects.AspectConjunction, valueobjects.AspectSextile}, valueobjects.WindowTypeOpportunity},
		{"conjunction beats square", []valueobjects.AspectType{valueobjects.AspectSquare, valueobjects.AspectConjunction}, valueobjects.WindowTypeIntegration},
		{"square alone", []valueobjects.AspectType{valueobjects.AspectSquare}, valueobjects.WindowTypeChallenge},
		{"opposition alone", []valueobjects.AspectType{valueobjects.AspectOpposition}, valueobjects.WindowTypeChallenge},
		{"minor aspects default to integration", []valueobjects.AspectType{valueobjects.AspectQuincunx, valueobjects.AspectSemiSextile}, valueobjects.WindowTypeIntegration},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transits := make([]entities.Transit, 0, len(tc.aspects))
			for i, aspect := range tc.aspects {
				transits = append(transits, transitOn("Mars", aspect, 1, baseDate.Add(time.Duration(i)*24*time.Hour)))
			}

			got := classifier.Classify(groupOf(transits...))
			assert.Equal(t, tc.want, got.Type)
		})
	}
}

func TestClassifyRepresentativeAspectIsFirstTransit(t *testing.T) {
	classifier := NewWindowClassifier(config.DefaultDomainConfig())
	group := groupOf(
		transitOn("Mars", valueobjects.AspectSquare, 1, baseDate),
		transitOn("Venus", valueobjects.AspectTrine, 1, baseDate.Add(24*time.Hour)),
		transitOn("Jupiter", valueobjects.AspectTrine, 1, baseDate.Add(48*time.Hour)),
	)

	got := classifier.Classify(group)

	// Not the mode: two trines, but the first transit is a square.
	assert.Equal(t, valueobjects.AspectSquare, got.AspectType)
}

func TestClassifyTitleDedupesPlanetsInFirstAppearanceOrder(t *testing.T) {
	classifier := NewWindowClassifier(config.DefaultDomainConfig())
	group := groupOf(
		transitOn("Jupiter", valueobjects.AspectTrine, 1, baseDate),
		transitOn("Saturn", valueobjects.AspectTrine, 1, baseDate.Add(24*time.Hour)),
		transitOn("Jupiter", valueobjects.AspectTrine, 1, baseDate.Add(48*time.Hour)),
	)

	got := classifier.Classify(group)

	assert.Equal(t, "Jupiter-Saturn trine Period", got.Title)
	assert.Equal(t, []string{"Jupiter", "Saturn"}, got.InvolvedPlanets)
}

func TestClassifyKeywords(t *testing.T) {
	classifier := NewWindowClassifier(config.DefaultDomainConfig())
	a := transitOn("Jupiter", valueobjects.AspectTrine, 1, baseDate)
	a.Description = "Expansive Growth and new opportunity"
	b := transitOn("Saturn", valueobjects.AspectTrine, 1, baseDate.Add(24*time.Hour))
	b.Description = "" // falls back to the influence line
	b.Influence = "Discipline brings growth"

	got := classifier.Classify(groupOf(a, b))

	assert.Equal(t, []string{"expansive", "growth", "opportunity", "discipline", "brings"}, got.Keywords)
	assert.NotContains(t, got.Keywords, "and", "short tokens are dropped")
}
