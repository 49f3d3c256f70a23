package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
	pkgerrors "astroinsight/pkg/errors"
)

func promptChart() *entities.BirthChart {
	return &entities.BirthChart{
		ID:     "chart-123",
		UserID: "user-1",
		Bodies: []entities.CelestialBody{
			{Name: "Sun", Sign: "Leo", House: 10},
			{Name: "Mercury", Sign: "Virgo", House: 11, Retro: true},
			{Name: "North Node", Sign: "Taurus", House: 2},
			{Name: "South Node", Sign: "Scorpio", House: 8},
		},
		Houses: []entities.House{
			{Number: 1, Sign: "Scorpio", Cusp: 212.4},
			{Number: 10, Sign: "Leo", Cusp: 122.0},
		},
		Aspects: []entities.Aspect{
			{Body1: "Sun", Body2: "Moon", Type: valueobjects.AspectTrine, Orb: 2.1},
		},
	}
}

func TestBuildDailyPrompt(t *testing.T) {
	builder := NewPromptBuilder(0)

	prompt, err := builder.Build(GenerationRequest{
		UserID:        "user-1",
		InsightType:   valueobjects.InsightTypeDaily,
		Chart:         promptChart(),
		ReferenceDate: time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
		Transits: []entities.Transit{
			{Planet: "Jupiter", AspectType: valueobjects.AspectTrine, AspectingNatal: "Sun", Orb: 0.5,
				ExactDate: time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "March 15, 2025")
	assert.Contains(t, prompt, "Sun: Leo, house 10")
	assert.Contains(t, prompt, "Mercury: Virgo, house 11, retrograde")
	assert.Contains(t, prompt, "Jupiter trine Sun (orb 0.5, exact 2025-03-16)")
}

func TestBuildTransitPromptRequiresTransit(t *testing.T) {
	builder := NewPromptBuilder(0)

	_, err := builder.Build(GenerationRequest{
		UserID:      "user-1",
		InsightType: valueobjects.InsightTypeTransit,
		Chart:       promptChart(),
	})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestBuildThemePrompts(t *testing.T) {
	builder := NewPromptBuilder(0)
	theme := &entities.LifeTheme{
		Key:      "career",
		LifeArea: "career",
		Title:    "Leadership Through Service",
	}

	stable, err := builder.Build(GenerationRequest{
		UserID:      "user-1",
		InsightType: valueobjects.InsightTypeLifeTheme,
		Chart:       promptChart(),
		Theme:       theme,
	})
	require.NoError(t, err)
	assert.Contains(t, stable, `"Leadership Through Service"`)
	assert.NotContains(t, stable, "Forecast")

	forecast, err := builder.Build(GenerationRequest{
		UserID:        "user-1",
		InsightType:   valueobjects.InsightTypeThemeForecast,
		Chart:         promptChart(),
		Theme:         theme,
		ReferenceDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, forecast, "Forecast how this theme develops from 2025-03-15")

	_, err = builder.Build(GenerationRequest{
		UserID:      "user-1",
		InsightType: valueobjects.InsightTypeLifeTheme,
		Chart:       promptChart(),
	})
	assert.True(t, pkgerrors.IsValidation(err), "theme kinds need a theme")
}

func TestBuildNodePathPrompt(t *testing.T) {
	builder := NewPromptBuilder(0)

	prompt, err := builder.Build(GenerationRequest{
		UserID:      "user-1",
		InsightType: valueobjects.InsightTypeNodePath,
		Chart:       promptChart(),
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "North Node: Taurus, house 2")
	assert.Contains(t, prompt, "South Node: Scorpio, house 8")
}

func TestBuildHousePrompts(t *testing.T) {
	builder := NewPromptBuilder(0)

	themes, err := builder.Build(GenerationRequest{
		UserID:      "user-1",
		InsightType: valueobjects.InsightTypeHouseThemes,
		Chart:       promptChart(),
	})
	require.NoError(t, err)
	assert.Contains(t, themes, "House 1: Scorpio (cusp 212.4)")

	lords, err := builder.Build(GenerationRequest{
		UserID:      "user-1",
		InsightType: valueobjects.InsightTypeHouseLords,
		Chart:       promptChart(),
	})
	require.NoError(t, err)
	assert.Contains(t, lords, "house ruler")
}

func TestBuildIsDeterministic(t *testing.T) {
	builder := NewPromptBuilder(0)
	req := GenerationRequest{
		UserID:      "user-1",
		InsightType: valueobjects.InsightTypeBirthChart,
		Chart:       promptChart(),
	}

	first, err := builder.Build(req)
	require.NoError(t, err)
	second, err := builder.Build(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildTruncatesToMaxLength(t *testing.T) {
	builder := NewPromptBuilder(40)

	prompt, err := builder.Build(GenerationRequest{
		UserID:      "user-1",
		InsightType: valueobjects.InsightTypeBirthChart,
		Chart:       promptChart(),
	})
	require.NoError(t, err)

	assert.Equal(t, 40, len([]rune(prompt)))
	assert.True(t, strings.HasPrefix(prompt, "Write a natal chart reading."))
}
