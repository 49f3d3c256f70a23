package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astroinsight/domain/config"
	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
)

func TestBuilderEndToEnd(t *testing.T) {
	builder := NewWindowBuilder(config.DefaultDomainConfig())

	transits := []entities.Transit{
		transitOn("Jupiter", valueobjects.AspectTrine, 0.5, baseDate),
		transitOn("Saturn", valueobjects.AspectTrine, 2, baseDate.Add(2*24*time.Hour)),
		transitOn("Mars", valueobjects.AspectSquare, 1, baseDate.Add(20*24*time.Hour)),
	}

	windows, err := builder.Build(transits, nil)
	require.NoError(t, err)
	require.Len(t, windows, 2)

	first := windows[0]
	assert.Equal(t, valueobjects.WindowTypeOpportunity, first.Type)
	assert.Equal(t, baseDate, first.StartDate)
	assert.Equal(t, baseDate.Add(3*24*time.Hour), first.EndDate)
	assert.Equal(t, []string{"Jupiter", "Saturn"}, first.InvolvedPlanets)
	assert.InDelta(t, 0.81, first.Strength, 1e-9)
	assert.Len(t, first.Transits, 2)

	second := windows[1]
	assert.Equal(t, valueobjects.WindowTypeChallenge, second.Type)
	assert.Equal(t, []string{"Mars"}, second.InvolvedPlanets)
	assert.Len(t, second.Transits, 1)
}

func TestBuilderAnnotatesWithReferenceDate(t *testing.T) {
	builder := NewWindowBuilder(config.DefaultDomainConfig())

	transits := []entities.Transit{
		transitOn("Venus", valueobjects.AspectSextile, 1, baseDate),
		transitOn("Mercury", valueobjects.AspectSextile, 1, baseDate.Add(4*24*time.Hour)),
	}

	inside := baseDate.Add(2 * 24 * time.Hour)
	windows, err := builder.Build(transits, &inside)
	require.NoError(t, err)
	require.Len(t, windows, 1)

	assert.True(t, windows[0].IsActive)
	assert.Equal(t, 0, windows[0].DaysUntilStart)
	assert.Equal(t, 3, windows[0].DaysRemaining)
}

func TestBuilderSkipsAnnotationWithoutReference(t *testing.T) {
	builder := NewWindowBuilder(config.DefaultDomainConfig())

	windows, err := builder.Build([]entities.Transit{
		transitOn("Sun", valueobjects.AspectConjunction, 0, baseDate),
	}, nil)
	require.NoError(t, err)
	require.Len(t, windows, 1)

	assert.False(t, windows[0].IsActive)
	assert.Zero(t, windows[0].DaysUntilStart)
	assert.Zero(t, windows[0].DaysRemaining)
}

func TestBuilderEmptyInput(t *testing.T) {
	builder := NewWindowBuilder(config.DefaultDomainConfig())

	windows, err := builder.Build(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, windows)
}
