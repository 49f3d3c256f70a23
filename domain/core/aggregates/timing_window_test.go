package aggregates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
	pkgerrors "astroinsight/pkg/errors"
)

var windowStart = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func sampleTransits() []entities.Transit {
	return []entities.Transit{{
		Planet:     "Jupiter",
		Sign:       "Taurus",
		House:      2,
		AspectType: valueobjects.AspectTrine,
		Orb:        0.5,
		ExactDate:  windowStart,
	}}
}

func TestNewTimingWindowValidation(t *testing.T) {
	_, err := NewTimingWindow(
		windowStart, windowStart.Add(-time.Hour),
		valueobjects.WindowTypeOpportunity, "t", "d",
		[]string{"Jupiter"}, valueobjects.AspectTrine, nil,
		sampleTransits(), 0.5,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewTimingWindow(
		windowStart, windowStart.Add(24*time.Hour),
		valueobjects.WindowTypeOpportunity, "t", "d",
		[]string{"Jupiter"}, valueobjects.AspectTrine, nil,
		nil, 0.5,
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNewTimingWindowClampsStrength(t *testing.T) {
	over, err := NewTimingWindow(
		windowStart, windowStart.Add(24*time.Hour),
		valueobjects.WindowTypeOpportunity, "t", "d",
		[]string{"Jupiter"}, valueobjects.AspectTrine, nil,
		sampleTransits(), 1.7,
	)
	require.NoError(t, err)
	assert.Equal(t, 1.0, over.Strength)

	under, err := NewTimingWindow(
		windowStart, windowStart.Add(24*time.Hour),
		valueobjects.WindowTypeOpportunity, "t", "d",
		[]string{"Jupiter"}, valueobjects.AspectTrine, nil,
		sampleTransits(), -0.2,
	)
	require.NoError(t, err)
	assert.Equal(t, 0.0, under.Strength)
}

func TestNewTimingWindowCopiesSlices(t *testing.T) {
	planets := []string{"Jupiter"}
	transits := sampleTransits()

	window, err := NewTimingWindow(
		windowStart, windowStart.Add(24*time.Hour),
		valueobjects.WindowTypeOpportunity, "t", "d",
		planets, valueobjects.AspectTrine, nil,
		transits, 0.5,
	)
	require.NoError(t, err)

	planets[0] = "Pluto"
	transits[0].Planet = "Pluto"

	assert.Equal(t, "Jupiter", window.InvolvedPlanets[0])
	assert.Equal(t, "Jupiter", window.Transits[0].Planet)
}

func TestAnnotate(t *testing.T) {
	window, err := NewTimingWindow(
		windowStart, windowStart.Add(5*24*time.Hour),
		valueobjects.WindowTypeOpportunity, "t", "d",
		[]string{"Jupiter"}, valueobjects.AspectTrine, nil,
		sampleTransits(), 0.5,
	)
	require.NoError(t, err)

	cases := []struct {
		name           string
		ref            time.Time
		active         bool
		daysUntilStart int
		daysRemaining  int
	}{
		{"before window", windowStart.Add(-3 * 24 * time.Hour), false, 3, 5},
		{"at start", windowStart, true, 0, 5},
		{"inside", windowStart.Add(2 * 24 * time.Hour), true, 0, 3},
		{"at end", windowStart.Add(5 * 24 * time.Hour), true, 0, 0},
		{"after window", windowStart.Add(8 * 24 * time.Hour), false, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			window.Annotate(tc.ref)
			assert.Equal(t, tc.active, window.IsActive)
			assert.Equal(t, tc.daysUntilStart, window.DaysUntilStart)
			assert.Equal(t, tc.daysRemaining, window.DaysRemaining)
		})
	}
}

func TestDuration(t *testing.T) {
	window, err := NewTimingWindow(
		windowStart, windowStart.Add(72*time.Hour),
		valueobjects.WindowTypeIntegration, "t", "d",
		[]string{"Jupiter"}, valueobjects.AspectConjunction, nil,
		sampleTransits(), 0.5,
	)
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, window.Duration())
}
