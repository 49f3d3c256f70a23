package analysis

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astroinsight/domain/config"
	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
)

var baseDate = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func transitOn(planet string, aspect valueobjects.AspectType, orb float64, date time.Time) entities.Transit {
	return entities.Transit{
		Planet:      planet,
		Sign:        "Aries",
		House:       5,
		AspectType:  aspect,
		Orb:         orb,
		ExactDate:   date,
		Description: planet + " transit bringing steady momentum",
	}
}

func TestGroupEmptyInput(t *testing.T) {
	engine := NewGroupingEngine(config.DefaultDomainConfig())

	groups := engine.Group(nil)

	require.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestGroupWithinWindowFormsOneGroup(t *testing.T) {
	engine := NewGroupingEngine(config.DefaultDomainConfig())
	transits := []entities.Transit{
		transitOn("Jupiter", valueobjects.AspectTrine, 0.5, baseDate),
		transitOn("Saturn", valueobjects.AspectTrine, 2, baseDate.Add(2*24*time.Hour)),
	}

	groups := engine.Group(transits)

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Transits, 2)
	assert.Equal(t, baseDate, groups[0].StartDate)
	// End date is the latest member date plus one day
	assert.Equal(t, baseDate.Add(3*24*time.Hour), groups[0].EndDate)
}

func TestGroupSplitsBeyondWindow(t *testing.T) {
	engine := NewGroupingEngine(config.DefaultDomainConfig())
	transits := []entities.Transit{
		transitOn("Mars", valueobjects.AspectSquare, 1, baseDate),
		transitOn("Venus", valueobjects.AspectSextile, 1, baseDate.Add(10*24*time.Hour)),
	}

	groups := engine.Group(transits)

	require.Len(t, groups, 2)
	assert.Equal(t, baseDate, groups[0].StartDate)
	assert.Equal(t, baseDate.Add(10*24*time.Hour), groups[1].StartDate)
	assert.NotEqual(t, groups[0].EndDate, groups[1].EndDate)
}

func TestGroupAnchorIsFirstMemberNotLast(t *testing.T) {
	// Members join relative to the group's anchor, so a chain of transits
	// each 5 days apart still splits once the anchor window is exceeded.
	engine := NewGroupingEngine(config.DefaultDomainConfig())
	transits := []entities.Transit{
		transitOn("Sun", valueobjects.AspectConjunction, 0.2, baseDate),
		transitOn("Mercury", valueobjects.AspectConjunction, 0.4, baseDate.Add(5*24*time.Hour)),
		transitOn("Venus", valueobjects.AspectConjunction, 0.6, baseDate.Add(9*24*time.Hour)),
	}

	groups := engine.Group(transits)

	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Transits, 2)
	assert.Len(t, groups[1].Transits, 1)
}

func TestGroupIdempotentUnderInputOrder(t *testing.T) {
	engine := NewGroupingEngine(config.DefaultDomainConfig())
	transits := []entities.Transit{
		transitOn("Jupiter", valueobjects.AspectTrine, 0.5, baseDate),
		transitOn("Saturn", valueobjects.AspectSquare, 2, baseDate.Add(3*24*time.Hour)),
		transitOn("Mars", valueobjects.AspectOpposition, 4, baseDate.Add(12*24*time.Hour)),
		transitOn("Venus", valueobjects.AspectSextile, 1, baseDate.Add(14*24*time.Hour)),
		transitOn("Mercury", valueobjects.AspectConjunction, 0.1, baseDate.Add(30*24*time.Hour)),
	}

	want := engine.Group(transits)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]entities.Transit(nil), transits...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := engine.Group(shuffled)
		assert.Equal(t, want, got, "grouping must not depend on insertion order")
	}
}

func TestGroupBreaksDateTiesDeterministically(t *testing.T) {
	engine := NewGroupingEngine(config.DefaultDomainConfig())

	// Same exact date: member order, and with it the group's first
	// (representative) transit, must not follow input order.
	jupiter := transitOn("Jupiter", valueobjects.AspectTrine, 0.5, baseDate)
	saturn := transitOn("Saturn", valueobjects.AspectSquare, 2, baseDate)

	forward := engine.Group([]entities.Transit{saturn, jupiter})
	reversed := engine.Group([]entities.Transit{jupiter, saturn})

	require.Len(t, forward, 1)
	assert.Equal(t, forward, reversed)
	assert.Equal(t, "Jupiter", forward[0].Transits[0].Planet)
}
