// Package aggregates holds the TimingWindow aggregate, the cacheable unit
// the analysis pipeline produces from grouped transits.
package aggregates

import (
	"time"

	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
	pkgerrors "astroinsight/pkg/errors"
	"astroinsight/pkg/utils"
)

// TimingWindow is a derived, cacheable aggregate over a transit cluster.
// Windows are created per analysis run and never updated in place; a new
// run produces new instances. The window exclusively owns its transit copy.
type TimingWindow struct {
	StartDate       time.Time               `json:"start_date"`
	EndDate         time.Time               `json:"end_date"`
	Type            valueobjects.WindowType `json:"type"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	InvolvedPlanets []string                `json:"involved_planets"`
	AspectType      valueobjects.AspectType `json:"aspect_type"`
	Keywords        []string                `json:"keywords"`
	Transits        []entities.Transit      `json:"transits"`
	Strength        float64                 `json:"strength"`

	// Reference-date annotations; presentation metadata, not identity.
	IsActive       bool `json:"is_active,omitempty"`
	DaysUntilStart int  `json:"days_until_start,omitempty"`
	DaysRemaining  int  `json:"days_remaining,omitempty"`
}

// NewTimingWindow builds a window, enforcing its invariants: the interval
// is ordered, the transit list is non-empty, and strength lands in [0,1].
func NewTimingWindow(
	startDate, endDate time.Time,
	windowType valueobjects.WindowType,
	title, description string,
	involvedPlanets []string,
	aspectType valueobjects.AspectType,
	keywords []string,
	transits []entities.Transit,
	strength float64,
) (*TimingWindow, error) {
	if endDate.Before(startDate) {
		return nil, pkgerrors.NewValidationError("window end date precedes start date")
	}
	if len(transits) == 0 {
		return nil, pkgerrors.NewValidationError("window must contain at least one transit")
	}

	return &TimingWindow{
		StartDate:       startDate,
		EndDate:         endDate,
		Type:            windowType,
		Title:           title,
		Description:     description,
		InvolvedPlanets: append([]string(nil), involvedPlanets...),
		AspectType:      aspectType,
		Keywords:        append([]string(nil), keywords...),
		Transits:        append([]entities.Transit(nil), transits...),
		Strength:        clamp01(strength),
	}, nil
}

// Annotate fills the reference-date fields for "smart" queries:
// whether the window is active now, days until it opens, days left in it.
func (w *TimingWindow) Annotate(ref time.Time) {
	w.IsActive = !ref.Before(w.StartDate) && !ref.After(w.EndDate)
	w.DaysUntilStart = utils.DaysUntil(ref, w.StartDate)

	if ref.After(w.EndDate) {
		w.DaysRemaining = 0
	} else if ref.Before(w.StartDate) {
		w.DaysRemaining = utils.WholeDaysBetween(w.StartDate, w.EndDate)
	} else {
		w.DaysRemaining = utils.WholeDaysBetween(ref, w.EndDate)
	}
}

// Duration returns the window's span
func (w *TimingWindow) Duration() time.Duration {
	return w.EndDate.Sub(w.StartDate)
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
