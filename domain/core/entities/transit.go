package entities

import (
	"time"

	"astroinsight/domain/core/valueobjects"
)

// Transit is a single planet-to-natal-point aspect event, produced by the
// ephemeris collaborator. Records are immutable once received; the engine
// copies them into windows and never mutates them.
type Transit struct {
	Planet         string                  `json:"planet"`
	Sign           string                  `json:"sign"`
	House          int                     `json:"house"`
	AspectType     valueobjects.AspectType `json:"aspect_type"`
	Orb            float64                 `json:"orb"`
	ExactDate      time.Time               `json:"exact_date"`
	Influence      string                  `json:"influence"`
	Description    string                  `json:"description"`
	AspectingNatal string                  `json:"aspecting_natal,omitempty"`
}

// Text returns the free text used for keyword extraction, preferring the
// description and falling back to the influence line.
func (t Transit) Text() string {
	if t.Description != "" {
		return t.Description
	}
	return t.Influence
}

// TransitGroup is a contiguous cluster of transits within the grouping
// window. Groups are an intermediate product of the analysis pipeline;
// only TimingWindow is cached.
type TransitGroup struct {
	StartDate time.Time
	EndDate   time.Time
	Transits  []Transit
}
