// Package analysis implements the timing-window pipeline: clustering raw
// transits into date-bounded groups, classifying and scoring each group,
// and assembling the resulting TimingWindow aggregates.
package analysis

import (
	"sort"
	"time"

	"astroinsight/domain/config"
	"astroinsight/domain/core/entities"
)

// GroupingEngine clusters transits into contiguous date ranges
type GroupingEngine struct {
	window time.Duration
}

// NewGroupingEngine creates an engine using the configured grouping window
func NewGroupingEngine(cfg *config.DomainConfig) *GroupingEngine {
	return &GroupingEngine{
		window: time.Duration(cfg.GroupingWindowDays) * 24 * time.Hour,
	}
}

// Group sorts transits by exact date and walks them in a single greedy
// pass. A transit joins the current group when its exact date lies within
// the grouping window of the group's anchor (its first member); otherwise
// the group closes and a new one starts. Closed groups are never revisited,
// so the result depends only on the sorted order, not on input order.
// An empty input yields an empty slice, not an error.
func (e *GroupingEngine) Group(transits []entities.Transit) []entities.TransitGroup {
	if len(transits) == 0 {
		return []entities.TransitGroup{}
	}

	sorted := append([]entities.Transit(nil), transits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ExactDate.Equal(sorted[j].ExactDate) {
			return sorted[i].ExactDate.Before(sorted[j].ExactDate)
		}
		// Same-date ties order by planet then aspect so the first member,
		// and with it the representative aspect and title, never depends
		// on input order.
		if sorted[i].Planet != sorted[j].Planet {
			return sorted[i].Planet < sorted[j].Planet
		}
		return sorted[i].AspectType < sorted[j].AspectType
	})

	groups := make([]entities.TransitGroup, 0)
	anchor := sorted[0].ExactDate
	current := []entities.Transit{sorted[0]}

	for _, t := range sorted[1:] {
		if t.ExactDate.Sub(anchor) <= e.window {
			current = append(current, t)
			continue
		}

		groups = append(groups, closeGroup(anchor, current))
		anchor = t.ExactDate
		current = []entities.Transit{t}
	}
	groups = append(groups, closeGroup(anchor, current))

	return groups
}

// closeGroup seals a cluster: end date is the latest member date plus one
// day, making the interval half-open over whole days.
func closeGroup(start time.Time, members []entities.Transit) entities.TransitGroup {
	end := members[0].ExactDate
	for _, t := range members[1:] {
		if t.ExactDate.After(end) {
			end = t.ExactDate
		}
	}

	return entities.TransitGroup{
		StartDate: start,
		EndDate:   end.Add(24 * time.Hour),
		Transits:  members,
	}
}
