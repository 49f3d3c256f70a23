package queries

import (
	"time"

	pkgerrors "astroinsight/pkg/errors"
)

// FilterInsightsQuery asks for a chart's insights filtered by category,
// date range, or both. Filtering runs in memory over the materialized
// insight lists.
type FilterInsightsQuery struct {
	BirthChartID string
	Category     string
	From         time.Time
	To           time.Time
}

// Validate checks the query's invariants
func (q FilterInsightsQuery) Validate() error {
	if q.BirthChartID == "" {
		return pkgerrors.NewValidationError("birth chart ID is required")
	}
	if q.Category == "" && q.From.IsZero() && q.To.IsZero() {
		return pkgerrors.NewValidationError("at least one filter is required")
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return pkgerrors.NewValidationError("date range end precedes start")
	}
	return nil
}

// HasDateRange reports whether the query carries a date filter
func (q FilterInsightsQuery) HasDateRange() bool {
	return !q.From.IsZero() && !q.To.IsZero()
}
