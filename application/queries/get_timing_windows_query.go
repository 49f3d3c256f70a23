package queries

import (
	"time"

	pkgerrors "astroinsight/pkg/errors"
)

// GetTimingWindowsQuery asks for the timing windows over a chart's upcoming
// transits, annotated against the reference date
type GetTimingWindowsQuery struct {
	BirthChartID  string
	HorizonDays   int
	ReferenceDate time.Time
}

// Validate checks the query's invariants
func (q GetTimingWindowsQuery) Validate() error {
	if q.BirthChartID == "" {
		return pkgerrors.NewValidationError("birth chart ID is required")
	}
	if q.HorizonDays <= 0 {
		return pkgerrors.NewValidationError("horizon must be positive")
	}
	return nil
}
