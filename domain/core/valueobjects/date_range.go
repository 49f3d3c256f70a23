package valueobjects

import (
	"time"

	pkgerrors "astroinsight/pkg/errors"
)

// DateRange is a half-open interval [Start, End)
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange creates a validated date range
func NewDateRange(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, pkgerrors.NewValidationError("date range bounds cannot be zero")
	}
	if end.Before(start) {
		return DateRange{}, pkgerrors.NewValidationError("date range end precedes start")
	}
	return DateRange{start: start, end: end}, nil
}

// Start returns the inclusive lower bound
func (r DateRange) Start() time.Time {
	return r.start
}

// End returns the exclusive upper bound
func (r DateRange) End() time.Time {
	return r.end
}

// Contains reports whether t falls inside the interval
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.start) && t.Before(r.end)
}

// Overlaps reports whether two ranges share any instant
func (r DateRange) Overlaps(other DateRange) bool {
	return r.start.Before(other.end) && other.start.Before(r.end)
}

// IsZero checks if the range is the zero value
func (r DateRange) IsZero() bool {
	return r.start.IsZero() && r.end.IsZero()
}
