package queries

import (
	pkgerrors "astroinsight/pkg/errors"
)

// GetInsightQuery asks for one stored analysis by ID
type GetInsightQuery struct {
	InsightID string
}

// Validate checks the query's invariants
func (q GetInsightQuery) Validate() error {
	if q.InsightID == "" {
		return pkgerrors.NewValidationError("insight ID is required")
	}
	return nil
}
