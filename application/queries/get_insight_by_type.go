package queries

import (
	"astroinsight/domain/core/valueobjects"
	pkgerrors "astroinsight/pkg/errors"
)

// GetInsightByTypeQuery asks for the latest analysis of one kind for a chart
type GetInsightByTypeQuery struct {
	BirthChartID string
	InsightType  string
}

// Validate checks the query's invariants
func (q GetInsightByTypeQuery) Validate() error {
	if q.BirthChartID == "" {
		return pkgerrors.NewValidationError("birth chart ID is required")
	}
	if _, err := valueobjects.ParseInsightType(q.InsightType); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}
