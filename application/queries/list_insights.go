package queries

import (
	"astroinsight/domain/core/entities"
	"astroinsight/pkg/common"
	pkgerrors "astroinsight/pkg/errors"
)

// ListInsightsQuery asks for a user's analyses, paginated
type ListInsightsQuery struct {
	UserID     string
	Pagination common.PaginationParams
}

// Validate checks the query's invariants
func (q ListInsightsQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	return nil
}

// ListInsightsResult pairs a page of analyses with its pagination metadata
type ListInsightsResult struct {
	Analyses   []*entities.InsightAnalysis `json:"analyses"`
	Pagination *common.PaginationInfo      `json:"pagination"`
}
