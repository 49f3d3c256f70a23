package commands

import (
	"astroinsight/pkg/utils"
)

// InvalidateInsightsCommand drops every cached insight for a birth chart.
// Issued when the underlying chart or theme data changes.
type InvalidateInsightsCommand struct {
	BirthChartID string `validate:"required"`
	Reason       string
}

// Validate checks the command's invariants
func (c InvalidateInsightsCommand) Validate() error {
	return utils.ValidateStruct(c)
}
