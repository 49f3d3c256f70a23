package queries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	pkgerrors "astroinsight/pkg/errors"
)

func TestGetTimingWindowsQueryValidate(t *testing.T) {
	valid := GetTimingWindowsQuery{BirthChartID: "chart-1", HorizonDays: 30}
	assert.NoError(t, valid.Validate())

	err := GetTimingWindowsQuery{HorizonDays: 30}.Validate()
	assert.True(t, pkgerrors.IsValidation(err))

	err = GetTimingWindowsQuery{BirthChartID: "chart-1"}.Validate()
	assert.True(t, pkgerrors.IsValidation(err))

	err = GetTimingWindowsQuery{BirthChartID: "chart-1", HorizonDays: -7}.Validate()
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestGetInsightByTypeQueryValidate(t *testing.T) {
	assert.NoError(t, GetInsightByTypeQuery{BirthChartID: "chart-1", InsightType: "weekly"}.Validate())

	err := GetInsightByTypeQuery{InsightType: "weekly"}.Validate()
	assert.True(t, pkgerrors.IsValidation(err))

	err = GetInsightByTypeQuery{BirthChartID: "chart-1", InsightType: "bogus"}.Validate()
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestGetInsightQueryValidate(t *testing.T) {
	assert.NoError(t, GetInsightQuery{InsightID: "ins-1"}.Validate())
	assert.True(t, pkgerrors.IsValidation(GetInsightQuery{}.Validate()))
}

func TestListInsightsQueryValidate(t *testing.T) {
	assert.NoError(t, ListInsightsQuery{UserID: "user-1"}.Validate())
	assert.True(t, pkgerrors.IsValidation(ListInsightsQuery{}.Validate()))
}

func TestFilterInsightsQueryValidate(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 14)

	assert.NoError(t, FilterInsightsQuery{BirthChartID: "chart-1", Category: "career"}.Validate())
	assert.NoError(t, FilterInsightsQuery{BirthChartID: "chart-1", From: from, To: to}.Validate())

	err := FilterInsightsQuery{Category: "career"}.Validate()
	assert.True(t, pkgerrors.IsValidation(err))

	err = FilterInsightsQuery{BirthChartID: "chart-1"}.Validate()
	assert.True(t, pkgerrors.IsValidation(err))

	err = FilterInsightsQuery{BirthChartID: "chart-1", From: to, To: from}.Validate()
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestFilterInsightsQueryHasDateRange(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, FilterInsightsQuery{BirthChartID: "chart-1", Category: "career"}.HasDateRange())
	assert.False(t, FilterInsightsQuery{BirthChartID: "chart-1", From: from}.HasDateRange())
	assert.True(t, FilterInsightsQuery{BirthChartID: "chart-1", From: from, To: from.AddDate(0, 0, 7)}.HasDateRange())
}
