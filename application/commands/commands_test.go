package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "astroinsight/pkg/errors"
)

func TestGenerateInsightCommandValidate(t *testing.T) {
	valid := GenerateInsightCommand{
		UserID:       "user-1",
		BirthChartID: "chart-1",
		InsightType:  "daily",
	}
	assert.NoError(t, valid.Validate())

	missingChart := valid
	missingChart.BirthChartID = ""
	err := missingChart.Validate()
	assert.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	badType := valid
	badType.InsightType = "horoscope"
	err = badType.Validate()
	assert.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestGenerateInsightCommandThemeKey(t *testing.T) {
	cmd := GenerateInsightCommand{
		UserID:       "user-1",
		BirthChartID: "chart-1",
		InsightType:  "life_theme",
	}
	err := cmd.Validate()
	assert.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	cmd.ThemeKey = "career"
	assert.NoError(t, cmd.Validate())

	forecast := cmd
	forecast.InsightType = "theme_forecast"
	assert.NoError(t, forecast.Validate())

	forecast.ThemeKey = ""
	assert.Error(t, forecast.Validate())
}

func TestInvalidateInsightsCommandValidate(t *testing.T) {
	assert.NoError(t, InvalidateInsightsCommand{BirthChartID: "chart-1"}.Validate())

	err := InvalidateInsightsCommand{}.Validate()
	assert.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}
