package commands

import (
	"time"

	"astroinsight/domain/core/valueobjects"
	pkgerrors "astroinsight/pkg/errors"
	"astroinsight/pkg/utils"
)

// GenerateInsightCommand requests generation (or cached retrieval) of one
// insight kind for a birth chart
type GenerateInsightCommand struct {
	UserID        string `validate:"required"`
	BirthChartID  string `validate:"required"`
	InsightType   string `validate:"required"`
	ThemeKey      string
	ReferenceDate time.Time
}

// Validate checks the command's invariants
func (c GenerateInsightCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}

	insightType, err := valueobjects.ParseInsightType(c.InsightType)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	themeKind := insightType == valueobjects.InsightTypeLifeTheme ||
		insightType == valueobjects.InsightTypeThemeForecast
	if themeKind && c.ThemeKey == "" {
		return pkgerrors.NewValidationError("theme key is required for theme insights")
	}

	return nil
}
