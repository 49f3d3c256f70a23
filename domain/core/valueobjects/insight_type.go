package valueobjects

import "fmt"

// InsightType enumerates the kinds of narrative insight the engine produces
type InsightType string

const (
	InsightTypeDaily         InsightType = "daily"
	InsightTypeWeekly        InsightType = "weekly"
	InsightTypeLifeTheme     InsightType = "life_theme"
	InsightTypeTransit       InsightType = "transit"
	InsightTypeBirthChart    InsightType = "birth_chart"
	InsightTypeNodePath      InsightType = "node_path"
	InsightTypePattern       InsightType = "pattern"
	InsightTypeHouseThemes   InsightType = "house_themes"
	InsightTypeHouseLords    InsightType = "house_lords"
	InsightTypeThemeForecast InsightType = "theme_forecast"
)

// AllInsightTypes lists every valid insight kind. InvalidateAll walks this
// set to remove each canonical key for a chart.
func AllInsightTypes() []InsightType {
	return []InsightType{
		InsightTypeDaily,
		InsightTypeWeekly,
		InsightTypeLifeTheme,
		InsightTypeTransit,
		InsightTypeBirthChart,
		InsightTypeNodePath,
		InsightTypePattern,
		InsightTypeHouseThemes,
		InsightTypeHouseLords,
		InsightTypeThemeForecast,
	}
}

// ParseInsightType converts a string into an InsightType
func ParseInsightType(s string) (InsightType, error) {
	t := InsightType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown insight type %q", s)
	}
	return t, nil
}

// IsValid reports whether the type is one of the known kinds
func (t InsightType) IsValid() bool {
	switch t {
	case InsightTypeDaily, InsightTypeWeekly, InsightTypeLifeTheme,
		InsightTypeTransit, InsightTypeBirthChart, InsightTypeNodePath,
		InsightTypePattern, InsightTypeHouseThemes, InsightTypeHouseLords,
		InsightTypeThemeForecast:
		return true
	}
	return false
}

// IsDateScoped reports whether cache keys for this kind carry a date bucket.
// Date-scoped kinds change every day; stable kinds only change when the
// chart or theme data changes.
func (t InsightType) IsDateScoped() bool {
	switch t {
	case InsightTypeDaily, InsightTypeWeekly, InsightTypeThemeForecast:
		return true
	}
	return false
}

// IsThemeScoped reports whether cache keys for this kind address a
// chartID:themeKey entity rather than the chart itself.
func (t InsightType) IsThemeScoped() bool {
	switch t {
	case InsightTypeLifeTheme, InsightTypeThemeForecast:
		return true
	}
	return false
}

// String returns the string representation of the type
func (t InsightType) String() string {
	return string(t)
}
