package valueobjects

// AspectType identifies the angular relationship of a transit to a natal point
type AspectType string

const (
	AspectConjunction  AspectType = "conjunction"
	AspectOpposition   AspectType = "opposition"
	AspectSquare       AspectType = "square"
	AspectTrine        AspectType = "trine"
	AspectSextile      AspectType = "sextile"
	AspectSemiSquare   AspectType = "semiSquare"
	AspectSesquisquare AspectType = "sesquisquare"
	AspectQuincunx     AspectType = "quincunx"
	AspectSemiSextile  AspectType = "semiSextile"
)

// IsValid reports whether the aspect is one of the nine recognized types
func (a AspectType) IsValid() bool {
	switch a {
	case AspectConjunction, AspectOpposition, AspectSquare, AspectTrine,
		AspectSextile, AspectSemiSquare, AspectSesquisquare,
		AspectQuincunx, AspectSemiSextile:
		return true
	}
	return false
}

// IsHarmonious reports whether the aspect is a flowing one.
// Trines and sextiles drive the Opportunity classification.
func (a AspectType) IsHarmonious() bool {
	return a == AspectTrine || a == AspectSextile
}

// IsChallenging reports whether the aspect is a hard one
func (a AspectType) IsChallenging() bool {
	return a == AspectSquare || a == AspectOpposition
}

// String returns the string representation of the aspect
func (a AspectType) String() string {
	return string(a)
}
