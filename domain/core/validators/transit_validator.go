// Package validators checks transit records arriving from the ephemeris
// collaborator before they enter the analysis pipeline. Malformed records
// are rejected here so the grouping and scoring code can assume clean input.
package validators

import (
	"fmt"
	"strings"

	"astroinsight/domain/core/entities"
	pkgerrors "astroinsight/pkg/errors"
)

// TransitValidator validates transit-related domain rules
type TransitValidator struct {
	maxAbsOrb float64
	minHouse  int
	maxHouse  int
}

// NewTransitValidator creates a validator with default rules
func NewTransitValidator() *TransitValidator {
	return &TransitValidator{
		maxAbsOrb: 15.0, // wider than any aspect orb an ephemeris would emit
		minHouse:  1,
		maxHouse:  12,
	}
}

// ValidateTransit checks a single transit record
func (v *TransitValidator) ValidateTransit(t entities.Transit) error {
	var problems []string

	if strings.TrimSpace(t.Planet) == "" {
		problems = append(problems, "planet is required")
	}
	if t.House < v.minHouse || t.House > v.maxHouse {
		problems = append(problems, fmt.Sprintf("house %d outside %d..%d", t.House, v.minHouse, v.maxHouse))
	}
	if !t.AspectType.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown aspect type %q", t.AspectType))
	}
	if t.Orb < -v.maxAbsOrb || t.Orb > v.maxAbsOrb {
		problems = append(problems, fmt.Sprintf("orb %.2f outside ±%.1f degrees", t.Orb, v.maxAbsOrb))
	}
	if t.ExactDate.IsZero() {
		problems = append(problems, "exact date is required")
	}

	if len(problems) > 0 {
		return pkgerrors.NewValidationError("invalid transit: " + strings.Join(problems, "; "))
	}
	return nil
}

// ValidateBatch checks a transit list, reporting the first offending index
func (v *TransitValidator) ValidateBatch(transits []entities.Transit) error {
	for i, t := range transits {
		if err := v.ValidateTransit(t); err != nil {
			return pkgerrors.Wrapf(err, "transit %d", i)
		}
	}
	return nil
}
