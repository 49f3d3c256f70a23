package entities

import (
	"time"

	"astroinsight/domain/core/valueobjects"
)

// CelestialBody is a computed placement supplied by the ephemeris service
type CelestialBody struct {
	Name      string  `json:"name"`
	Sign      string  `json:"sign"`
	House     int     `json:"house"`
	Longitude float64 `json:"longitude"`
	Retro     bool    `json:"retrograde"`
}

// Aspect is a computed angular relation between two bodies
type Aspect struct {
	Body1 string                  `json:"body1"`
	Body2 string                  `json:"body2"`
	Type  valueobjects.AspectType `json:"type"`
	Orb   float64                 `json:"orb"`
}

// House is a computed house cusp
type House struct {
	Number int     `json:"number"`
	Sign   string  `json:"sign"`
	Cusp   float64 `json:"cusp"`
}

// BirthChart carries the already-computed natal facts the engine consumes.
// The full birth-chart domain model lives with the ephemeris collaborator;
// only the facts prompt assembly and log metadata need appear here.
type BirthChart struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Bodies    []CelestialBody `json:"bodies"`
	Houses    []House         `json:"houses"`
	Aspects   []Aspect        `json:"aspects"`
	BirthDate time.Time       `json:"birth_date"`
}

// Body finds a placement by name, nil when absent
func (c *BirthChart) Body(name string) *CelestialBody {
	for i := range c.Bodies {
		if c.Bodies[i].Name == name {
			return &c.Bodies[i]
		}
	}
	return nil
}

// AspectsOf returns every aspect involving the named body
func (c *BirthChart) AspectsOf(name string) []Aspect {
	var out []Aspect
	for _, a := range c.Aspects {
		if a.Body1 == name || a.Body2 == name {
			out = append(out, a)
		}
	}
	return out
}

// LifeTheme is a named life-area narrative thread tied to a chart
type LifeTheme struct {
	Key         string `json:"key"`
	LifeArea    string `json:"life_area"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
