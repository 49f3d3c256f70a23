package ports

import (
	"context"
	"time"

	"astroinsight/domain/core/entities"
)

// EphemerisClient fronts the astronomical calculation service. Positions,
// transits, and aspects are computed there; this engine only interprets them.
type EphemerisClient interface {
	// CalculateTransits returns the transit events hitting a natal chart
	// inside [from, until)
	CalculateTransits(ctx context.Context, chart *entities.BirthChart, from, until time.Time) ([]entities.Transit, error)

	// CalculateAspects returns the aspect grid for a chart's placements
	CalculateAspects(ctx context.Context, chart *entities.BirthChart) ([]entities.Aspect, error)
}

// InsightGenerator produces narrative text from a prepared prompt. The
// orchestrator owns prompting, retries, and sanitization; implementations
// only translate one prompt into one completion.
type InsightGenerator interface {
	GenerateInsight(ctx context.Context, prompt string) (string, error)
}
