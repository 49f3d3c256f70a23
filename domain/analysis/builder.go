package analysis

import (
	"time"

	"astroinsight/domain/config"
	"astroinsight/domain/core/aggregates"
	"astroinsight/domain/core/entities"
)

// WindowBuilder composes the grouping, classification, and scoring stages
// into TimingWindow aggregates.
type WindowBuilder struct {
	grouping   *GroupingEngine
	classifier *WindowClassifier
	scorer     *StrengthScorer
}

// NewWindowBuilder creates a builder with all three pipeline stages
func NewWindowBuilder(cfg *config.DomainConfig) *WindowBuilder {
	return &WindowBuilder{
		grouping:   NewGroupingEngine(cfg),
		classifier: NewWindowClassifier(cfg),
		scorer:     NewStrengthScorer(cfg),
	}
}

// Build runs the full pipeline over raw transits. A nil referenceDate skips
// the active/days annotations; they are presentation metadata, not
// persisted identity.
func (b *WindowBuilder) Build(transits []entities.Transit, referenceDate *time.Time) ([]*aggregates.TimingWindow, error) {
	groups := b.grouping.Group(transits)
	windows := make([]*aggregates.TimingWindow, 0, len(groups))

	for _, group := range groups {
		window, err := b.buildOne(group)
		if err != nil {
			return nil, err
		}
		if referenceDate != nil {
			window.Annotate(*referenceDate)
		}
		windows = append(windows, window)
	}

	return windows, nil
}

func (b *WindowBuilder) buildOne(group entities.TransitGroup) (*aggregates.TimingWindow, error) {
	classification := b.classifier.Classify(group)
	strength := b.scorer.Score(group)

	return aggregates.NewTimingWindow(
		group.StartDate,
		group.EndDate,
		classification.Type,
		classification.Title,
		classification.Description,
		classification.InvolvedPlanets,
		classification.AspectType,
		classification.Keywords,
		group.Transits,
		strength,
	)
}
