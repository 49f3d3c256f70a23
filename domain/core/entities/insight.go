package entities

import (
	"strings"
	"time"

	"astroinsight/domain/core/valueobjects"
	pkgerrors "astroinsight/pkg/errors"
)

// Insight is one finer-grained narrative record within an analysis
type Insight struct {
	ID        string                  `json:"id"`
	Category  string                  `json:"category"`
	Title     string                  `json:"title"`
	Content   string                  `json:"content"`
	DateRange *valueobjects.DateRange `json:"-"`
	StartDate time.Time               `json:"start_date,omitempty"`
	EndDate   time.Time               `json:"end_date,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

// InsightAnalysis is the unit of cached and stored narrative output.
// Instances are never updated in place; a regeneration produces a new one.
type InsightAnalysis struct {
	id             valueobjects.InsightID
	birthChartID   string
	userID         string
	insightType    valueobjects.InsightType
	content        string
	insights       []Insight
	overallSummary string
	createdAt      time.Time
	updatedAt      time.Time
}

// NewInsightAnalysis creates an analysis with business rule validation
func NewInsightAnalysis(
	id valueobjects.InsightID,
	birthChartID string,
	userID string,
	insightType valueobjects.InsightType,
	content string,
	overallSummary string,
	insights []Insight,
	now time.Time,
) (*InsightAnalysis, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("insight ID cannot be empty")
	}
	if birthChartID == "" {
		return nil, pkgerrors.NewValidationError("birth chart ID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("user ID cannot be empty")
	}
	if !insightType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown insight type")
	}
	if strings.TrimSpace(content) == "" {
		return nil, pkgerrors.NewValidationError("insight content cannot be empty")
	}

	return &InsightAnalysis{
		id:             id,
		birthChartID:   birthChartID,
		userID:         userID,
		insightType:    insightType,
		content:        content,
		insights:       append([]Insight(nil), insights...),
		overallSummary: overallSummary,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructInsightAnalysis rebuilds an analysis from repository data with
// preserved timestamps
func ReconstructInsightAnalysis(
	id valueobjects.InsightID,
	birthChartID string,
	userID string,
	insightType valueobjects.InsightType,
	content string,
	overallSummary string,
	insights []Insight,
	createdAt, updatedAt time.Time,
) (*InsightAnalysis, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("insight ID cannot be empty")
	}
	if updatedAt.Before(createdAt) {
		return nil, pkgerrors.NewValidationError("updatedAt precedes createdAt")
	}

	return &InsightAnalysis{
		id:             id,
		birthChartID:   birthChartID,
		userID:         userID,
		insightType:    insightType,
		content:        content,
		insights:       append([]Insight(nil), insights...),
		overallSummary: overallSummary,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

// ID returns the analysis identifier
func (a *InsightAnalysis) ID() valueobjects.InsightID { return a.id }

// BirthChartID returns the chart this analysis belongs to
func (a *InsightAnalysis) BirthChartID() string { return a.birthChartID }

// UserID returns the owning user
func (a *InsightAnalysis) UserID() string { return a.userID }

// Type returns the insight kind
func (a *InsightAnalysis) Type() valueobjects.InsightType { return a.insightType }

// Content returns the narrative text
func (a *InsightAnalysis) Content() string { return a.content }

// OverallSummary returns the summary line
func (a *InsightAnalysis) OverallSummary() string { return a.overallSummary }

// CreatedAt returns the creation timestamp
func (a *InsightAnalysis) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt returns the last-touch timestamp
func (a *InsightAnalysis) UpdatedAt() time.Time { return a.updatedAt }

// Insights returns a copy of the ordered insight list
func (a *InsightAnalysis) Insights() []Insight {
	return append([]Insight(nil), a.insights...)
}

// ReplaceContent swaps the narrative and touches updatedAt. Used when a
// regeneration is written under the same identity.
func (a *InsightAnalysis) ReplaceContent(content, overallSummary string, insights []Insight, now time.Time) error {
	if strings.TrimSpace(content) == "" {
		return pkgerrors.NewValidationError("insight content cannot be empty")
	}
	if now.Before(a.createdAt) {
		now = a.createdAt
	}

	a.content = content
	a.overallSummary = overallSummary
	a.insights = append([]Insight(nil), insights...)
	a.updatedAt = now
	return nil
}

// InsightsByCategory filters the materialized insight list in memory
func (a *InsightAnalysis) InsightsByCategory(category string) []Insight {
	out := make([]Insight, 0)
	for _, ins := range a.insights {
		if strings.EqualFold(ins.Category, category) {
			out = append(out, ins)
		}
	}
	return out
}

// InsightsInRange filters insights whose own range overlaps the query range.
// Insights without a range match on CreatedAt.
func (a *InsightAnalysis) InsightsInRange(r valueobjects.DateRange) []Insight {
	out := make([]Insight, 0)
	for _, ins := range a.insights {
		if ins.DateRange != nil {
			if ins.DateRange.Overlaps(r) {
				out = append(out, ins)
			}
			continue
		}
		if r.Contains(ins.CreatedAt) {
			out = append(out, ins)
		}
	}
	return out
}
