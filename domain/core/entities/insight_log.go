package entities

import (
	"time"

	"astroinsight/domain/core/valueobjects"
	pkgerrors "astroinsight/pkg/errors"
)

// MetadataKind discriminates the LogMetadata variants
type MetadataKind string

const (
	MetadataKindNatal    MetadataKind = "natal"
	MetadataKindTransit  MetadataKind = "transit"
	MetadataKindTheme    MetadataKind = "theme"
	MetadataKindDaily    MetadataKind = "daily"
	MetadataKindNodePath MetadataKind = "node_path"
)

// PlacementSnapshot captures one body's placement at generation time
type PlacementSnapshot struct {
	Body    string   `json:"body"`
	Sign    string   `json:"sign"`
	House   int      `json:"house"`
	Aspects []string `json:"aspects,omitempty"`
}

// NatalMetadata records the chart facts behind a natal-chart insight
type NatalMetadata struct {
	Sun       PlacementSnapshot `json:"sun"`
	Moon      PlacementSnapshot `json:"moon"`
	Ascendant PlacementSnapshot `json:"ascendant"`
}

// TransitMetadata records the triggering transit behind a transit insight
type TransitMetadata struct {
	Planet        string  `json:"planet"`
	Sign          string  `json:"sign"`
	House         int     `json:"house"`
	Orb           float64 `json:"orb"`
	Aspect        string  `json:"aspect"`
	FocusArea     string  `json:"focus_area"`
	TriggerSource string  `json:"trigger_source"`
}

// ThemeMetadata records the life theme behind a theme insight
type ThemeMetadata struct {
	LifeThemeKey string `json:"life_theme_key"`
	LifeArea     string `json:"life_area"`
}

// KeyTransitSnapshot is a compact record of a significant transit on the day
type KeyTransitSnapshot struct {
	Planet string `json:"planet"`
	Aspect string `json:"aspect"`
	Orb    float64 `json:"orb"`
}

// DailyMetadata records the date and key transits behind a daily insight
type DailyMetadata struct {
	Date        string               `json:"date"`
	KeyTransits []KeyTransitSnapshot `json:"key_transits,omitempty"`
}

// NodePathMetadata records lunar node placements behind a node-path insight
type NodePathMetadata struct {
	NorthNode PlacementSnapshot `json:"north_node"`
	SouthNode PlacementSnapshot `json:"south_node"`
}

// LogMetadata is a tagged variant: Kind names the populated field and the
// others stay nil. A wide optional-field bag would leave it ambiguous which
// fields are valid together; one variant per insight kind removes that.
type LogMetadata struct {
	Kind     MetadataKind      `json:"kind"`
	Natal    *NatalMetadata    `json:"natal,omitempty"`
	Transit  *TransitMetadata  `json:"transit,omitempty"`
	Theme    *ThemeMetadata    `json:"theme,omitempty"`
	Daily    *DailyMetadata    `json:"daily,omitempty"`
	NodePath *NodePathMetadata `json:"node_path,omitempty"`
}

// Validate checks that exactly the field named by Kind is populated
func (m LogMetadata) Validate() error {
	var populated bool
	switch m.Kind {
	case MetadataKindNatal:
		populated = m.Natal != nil
	case MetadataKindTransit:
		populated = m.Transit != nil
	case MetadataKindTheme:
		populated = m.Theme != nil
	case MetadataKindDaily:
		populated = m.Daily != nil
	case MetadataKindNodePath:
		populated = m.NodePath != nil
	default:
		return pkgerrors.NewValidationError("unknown log metadata kind")
	}
	if !populated {
		return pkgerrors.NewValidationError("log metadata variant missing for kind " + string(m.Kind))
	}
	return nil
}

// InsightLog is the append-only audit record paired with a generated
// narrative. Updates create new logs; history is never mutated.
type InsightLog struct {
	id          string
	userID      string
	insightType valueobjects.InsightType
	content     string
	generatedAt time.Time
	metadata    LogMetadata
}

// NewInsightLog creates a log entry at generation time
func NewInsightLog(
	id string,
	userID string,
	insightType valueobjects.InsightType,
	content string,
	generatedAt time.Time,
	metadata LogMetadata,
) (*InsightLog, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("log ID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("user ID cannot be empty")
	}
	if !insightType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown insight type")
	}
	if err := metadata.Validate(); err != nil {
		return nil, err
	}

	return &InsightLog{
		id:          id,
		userID:      userID,
		insightType: insightType,
		content:     content,
		generatedAt: generatedAt,
		metadata:    metadata,
	}, nil
}

// ReconstructInsightLog rebuilds a log entry from repository data. Metadata
// is trusted as stored; validation happened at append time.
func ReconstructInsightLog(
	id string,
	userID string,
	insightType valueobjects.InsightType,
	content string,
	generatedAt time.Time,
	metadata LogMetadata,
) *InsightLog {
	return &InsightLog{
		id:          id,
		userID:      userID,
		insightType: insightType,
		content:     content,
		generatedAt: generatedAt,
		metadata:    metadata,
	}
}

// ID returns the log identifier
func (l *InsightLog) ID() string { return l.id }

// UserID returns the owning user
func (l *InsightLog) UserID() string { return l.userID }

// InsightType returns the kind of insight this log describes
func (l *InsightLog) InsightType() valueobjects.InsightType { return l.insightType }

// Content returns the generated narrative carried by the log
func (l *InsightLog) Content() string { return l.content }

// GeneratedAt returns the generation timestamp
func (l *InsightLog) GeneratedAt() time.Time { return l.generatedAt }

// Metadata returns the kind-specific metadata variant
func (l *InsightLog) Metadata() LogMetadata { return l.metadata }
