package events

import (
	"time"

	"astroinsight/domain/core/valueobjects"
)

// SourceBackend identifies this service as the event source on the bus
const SourceBackend = "astroinsight.backend"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Insight events

// InsightGenerated is raised when a narrative insight is generated and stored
type InsightGenerated struct {
	BaseEvent
	InsightID    string                   `json:"insight_id"`
	BirthChartID string                   `json:"birth_chart_id"`
	UserID       string                   `json:"user_id"`
	InsightType  valueobjects.InsightType `json:"insight_type"`
	CacheKey     string                   `json:"cache_key"`
}

// NewInsightGenerated creates an InsightGenerated event
func NewInsightGenerated(
	insightID valueobjects.InsightID,
	birthChartID, userID string,
	insightType valueobjects.InsightType,
	cacheKey string,
	timestamp time.Time,
) InsightGenerated {
	return InsightGenerated{
		BaseEvent: BaseEvent{
			AggregateID: insightID.String(),
			EventType:   "insight.generated",
			Timestamp:   timestamp,
			Version:     1,
		},
		InsightID:    insightID.String(),
		BirthChartID: birthChartID,
		UserID:       userID,
		InsightType:  insightType,
		CacheKey:     cacheKey,
	}
}

// InsightsInvalidated is raised when every cached insight for a chart is dropped
type InsightsInvalidated struct {
	BaseEvent
	BirthChartID string `json:"birth_chart_id"`
	Reason       string `json:"reason,omitempty"`
}

// NewInsightsInvalidated creates an InsightsInvalidated event
func NewInsightsInvalidated(birthChartID, reason string, timestamp time.Time) InsightsInvalidated {
	return InsightsInvalidated{
		BaseEvent: BaseEvent{
			AggregateID: birthChartID,
			EventType:   "insight.invalidated",
			Timestamp:   timestamp,
			Version:     1,
		},
		BirthChartID: birthChartID,
		Reason:       reason,
	}
}

// TimingWindowsComputed is raised when a timing-window analysis completes
type TimingWindowsComputed struct {
	BaseEvent
	BirthChartID string `json:"birth_chart_id"`
	WindowCount  int    `json:"window_count"`
	HorizonDays  int    `json:"horizon_days"`
}

// NewTimingWindowsComputed creates a TimingWindowsComputed event
func NewTimingWindowsComputed(birthChartID string, windowCount, horizonDays int, timestamp time.Time) TimingWindowsComputed {
	return TimingWindowsComputed{
		BaseEvent: BaseEvent{
			AggregateID: birthChartID,
			EventType:   "insight.windows_computed",
			Timestamp:   timestamp,
			Version:     1,
		},
		BirthChartID: birthChartID,
		WindowCount:  windowCount,
		HorizonDays:  horizonDays,
	}
}
