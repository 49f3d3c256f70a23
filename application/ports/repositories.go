package ports

import (
	"context"
	"time"

	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
	"astroinsight/domain/events"
)

// InsightRepository defines the interface for insight persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type InsightRepository interface {
	// Create persists a new analysis
	Create(ctx context.Context, analysis *entities.InsightAnalysis) error

	// Update persists a changed analysis under the same identity
	Update(ctx context.Context, analysis *entities.InsightAnalysis) error

	// GetByID retrieves an analysis by its ID
	GetByID(ctx context.Context, id valueobjects.InsightID) (*entities.InsightAnalysis, error)

	// GetByChartID retrieves all analyses for a birth chart, newest first
	GetByChartID(ctx context.Context, chartID string) ([]*entities.InsightAnalysis, error)

	// GetByChartAndType retrieves the latest analysis of one kind for a chart,
	// nil when none exists
	GetByChartAndType(ctx context.Context, chartID string, insightType valueobjects.InsightType) (*entities.InsightAnalysis, error)

	// GetByUserID retrieves all analyses owned by a user, newest first
	GetByUserID(ctx context.Context, userID string) ([]*entities.InsightAnalysis, error)

	// List retrieves analyses matching the criteria
	List(ctx context.Context, criteria ListCriteria) ([]*entities.InsightAnalysis, error)

	// Delete removes an analysis
	Delete(ctx context.Context, id valueobjects.InsightID) error
}

// InsightLogRepository persists the append-only generation audit trail
type InsightLogRepository interface {
	// Append stores a new log entry. Entries are never updated or deleted.
	Append(ctx context.Context, log *entities.InsightLog) error

	// GetByUser retrieves log entries for a user, newest first
	GetByUser(ctx context.Context, userID string, limit int) ([]*entities.InsightLog, error)
}

// BirthChartRepository loads chart data owned by the calculation subsystem.
// This engine only reads charts; it never writes them.
type BirthChartRepository interface {
	// GetByID retrieves a chart by its ID
	GetByID(ctx context.Context, chartID string) (*entities.BirthChart, error)

	// GetByUserID retrieves all charts for a user
	GetByUserID(ctx context.Context, userID string) ([]*entities.BirthChart, error)
}

// LifeThemeRepository loads the life-theme catalogue for a chart
type LifeThemeRepository interface {
	// GetByChartID retrieves the themes derived from a chart
	GetByChartID(ctx context.Context, chartID string) ([]*entities.LifeTheme, error)

	// GetByKey retrieves a single theme by its key
	GetByKey(ctx context.Context, chartID, key string) (*entities.LifeTheme, error)
}

// ListCriteria defines listing parameters for insight queries
type ListCriteria struct {
	UserID      string
	ChartID     string
	InsightType valueobjects.InsightType
	Category    string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
	OrderDesc   bool
}

// EventStore defines the interface for event persistence
type EventStore interface {
	// SaveEvents persists domain events
	SaveEvents(ctx context.Context, events []events.DomainEvent) error

	// GetEvents retrieves events for an aggregate
	GetEvents(ctx context.Context, aggregateID string) ([]events.DomainEvent, error)

	// GetEventsByType retrieves events of a specific type
	GetEventsByType(ctx context.Context, eventType string, limit int) ([]events.DomainEvent, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for the insight cache. Values are serialized
// text; TTL is in seconds, zero means no expiry. A failing cache must never
// fail a read path - callers log and fall through to generation.
type Cache interface {
	// Get retrieves a value from cache. A backend failure is returned as an
	// error with ok=false so callers can degrade to a miss.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value string, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// IDGenerator mints identifiers for new aggregates and log entries
type IDGenerator interface {
	NewID() string
}

// GenerationLock serializes insight generation per cache key so concurrent
// cache misses do not fan out into duplicate generator calls.
type GenerationLock interface {
	// Acquire takes the lock for a key, returning a release function.
	// A held lock blocks or errors depending on the implementation.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(ctx context.Context) error, err error)
}
