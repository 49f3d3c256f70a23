package valueobjects

import (
	"errors"
	"fmt"
	"time"
)

// cacheKeyPrefix namespaces every key this engine writes, so a shared cache
// backend can also hold unrelated application data.
const cacheKeyPrefix = "insight"

// CacheKey is the canonical cache address of one insight. Date-scoped kinds
// carry a UTC day bucket so yesterday's entry can never answer today's
// request; stable kinds omit it. Every persisted insight is reachable by
// exactly one CacheKey; the cache is a performance layer, never the source
// of truth.
type CacheKey struct {
	insightType InsightType
	entityID    string
	dateBucket  string
}

// NewCacheKey builds the canonical key for an insight kind and entity.
// The reference time supplies the day bucket for date-scoped kinds and is
// ignored for stable ones.
func NewCacheKey(t InsightType, entityID string, ref time.Time) (CacheKey, error) {
	if !t.IsValid() {
		return CacheKey{}, fmt.Errorf("unknown insight type %q", t)
	}
	if entityID == "" {
		return CacheKey{}, errors.New("cache key entity ID cannot be empty")
	}

	key := CacheKey{insightType: t, entityID: entityID}
	if t.IsDateScoped() {
		key.dateBucket = ref.UTC().Format("2006-01-02")
	}
	return key, nil
}

// String renders the key as stored in the backend:
// insight:<type>:<entityID>[:<YYYY-MM-DD>]
func (k CacheKey) String() string {
	if k.dateBucket != "" {
		return fmt.Sprintf("%s:%s:%s:%s", cacheKeyPrefix, k.insightType, k.entityID, k.dateBucket)
	}
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, k.insightType, k.entityID)
}

// InsightType returns the kind this key addresses
func (k CacheKey) InsightType() InsightType {
	return k.insightType
}

// EntityID returns the entity (birth chart, theme, ...) this key addresses
func (k CacheKey) EntityID() string {
	return k.entityID
}

// IsZero checks if the key is the zero value
func (k CacheKey) IsZero() bool {
	return k.entityID == ""
}
