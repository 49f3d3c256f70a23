package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"astroinsight/application/ports"
	"astroinsight/domain/config"
	"astroinsight/domain/core/valueobjects"
	"astroinsight/pkg/observability"
)

// InsightCacheManager wraps the cache port with the engine's key and TTL
// policy. The cache is strictly a performance layer: every failure here is
// logged and degrades to a miss, never surfaced to the caller.
type InsightCacheManager struct {
	cache   ports.Cache
	config  *config.DomainConfig
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewInsightCacheManager creates a cache manager with the domain TTL policy
func NewInsightCacheManager(
	cache ports.Cache,
	cfg *config.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *InsightCacheManager {
	return &InsightCacheManager{
		cache:   cache,
		config:  cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Lookup fetches the cached narrative for a key. Backend errors count as a
// miss.
func (m *InsightCacheManager) Lookup(ctx context.Context, key valueobjects.CacheKey) (string, bool) {
	value, ok, err := m.cache.Get(ctx, key.String())
	if err != nil {
		m.logger.Warn("cache read failed, treating as miss",
			zap.String("key", key.String()),
			zap.Error(err))
		ok = false
		value = ""
	}

	m.metrics.RecordCacheAccess(ctx, key.InsightType().String(), ok)
	return value, ok
}

// Store writes a freshly generated narrative under its canonical key with
// the TTL for its kind. Write failures are logged and dropped.
func (m *InsightCacheManager) Store(ctx context.Context, key valueobjects.CacheKey, content string) {
	ttl := m.TTLFor(key.InsightType())
	if err := m.cache.Set(ctx, key.String(), content, ttl); err != nil {
		m.logger.Warn("cache write failed, insight served uncached",
			zap.String("key", key.String()),
			zap.Int("ttl_seconds", ttl),
			zap.Error(err))
	}
}

// InvalidateAll removes every kind's canonical key for a chart. Theme-scoped
// kinds live under chartID:themeKey entities, so the chart's theme keys must
// be passed in to reach them. Dated kinds are deleted under the reference
// day's bucket; older buckets age out via TTL. Deletion failures are logged
// per key and never abort the sweep.
func (m *InsightCacheManager) InvalidateAll(ctx context.Context, birthChartID string, themeKeys []string, ref time.Time) {
	for _, kind := range valueobjects.AllInsightTypes() {
		entityIDs := []string{birthChartID}
		if kind.IsThemeScoped() {
			for _, themeKey := range themeKeys {
				entityIDs = append(entityIDs, birthChartID+":"+themeKey)
			}
		}

		for _, entityID := range entityIDs {
			key, err := valueobjects.NewCacheKey(kind, entityID, ref)
			if err != nil {
				continue
			}
			if err := m.cache.Delete(ctx, key.String()); err != nil {
				m.logger.Warn("cache invalidation failed for key",
					zap.String("key", key.String()),
					zap.Error(err))
			}
		}
	}

	m.logger.Info("invalidated cached insights",
		zap.String("birth_chart_id", birthChartID),
		zap.Int("theme_keys", len(themeKeys)))
}

// TTLFor returns the TTL in seconds for an insight kind. Date-scoped kinds
// live a full day behind their bucket; stable kinds refresh hourly so chart
// edits converge without explicit invalidation.
func (m *InsightCacheManager) TTLFor(t valueobjects.InsightType) int {
	if t.IsDateScoped() {
		return int(m.config.DailyInsightTTL.Seconds())
	}
	return int(m.config.StableInsightTTL.Seconds())
}
