package valueobjects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCacheKeyDateScoped(t *testing.T) {
	ref := time.Date(2025, 3, 15, 23, 30, 0, 0, time.UTC)

	key, err := NewCacheKey(InsightTypeDaily, "chart-123", ref)
	require.NoError(t, err)
	assert.Equal(t, "insight:daily:chart-123:2025-03-15", key.String())
}

func TestNewCacheKeyStable(t *testing.T) {
	ref := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	key, err := NewCacheKey(InsightTypeBirthChart, "chart-123", ref)
	require.NoError(t, err)
	assert.Equal(t, "insight:birth_chart:chart-123", key.String())

	// Different reference times address the same stable entry.
	later, err := NewCacheKey(InsightTypeBirthChart, "chart-123", ref.Add(96*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, key.String(), later.String())
}

func TestNewCacheKeyBucketUsesUTC(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 08:00 on March 16 in Tokyo is still March 15 in UTC.
	ref := time.Date(2025, 3, 16, 8, 0, 0, 0, tokyo)

	key, err := NewCacheKey(InsightTypeWeekly, "chart-123", ref)
	require.NoError(t, err)
	assert.Equal(t, "insight:weekly:chart-123:2025-03-15", key.String())
}

func TestNewCacheKeyRejectsBadInput(t *testing.T) {
	ref := time.Now()

	_, err := NewCacheKey(InsightType("horoscope"), "chart-123", ref)
	assert.Error(t, err)

	_, err = NewCacheKey(InsightTypeDaily, "", ref)
	assert.Error(t, err)
}

func TestDateScopedKinds(t *testing.T) {
	scoped := map[InsightType]bool{
		InsightTypeDaily:         true,
		InsightTypeWeekly:        true,
		InsightTypeThemeForecast: true,
	}

	for _, kind := range AllInsightTypes() {
		assert.Equal(t, scoped[kind], kind.IsDateScoped(), string(kind))
	}
}
