package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"astroinsight/application/ports"
	"astroinsight/domain/config"
	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
	domainevents "astroinsight/domain/events"
	pkgerrors "astroinsight/pkg/errors"
	"astroinsight/pkg/observability"
	"astroinsight/pkg/ratelimit"
)

type fakeCache struct {
	values map[string]string
	ttls   map[string]int
	getErr error
	setErr error
	delErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		values: make(map[string]string),
		ttls:   make(map[string]int),
	}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, ttl int) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.values[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	if c.delErr != nil {
		return c.delErr
	}
	delete(c.values, key)
	return nil
}

func (c *fakeCache) Clear(_ context.Context) error {
	c.values = make(map[string]string)
	return nil
}

type fakeGenerator struct {
	calls     int
	responses []string
	errs      []error
}

func (g *fakeGenerator) GenerateInsight(_ context.Context, _ string) (string, error) {
	i := g.calls
	g.calls++
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "A steady narrative about the sky.", nil
}

type fakeInsightRepo struct {
	byChartType map[string]*entities.InsightAnalysis
	createErr   error
	updates     int
	creates     int
}

func newFakeInsightRepo() *fakeInsightRepo {
	return &fakeInsightRepo{byChartType: make(map[string]*entities.InsightAnalysis)}
}

func repoKey(chartID string, t valueobjects.InsightType) string {
	return chartID + "/" + t.String()
}

func (r *fakeInsightRepo) Create(_ context.Context, a *entities.InsightAnalysis) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.creates++
	r.byChartType[repoKey(a.BirthChartID(), a.Type())] = a
	return nil
}

func (r *fakeInsightRepo) Update(_ context.Context, a *entities.InsightAnalysis) error {
	r.updates++
	r.byChartType[repoKey(a.BirthChartID(), a.Type())] = a
	return nil
}

func (r *fakeInsightRepo) GetByID(_ context.Context, id valueobjects.InsightID) (*entities.InsightAnalysis, error) {
	for _, a := range r.byChartType {
		if a.ID().Equals(id) {
			return a, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("insight analysis")
}

func (r *fakeInsightRepo) GetByChartID(_ context.Context, chartID string) ([]*entities.InsightAnalysis, error) {
	var out []*entities.InsightAnalysis
	for _, a := range r.byChartType {
		if a.BirthChartID() == chartID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeInsightRepo) GetByChartAndType(_ context.Context, chartID string, t valueobjects.InsightType) (*entities.InsightAnalysis, error) {
	return r.byChartType[repoKey(chartID, t)], nil
}

func (r *fakeInsightRepo) GetByUserID(_ context.Context, userID string) ([]*entities.InsightAnalysis, error) {
	var out []*entities.InsightAnalysis
	for _, a := range r.byChartType {
		if a.UserID() == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeInsightRepo) List(_ context.Context, _ ports.ListCriteria) ([]*entities.InsightAnalysis, error) {
	return nil, nil
}

func (r *fakeInsightRepo) Delete(_ context.Context, id valueobjects.InsightID) error {
	for k, a := range r.byChartType {
		if a.ID().Equals(id) {
			delete(r.byChartType, k)
			return nil
		}
	}
	return pkgerrors.NewNotFoundError("insight analysis")
}

type fakeLogRepo struct {
	entries   []*entities.InsightLog
	appendErr error
}

func (r *fakeLogRepo) Append(_ context.Context, log *entities.InsightLog) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.entries = append(r.entries, log)
	return nil
}

func (r *fakeLogRepo) GetByUser(_ context.Context, _ string, _ int) ([]*entities.InsightLog, error) {
	return r.entries, nil
}

type fakeEventStore struct {
	saved []domainevents.DomainEvent
}

func (s *fakeEventStore) SaveEvents(_ context.Context, evs []domainevents.DomainEvent) error {
	s.saved = append(s.saved, evs...)
	return nil
}

func (s *fakeEventStore) GetEvents(_ context.Context, _ string) ([]domainevents.DomainEvent, error) {
	return s.saved, nil
}

func (s *fakeEventStore) GetEventsByType(_ context.Context, _ string, _ int) ([]domainevents.DomainEvent, error) {
	return s.saved, nil
}

type uuidIDs struct{}

func (uuidIDs) NewID() string { return uuid.New().String() }

type denyLimiter struct{}

func (denyLimiter) Allow(_ context.Context, _ string) (bool, error) { return false, nil }
func (denyLimiter) Reset(_ context.Context, _ string) error         { return nil }

type orchestratorFixture struct {
	orchestrator *InsightOrchestrator
	cache        *fakeCache
	generator    *fakeGenerator
	insights     *fakeInsightRepo
	logs         *fakeLogRepo
	events       *fakeEventStore
	cfg          *config.DomainConfig
}

func newOrchestratorFixture(limiter ratelimit.Limiter) *orchestratorFixture {
	cfg := config.DefaultDomainConfig()
	cache := newFakeCache()
	generator := &fakeGenerator{}
	insights := newFakeInsightRepo()
	logs := &fakeLogRepo{}
	eventStore := &fakeEventStore{}
	logger := zap.NewNop()

	metrics := observability.NewMetrics("test", nil, logger)
	cacheManager := NewInsightCacheManager(cache, cfg, metrics, logger)
	orchestrator := NewInsightOrchestrator(
		cacheManager,
		NewPromptBuilder(cfg.MaxPromptLength),
		generator,
		insights,
		logs,
		eventStore,
		uuidIDs{},
		limiter,
		nil,
		cfg,
		metrics,
		observability.NewTracer("test", false),
		logger,
	)

	return &orchestratorFixture{
		orchestrator: orchestrator,
		cache:        cache,
		generator:    generator,
		insights:     insights,
		logs:         logs,
		events:       eventStore,
		cfg:          cfg,
	}
}

func testChart() *entities.BirthChart {
	return &entities.BirthChart{
		ID:     "chart-123",
		UserID: "user-1",
		Bodies: []entities.CelestialBody{
			{Name: "Sun", Sign: "Leo", House: 10, Longitude: 132.5},
			{Name: "Moon", Sign: "Pisces", House: 5, Longitude: 340.1},
		},
	}
}

func dailyRequest() GenerationRequest {
	return GenerationRequest{
		UserID:        "user-1",
		InsightType:   valueobjects.InsightTypeDaily,
		Chart:         testChart(),
		ReferenceDate: time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestGetOrGenerateColdCache(t *testing.T) {
	f := newOrchestratorFixture(ratelimit.Unlimited{})

	result, err := f.orchestrator.GetOrGenerate(context.Background(), dailyRequest())
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	assert.NotEmpty(t, result.Content)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, "chart-123", result.Analysis.BirthChartID())
	assert.Equal(t, 1, f.generator.calls)
	assert.Equal(t, 1, f.insights.creates)

	// Write-through under the canonical dated key.
	cached, ok := f.cache.values["insight:daily:chart-123:2025-03-15"]
	require.True(t, ok)
	assert.Equal(t, result.Content, cached)

	// Outbox received the generated event.
	require.Len(t, f.events.saved, 1)
	assert.Equal(t, "insight.generated", f.events.saved[0].GetEventType())

	// Audit trail entry was appended.
	assert.Len(t, f.logs.entries, 1)
}

func TestGetOrGenerateWarmCacheSkipsGenerator(t *testing.T) {
	f := newOrchestratorFixture(ratelimit.Unlimited{})

	first, err := f.orchestrator.GetOrGenerate(context.Background(), dailyRequest())
	require.NoError(t, err)
	require.False(t, first.FromCache)

	second, err := f.orchestrator.GetOrGenerate(context.Background(), dailyRequest())
	require.NoError(t, err)

	assert.True(t, second.FromCache)
	assert.Equal(t, first.Content, second.Content)
	assert.Nil(t, second.Analysis)
	assert.Equal(t, 1, f.generator.calls, "warm cache must not touch the generator")
	assert.Equal(t, 1, f.insights.creates, "warm cache must not touch the repository")
}

func TestGetOrGenerateRetriesGeneratorOnce(t *testing.T) {
	f := newOrchestratorFixture(ratelimit.Unlimited{})
	f.generator.errs = []error{errors.New("upstream hiccup")}
	f.generator.responses = []string{"", "Recovered narrative."}

	result, err := f.orchestrator.GetOrGenerate(context.Background(), dailyRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, f.generator.calls)
	assert.Equal(t, "Recovered narrative.", result.Content)
}

func TestGetOrGenerateFailsAfterRetryBudget(t *testing.T) {
	f := newOrchestratorFixture(ratelimit.Unlimited{})
	f.generator.errs = []error{errors.New("down"), errors.New("still down")}

	_, err := f.orchestrator.GetOrGenerate(context.Background(), dailyRequest())
	require.Error(t, err)

	assert.True(t, pkgerrors.IsService(err))
	assert.Equal(t, 2, f.generator.calls, "one call plus one retry, then give up")
	assert.Empty(t, f.cache.values, "failed generation must not populate the cache")
}

func TestGetOrGenerateCacheReadErrorFallsThrough(t *testing.T) {
	f := newOrchestratorFixture(ratelimit.Unlimited{})
	f.cache.getErr = errors.New("connection refused")

	result, err := f.orchestrator.GetOrGenerate(context.Background(), dailyRequest())
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	assert.NotEmpty(t, result.Content)
	assert.Equal(t, 1, f.generator.calls)
	assert.Equal(t, 1, f.insights.creates, "generation proceeds when the cache backend is down")
}

func TestGetOrGenerateCacheWriteErrorIsSwallowed(t *testing.T) {
	f := newOrchestratorFixture(ratelimit.Unlimited{})
	f.cache.setErr = errors.New("connection refused")

	result, err := f.orchestrator.GetOrGenerate(context.Background(), dailyRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, result.Content)
	assert.Equal(t, 1, f.insights.creates, "insight is stored even when the cache write fails")
}

func TestGetOrGenerateRateLimited(t *testing.T) {
	f := newOrchestratorFixture(denyLimiter{})

	_, err := f.orchestrator.GetOrGenerate(context.Background(), dailyRequest())
	require.Error(t, err)

	assert.True(t, pkgerrors.IsRateLimit(err))
	assert.Zero(t, f.generator.calls, "rate limiting must precede the generator call")
}

func TestGetOrGeneratePersistenceErrorPropagates(t *testing.T) {
	f := newOrchestratorFixture(ratelimit.Unlimited{})
	f.insights.createErr = errors.New("table unavailable")

	_, err := f.orchestrator.GetOrGenerate(context.Background(), dailyRequest())
	require.Error(t, err)

	assert.Empty(t, f.cache.values, "a narrative that was not stored must not be cached")
	assert.Empty(t, f.events.saved)
}

func TestGetOrGenerateUpdatesExistingAnalysis(t *testing.T) {
	f := newOrchestratorFixture(ratelimit.Unlimited{})

	first, err := f.orchestrator.GetOrGenerate(context.Background(), dailyRequest())
	require.NoError(t, err)

	// Invalidate the cache so the next request regenerates.
	require.NoError(t, f.cache.Clear(context.Background()))
	f.generator.responses = []string{"Updated narrative."}
	f.generator.calls = 0

	second, err := f.orchestrator.GetOrGenerate(context.Background(), dailyRequest())
	require.NoError(t, err)

	require.NotNil(t, second.Analysis)
	assert.True(t, first.Analysis.ID().Equals(second.Analysis.ID()),
		"regeneration replaces the existing analysis under the same identity")
	assert.Equal(t, 1, f.insights.updates)
	assert.Equal(t, 1, f.insights.creates)
}

func TestGetOrGenerateEmptyContentIsServiceError(t *testing.T) {
	f := newOrchestratorFixture(ratelimit.Unlimited{})
	f.generator.responses = []string{"   \n\n  ", "  "}

	_, err := f.orchestrator.GetOrGenerate(context.Background(), dailyRequest())
	require.Error(t, err)

	assert.True(t, pkgerrors.IsService(err))
	assert.Empty(t, f.cache.values)
}

func TestGetOrGenerateValidation(t *testing.T) {
	f := newOrchestratorFixture(ratelimit.Unlimited{})

	_, err := f.orchestrator.GetOrGenerate(context.Background(), GenerationRequest{
		UserID:      "user-1",
		InsightType: valueobjects.InsightTypeDaily,
	})
	assert.True(t, pkgerrors.IsValidation(err), "missing chart is a validation failure")

	_, err = f.orchestrator.GetOrGenerate(context.Background(), GenerationRequest{
		InsightType: valueobjects.InsightTypeDaily,
		Chart:       testChart(),
	})
	assert.True(t, pkgerrors.IsValidation(err), "missing user is a validation failure")
}
