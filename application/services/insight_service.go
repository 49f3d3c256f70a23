package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"astroinsight/application/ports"
	"astroinsight/domain/analysis"
	"astroinsight/domain/config"
	"astroinsight/domain/core/aggregates"
	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/validators"
	"astroinsight/domain/core/valueobjects"
	"astroinsight/domain/events"
	"astroinsight/pkg/common"
	pkgerrors "astroinsight/pkg/errors"
	"astroinsight/pkg/observability"
)

// AnalyzeRequest names an insight to produce by identifiers. The service
// resolves them into the chart, transit, and theme data a generation needs.
type AnalyzeRequest struct {
	UserID        string
	ChartID       string
	InsightType   valueobjects.InsightType
	ThemeKey      string
	ReferenceDate time.Time
}

// InsightService is the facade the outer layers call. It resolves
// dependencies for generation requests, runs timing-window analysis, and
// answers read queries over stored analyses.
type InsightService struct {
	charts       ports.BirthChartRepository
	themes       ports.LifeThemeRepository
	insights     ports.InsightRepository
	ephemeris    ports.EphemerisClient
	orchestrator *InsightOrchestrator
	cacheManager *InsightCacheManager
	eventStore   ports.EventStore
	builder      *analysis.WindowBuilder
	validator    *validators.TransitValidator
	config       *config.DomainConfig
	metrics      *observability.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewInsightService creates the facade
func NewInsightService(
	charts ports.BirthChartRepository,
	themes ports.LifeThemeRepository,
	insights ports.InsightRepository,
	ephemeris ports.EphemerisClient,
	orchestrator *InsightOrchestrator,
	cacheManager *InsightCacheManager,
	eventStore ports.EventStore,
	cfg *config.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *InsightService {
	return &InsightService{
		charts:       charts,
		themes:       themes,
		insights:     insights,
		ephemeris:    ephemeris,
		orchestrator: orchestrator,
		cacheManager: cacheManager,
		eventStore:   eventStore,
		builder:      analysis.NewWindowBuilder(cfg),
		validator:    validators.NewTransitValidator(),
		config:       cfg,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// AnalyzeInsights produces the requested insight, resolving the chart and
// any kind-specific dependencies first. A missing chart is terminal.
func (s *InsightService) AnalyzeInsights(ctx context.Context, req AnalyzeRequest) (*GenerationResult, error) {
	if !req.InsightType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown insight type")
	}
	if req.ReferenceDate.IsZero() {
		req.ReferenceDate = s.now()
	}

	chart, err := s.charts.GetByID(ctx, req.ChartID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, "failed to load birth chart")
	}
	if chart == nil {
		return nil, pkgerrors.NewNotFoundError("birth chart")
	}

	generation := GenerationRequest{
		UserID:        req.UserID,
		InsightType:   req.InsightType,
		Chart:         chart,
		ReferenceDate: req.ReferenceDate,
	}

	switch req.InsightType {
	case valueobjects.InsightTypeDaily:
		generation.Transits, err = s.transitsFor(ctx, chart, req.ReferenceDate, 1)
	case valueobjects.InsightTypeWeekly:
		generation.Transits, err = s.transitsFor(ctx, chart, req.ReferenceDate, 7)
	case valueobjects.InsightTypeTransit:
		generation.Transit, err = s.dominantTransit(ctx, chart, req.ReferenceDate)
	case valueobjects.InsightTypeLifeTheme, valueobjects.InsightTypeThemeForecast:
		generation.Theme, err = s.themeFor(ctx, req.ChartID, req.ThemeKey)
		if err == nil && req.InsightType == valueobjects.InsightTypeThemeForecast {
			generation.Transits, err = s.transitsFor(ctx, chart, req.ReferenceDate, s.config.GroupingWindowDays)
		}
	}
	if err != nil {
		return nil, err
	}

	return s.orchestrator.GetOrGenerate(ctx, generation)
}

// GetTimingWindows runs the grouping/classification/scoring pipeline over
// the chart's upcoming transits and annotates the result against the
// reference date.
func (s *InsightService) GetTimingWindows(ctx context.Context, chartID string, horizonDays int, referenceDate time.Time) ([]*aggregates.TimingWindow, error) {
	if horizonDays <= 0 {
		return nil, pkgerrors.NewValidationError("horizon must be positive")
	}
	if referenceDate.IsZero() {
		referenceDate = s.now()
	}

	chart, err := s.charts.GetByID(ctx, chartID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, "failed to load birth chart")
	}
	if chart == nil {
		return nil, pkgerrors.NewNotFoundError("birth chart")
	}

	started := s.now()
	transits, err := s.transitsFor(ctx, chart, referenceDate, horizonDays)
	if err != nil {
		return nil, err
	}

	windows, err := s.builder.Build(transits, &referenceDate)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordWindowAnalysis(ctx, len(windows), s.now().Sub(started))
	s.recordWindowsComputed(ctx, chartID, len(windows), horizonDays)

	s.logger.Info("timing windows computed",
		zap.String("birth_chart_id", chartID),
		zap.Int("transits", len(transits)),
		zap.Int("windows", len(windows)),
		zap.Int("horizon_days", horizonDays))

	return windows, nil
}

// GetByID loads one stored analysis
func (s *InsightService) GetByID(ctx context.Context, id string) (*entities.InsightAnalysis, error) {
	insightID, err := valueobjects.NewInsightIDFromString(id)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid insight ID")
	}

	found, err := s.insights.GetByID(ctx, insightID)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, pkgerrors.NewNotFoundError("insight")
	}
	return found, nil
}

// GetByUser lists a user's analyses, newest first, paginated in memory
func (s *InsightService) GetByUser(ctx context.Context, userID string, page common.PaginationParams) ([]*entities.InsightAnalysis, *common.PaginationInfo, error) {
	if userID == "" {
		return nil, nil, pkgerrors.NewValidationError("user ID cannot be empty")
	}

	all, err := s.insights.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	page = page.Normalize()
	sort.SliceStable(all, func(i, j int) bool {
		if page.Order == "asc" {
			return all[i].CreatedAt().Before(all[j].CreatedAt())
		}
		return all[i].CreatedAt().After(all[j].CreatedAt())
	})

	meta := common.BuildPaginationMeta(page.Page, page.PageSize, len(all))
	start := page.Offset()
	if start >= len(all) {
		return []*entities.InsightAnalysis{}, meta, nil
	}
	end := start + page.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], meta, nil
}

// GetByType returns the latest analysis of one kind for a chart
func (s *InsightService) GetByType(ctx context.Context, chartID string, insightType valueobjects.InsightType) (*entities.InsightAnalysis, error) {
	if !insightType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown insight type")
	}

	found, err := s.insights.GetByChartAndType(ctx, chartID, insightType)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, pkgerrors.NewNotFoundError("insight")
	}
	return found, nil
}

// GetByCategory filters the materialized insight lists of a chart's
// analyses by category, in memory.
func (s *InsightService) GetByCategory(ctx context.Context, chartID, category string) ([]entities.Insight, error) {
	analyses, err := s.insights.GetByChartID(ctx, chartID)
	if err != nil {
		return nil, err
	}

	out := make([]entities.Insight, 0)
	for _, a := range analyses {
		out = append(out, a.InsightsByCategory(category)...)
	}
	return out, nil
}

// GetByDateRange filters a chart's insights to those overlapping the range
func (s *InsightService) GetByDateRange(ctx context.Context, chartID string, from, until time.Time) ([]entities.Insight, error) {
	r, err := valueobjects.NewDateRange(from, until)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	analyses, err := s.insights.GetByChartID(ctx, chartID)
	if err != nil {
		return nil, err
	}

	out := make([]entities.Insight, 0)
	for _, a := range analyses {
		out = append(out, a.InsightsInRange(r)...)
	}
	return out, nil
}

// InvalidateInsights drops every cached insight for a chart and records the
// invalidation event. Stored analyses and logs are untouched; the next read
// regenerates from them.
func (s *InsightService) InvalidateInsights(ctx context.Context, chartID, reason string) error {
	if chartID == "" {
		return pkgerrors.NewValidationError("birth chart ID cannot be empty")
	}

	s.cacheManager.InvalidateAll(ctx, chartID, s.themeKeysFor(ctx, chartID), s.now())
	s.recordInvalidated(ctx, chartID, reason)
	return nil
}

// UpdateAnalysis regenerates the analysis of one kind for a chart. Stored
// history is append-only: the analysis record is replaced, a fresh log
// entry is written, and every cached kind for the chart is invalidated.
func (s *InsightService) UpdateAnalysis(ctx context.Context, req AnalyzeRequest) (*GenerationResult, error) {
	if req.ReferenceDate.IsZero() {
		req.ReferenceDate = s.now()
	}

	s.cacheManager.InvalidateAll(ctx, req.ChartID, s.themeKeysFor(ctx, req.ChartID), req.ReferenceDate)
	s.recordInvalidated(ctx, req.ChartID, "analysis update requested")

	return s.AnalyzeInsights(ctx, req)
}

func (s *InsightService) transitsFor(ctx context.Context, chart *entities.BirthChart, from time.Time, days int) ([]entities.Transit, error) {
	until := from.Add(time.Duration(days) * 24 * time.Hour)
	transits, err := s.ephemeris.CalculateTransits(ctx, chart, from, until)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateBatch(transits); err != nil {
		return nil, err
	}
	return transits, nil
}

// dominantTransit picks the tightest-orb transit in the upcoming grouping
// window as the subject of a transit insight.
func (s *InsightService) dominantTransit(ctx context.Context, chart *entities.BirthChart, ref time.Time) (*entities.Transit, error) {
	transits, err := s.transitsFor(ctx, chart, ref, s.config.GroupingWindowDays)
	if err != nil {
		return nil, err
	}
	if len(transits) == 0 {
		return nil, pkgerrors.NewNotFoundError("upcoming transit")
	}

	best := 0
	for i := range transits {
		if abs(transits[i].Orb) < abs(transits[best].Orb) {
			best = i
		}
	}
	return &transits[best], nil
}

func (s *InsightService) themeFor(ctx context.Context, chartID, key string) (*entities.LifeTheme, error) {
	if key == "" {
		return nil, pkgerrors.NewValidationError("theme insight requires a theme key")
	}

	theme, err := s.themes.GetByKey(ctx, chartID, key)
	if err != nil {
		return nil, err
	}
	if theme == nil {
		return nil, pkgerrors.NewNotFoundError("life theme")
	}
	return theme, nil
}

// themeKeysFor lists the chart's theme keys so theme-scoped cache entries
// can be invalidated too. Lookup failures degrade to chart-level
// invalidation only, matching the cache layer's never-propagate policy.
func (s *InsightService) themeKeysFor(ctx context.Context, chartID string) []string {
	themes, err := s.themes.GetByChartID(ctx, chartID)
	if err != nil {
		s.logger.Warn("could not list themes for invalidation",
			zap.String("birth_chart_id", chartID), zap.Error(err))
		return nil
	}

	keys := make([]string, 0, len(themes))
	for _, theme := range themes {
		keys = append(keys, theme.Key)
	}
	return keys
}

func (s *InsightService) recordWindowsComputed(ctx context.Context, chartID string, count, horizonDays int) {
	event := events.NewTimingWindowsComputed(chartID, count, horizonDays, s.now())
	if err := s.eventStore.SaveEvents(ctx, []events.DomainEvent{event}); err != nil {
		s.logger.Warn("could not record windows computed event",
			zap.String("birth_chart_id", chartID), zap.Error(err))
	}
}

func (s *InsightService) recordInvalidated(ctx context.Context, chartID, reason string) {
	event := events.NewInsightsInvalidated(chartID, reason, s.now())
	if err := s.eventStore.SaveEvents(ctx, []events.DomainEvent{event}); err != nil {
		s.logger.Warn("could not record invalidation event",
			zap.String("birth_chart_id", chartID), zap.Error(err))
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
