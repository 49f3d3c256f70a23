package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"astroinsight/application/ports"
	"astroinsight/domain/config"
	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
	"astroinsight/domain/events"
	pkgerrors "astroinsight/pkg/errors"
	"astroinsight/pkg/observability"
	"astroinsight/pkg/ratelimit"
	"astroinsight/pkg/retry"
	"astroinsight/pkg/text"
	"astroinsight/pkg/utils"
)

// GenerationResult is what GetOrGenerate hands back: the narrative plus
// where it came from. Analysis is nil on a cache hit; the persisted record
// already exists and hits skip the repository entirely.
type GenerationResult struct {
	Content   string
	FromCache bool
	Analysis  *entities.InsightAnalysis
}

// InsightOrchestrator drives the cache-first generation flow:
// cache lookup, prompt build, generator call with one retry, persistence,
// cache write-through. Persistence failures propagate; cache failures never
// do.
type InsightOrchestrator struct {
	cacheManager *InsightCacheManager
	prompts      *PromptBuilder
	generator    ports.InsightGenerator
	insights     ports.InsightRepository
	logs         ports.InsightLogRepository
	eventStore   ports.EventStore
	ids          ports.IDGenerator
	limiter      ratelimit.Limiter
	lock         ports.GenerationLock
	config       *config.DomainConfig
	metrics      *observability.Metrics
	tracer       *observability.Tracer
	logger       *zap.Logger
	now          func() time.Time
}

// NewInsightOrchestrator wires the generation flow. lock may be nil; it is
// only consulted when single-flight is enabled in the domain config.
func NewInsightOrchestrator(
	cacheManager *InsightCacheManager,
	prompts *PromptBuilder,
	generator ports.InsightGenerator,
	insights ports.InsightRepository,
	logs ports.InsightLogRepository,
	eventStore ports.EventStore,
	ids ports.IDGenerator,
	limiter ratelimit.Limiter,
	lock ports.GenerationLock,
	cfg *config.DomainConfig,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *InsightOrchestrator {
	return &InsightOrchestrator{
		cacheManager: cacheManager,
		prompts:      prompts,
		generator:    generator,
		insights:     insights,
		logs:         logs,
		eventStore:   eventStore,
		ids:          ids,
		limiter:      limiter,
		lock:         lock,
		config:       cfg,
		metrics:      metrics,
		tracer:       tracer,
		logger:       logger,
		now:          time.Now,
	}
}

// GetOrGenerate returns the insight for a request, from cache when possible.
// On a miss it generates, persists, and writes through the cache.
func (o *InsightOrchestrator) GetOrGenerate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	if req.Chart == nil {
		return nil, pkgerrors.NewValidationError("generation request has no birth chart")
	}
	if req.UserID == "" {
		return nil, pkgerrors.NewValidationError("generation request has no user")
	}
	if req.ReferenceDate.IsZero() {
		req.ReferenceDate = o.now()
	}

	key, err := valueobjects.NewCacheKey(req.InsightType, req.EntityID(), req.ReferenceDate)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if content, ok := o.cacheManager.Lookup(ctx, key); ok {
		o.logger.Debug("insight served from cache", zap.String("key", key.String()))
		return &GenerationResult{Content: content, FromCache: true}, nil
	}

	if o.config.EnableSingleFlight && o.lock != nil {
		release, err := o.lock.Acquire(ctx, key.String(), o.config.GeneratorTimeout)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(ctx); err != nil {
				o.logger.Warn("generation lock release failed",
					zap.String("key", key.String()), zap.Error(err))
			}
		}()

		// Another flight may have filled the cache while we waited.
		if content, ok := o.cacheManager.Lookup(ctx, key); ok {
			return &GenerationResult{Content: content, FromCache: true}, nil
		}
	}

	allowed, err := o.limiter.Allow(ctx, req.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "rate limiter check failed")
	}
	if !allowed {
		return nil, pkgerrors.NewRateLimitError(o.config.GenerationsPerHour, "hour")
	}

	var result *GenerationResult
	err = o.tracer.Trace(ctx, "insight.generate", func(ctx context.Context) error {
		var genErr error
		result, genErr = o.generate(ctx, req, key)
		return genErr
	})
	return result, err
}

func (o *InsightOrchestrator) generate(ctx context.Context, req GenerationRequest, key valueobjects.CacheKey) (*GenerationResult, error) {
	prompt, err := o.prompts.Build(req)
	if err != nil {
		return nil, err
	}
	prompt = text.Sanitize(prompt)

	started := o.now()
	content, err := o.callGenerator(ctx, prompt)
	o.metrics.RecordGeneration(ctx, req.InsightType.String(), o.now().Sub(started), err)
	if err != nil {
		o.logger.Error("insight generation failed",
			zap.String("insight_type", req.InsightType.String()),
			zap.String("birth_chart_id", req.Chart.ID),
			zap.Error(err))
		return nil, pkgerrors.NewServiceError("insight generator", err)
	}

	content = text.Sanitize(content)
	if content == "" {
		return nil, pkgerrors.NewServiceError("insight generator", errors.New("empty content returned"))
	}

	analysis, err := o.persist(ctx, req, content)
	if err != nil {
		return nil, err
	}

	o.appendLog(ctx, req, content)
	o.cacheManager.Store(ctx, key, content)
	o.recordEvent(ctx, analysis, key)

	o.logger.Info("insight generated",
		zap.String("insight_id", analysis.ID().String()),
		zap.String("insight_type", req.InsightType.String()),
		zap.String("birth_chart_id", req.Chart.ID))

	return &GenerationResult{Content: content, Analysis: analysis}, nil
}

// callGenerator invokes the generator under the configured timeout with a
// single retry. Only generator failures are retried; context cancellation
// and validation problems abort immediately.
func (o *InsightOrchestrator) callGenerator(ctx context.Context, prompt string) (string, error) {
	policy := retry.Policy{
		MaxAttempts: o.config.GeneratorAttempts,
		RetryIf: func(err error) bool {
			return !pkgerrors.IsValidation(err) && !pkgerrors.IsRateLimit(err)
		},
	}

	return retry.DoValue(ctx, policy, func(ctx context.Context) (string, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, o.config.GeneratorTimeout)
		defer cancel()
		return o.generator.GenerateInsight(attemptCtx, prompt)
	})
}

// persist stores the narrative, replacing the prior analysis of the same
// kind when one exists. Failures here propagate: an uncacheable insight is
// acceptable, an unstored one is not.
func (o *InsightOrchestrator) persist(ctx context.Context, req GenerationRequest, content string) (*entities.InsightAnalysis, error) {
	existing, err := o.insights.GetByChartAndType(ctx, req.Chart.ID, req.InsightType)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return nil, err
	}

	now := o.now()
	if existing != nil {
		if err := existing.ReplaceContent(content, "", nil, now); err != nil {
			return nil, err
		}
		if err := o.insights.Update(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to update insight analysis")
		}
		return existing, nil
	}

	id, err := valueobjects.NewInsightIDFromString(o.ids.NewID())
	if err != nil {
		return nil, pkgerrors.NewInternalError("id generator produced an invalid insight ID")
	}

	analysis, err := entities.NewInsightAnalysis(
		id, req.Chart.ID, req.UserID, req.InsightType, content, "", nil, now)
	if err != nil {
		return nil, err
	}

	if err := o.insights.Create(ctx, analysis); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to store insight analysis")
	}
	return analysis, nil
}

// appendLog writes the audit trail entry. The narrative is already stored;
// a lost log line is logged and tolerated.
func (o *InsightOrchestrator) appendLog(ctx context.Context, req GenerationRequest, content string) {
	metadata := o.buildMetadata(req)

	log, err := entities.NewInsightLog(
		o.ids.NewID(), req.UserID, req.InsightType, content, o.now(), metadata)
	if err != nil {
		o.logger.Warn("could not build insight log entry", zap.Error(err))
		return
	}

	if err := o.logs.Append(ctx, log); err != nil {
		o.logger.Warn("could not append insight log entry",
			zap.String("log_id", log.ID()), zap.Error(err))
	}
}

func (o *InsightOrchestrator) buildMetadata(req GenerationRequest) entities.LogMetadata {
	switch req.InsightType {
	case valueobjects.InsightTypeTransit:
		t := req.Transit
		return entities.LogMetadata{
			Kind: entities.MetadataKindTransit,
			Transit: &entities.TransitMetadata{
				Planet:        t.Planet,
				Sign:          t.Sign,
				House:         t.House,
				Orb:           t.Orb,
				Aspect:        string(t.AspectType),
				FocusArea:     t.AspectingNatal,
				TriggerSource: "transit_analysis",
			},
		}

	case valueobjects.InsightTypeLifeTheme, valueobjects.InsightTypeThemeForecast:
		return entities.LogMetadata{
			Kind: entities.MetadataKindTheme,
			Theme: &entities.ThemeMetadata{
				LifeThemeKey: req.Theme.Key,
				LifeArea:     req.Theme.LifeArea,
			},
		}

	case valueobjects.InsightTypeDaily, valueobjects.InsightTypeWeekly:
		daily := &entities.DailyMetadata{Date: utils.DateBucket(req.ReferenceDate)}
		for _, t := range req.Transits {
			daily.KeyTransits = append(daily.KeyTransits, entities.KeyTransitSnapshot{
				Planet: t.Planet,
				Aspect: string(t.AspectType),
				Orb:    t.Orb,
			})
		}
		return entities.LogMetadata{Kind: entities.MetadataKindDaily, Daily: daily}

	case valueobjects.InsightTypeNodePath:
		return entities.LogMetadata{
			Kind: entities.MetadataKindNodePath,
			NodePath: &entities.NodePathMetadata{
				NorthNode: snapshotOf(req.Chart, "North Node"),
				SouthNode: snapshotOf(req.Chart, "South Node"),
			},
		}

	default:
		return entities.LogMetadata{
			Kind: entities.MetadataKindNatal,
			Natal: &entities.NatalMetadata{
				Sun:       snapshotOf(req.Chart, "Sun"),
				Moon:      snapshotOf(req.Chart, "Moon"),
				Ascendant: snapshotOf(req.Chart, "Ascendant"),
			},
		}
	}
}

// recordEvent stages an InsightGenerated event in the outbox. The insight
// is already durable; a failed event write is logged and tolerated.
func (o *InsightOrchestrator) recordEvent(ctx context.Context, analysis *entities.InsightAnalysis, key valueobjects.CacheKey) {
	event := events.NewInsightGenerated(
		analysis.ID(), analysis.BirthChartID(), analysis.UserID(),
		analysis.Type(), key.String(), o.now())

	if err := o.eventStore.SaveEvents(ctx, []events.DomainEvent{event}); err != nil {
		o.logger.Warn("could not record insight generated event",
			zap.String("insight_id", analysis.ID().String()), zap.Error(err))
	}
}

func snapshotOf(chart *entities.BirthChart, body string) entities.PlacementSnapshot {
	placed := chart.Body(body)
	if placed == nil {
		return entities.PlacementSnapshot{Body: body}
	}

	snapshot := entities.PlacementSnapshot{
		Body:  body,
		Sign:  placed.Sign,
		House: placed.House,
	}
	for _, a := range chart.AspectsOf(body) {
		other := a.Body1
		if other == body {
			other = a.Body2
		}
		snapshot.Aspects = append(snapshot.Aspects, fmt.Sprintf("%s %s", a.Type, other))
	}
	return snapshot
}
