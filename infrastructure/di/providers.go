package di

import (
	"context"
	"fmt"
	"time"

	"astroinsight/application/commands"
	"astroinsight/application/commands/bus"
	commandhandlers "astroinsight/application/commands/handlers"
	"astroinsight/application/ports"
	"astroinsight/application/queries"
	querybus "astroinsight/application/queries/bus"
	queryhandlers "astroinsight/application/queries/handlers"
	"astroinsight/application/services"
	domaincfg "astroinsight/domain/config"
	"astroinsight/infrastructure/cache"
	"astroinsight/infrastructure/config"
	"astroinsight/infrastructure/ephemeris"
	"astroinsight/infrastructure/generation"
	"astroinsight/infrastructure/messaging/eventbridge"
	dynamodbstore "astroinsight/infrastructure/persistence/dynamodb"
	"astroinsight/pkg/observability"
	"astroinsight/pkg/ratelimit"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	DomainConfig    *domaincfg.DomainConfig
	Logger          *zap.Logger
	Cache           ports.Cache
	Insights        ports.InsightRepository
	Charts          ports.BirthChartRepository
	Themes          ports.LifeThemeRepository
	Logs            ports.InsightLogRepository
	EventStore      ports.EventStore
	EventPublisher  ports.EventPublisher
	InsightService  *services.InsightService
	Orchestrator    *services.InsightOrchestrator
	CommandBus      *bus.CommandBus
	QueryBus        *querybus.QueryBus
	OutboxProcessor *dynamodbstore.OutboxProcessor
	Metrics         *observability.Metrics
	RateLimiter     ratelimit.Limiter
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDomainConfig builds the domain tunables for the environment,
// including the optional YAML overlay.
func ProvideDomainConfig(cfg *config.Config) (*domaincfg.DomainConfig, error) {
	return config.LoadDomainConfig(cfg)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideCache selects the cache backend from configuration
func ProvideCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.Cache, error) {
	if cfg.CacheBackend == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("using redis cache", zap.String("addr", cfg.RedisAddr))
		return redisCache, nil
	}
	logger.Info("using in-memory cache")
	return cache.NewMemoryCache(), nil
}

// ProvideInsightRepository creates the insight repository
func ProvideInsightRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.InsightRepository {
	return dynamodbstore.NewInsightRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideInsightLogRepository creates the generation log repository
func ProvideInsightLogRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.InsightLogRepository {
	return dynamodbstore.NewInsightLogRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideBirthChartRepository creates the birth chart repository
func ProvideBirthChartRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.BirthChartRepository {
	return dynamodbstore.NewBirthChartRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideLifeThemeRepository creates the life theme repository
func ProvideLifeThemeRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.LifeThemeRepository {
	return dynamodbstore.NewLifeThemeRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideEventStore creates the event store
func ProvideEventStore(client *awsdynamodb.Client, cfg *config.Config) *dynamodbstore.EventStore {
	return dynamodbstore.NewEventStore(client, cfg.DynamoDBTable)
}

// ProvideEventStorePort exposes the event store through its port
func ProvideEventStorePort(store *dynamodbstore.EventStore) ports.EventStore {
	return store
}

// ProvideEventPublisher creates an EventBridge publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideGenerationLock creates the single-flight generation lock
func ProvideGenerationLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.GenerationLock {
	return dynamodbstore.NewGenerationLock(client, cfg.DynamoDBTable, logger)
}

// ProvideEphemerisClient creates the calculation service client
func ProvideEphemerisClient(cfg *config.Config, logger *zap.Logger) ports.EphemerisClient {
	timeout := time.Duration(cfg.RequestTimeoutMs) * time.Millisecond
	return ephemeris.NewClient(cfg.EphemerisURL, timeout, logger)
}

// ProvideInsightGenerator selects the narrative generator backend
func ProvideInsightGenerator(cfg *config.Config, logger *zap.Logger) ports.InsightGenerator {
	if cfg.GeneratorBackend == "http" {
		timeout := time.Duration(cfg.GeneratorTimeoutMs) * time.Millisecond
		return generation.NewHTTPGenerator(cfg.GeneratorURL, cfg.GeneratorAPIKey, cfg.GeneratorModel, timeout, logger)
	}
	return generation.NewStaticGenerator()
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("AstroInsight/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideTracer creates the tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("astroinsight", cfg.EnableTracing)
}

// ProvideRateLimiter creates a per-user token bucket over the hourly budget
func ProvideRateLimiter(domainCfg *domaincfg.DomainConfig) ratelimit.Limiter {
	if domainCfg.GenerationsPerHour <= 0 {
		return ratelimit.Unlimited{}
	}
	refill := time.Hour / time.Duration(domainCfg.GenerationsPerHour)
	return ratelimit.NewTokenBucketLimiter(domainCfg.GenerationsPerHour, refill)
}

// ProvideIDGenerator creates the UUID-based identifier source
func ProvideIDGenerator() ports.IDGenerator {
	return uuidGenerator{}
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.New().String() }

// ProvidePromptBuilder creates the prompt builder
func ProvidePromptBuilder(domainCfg *domaincfg.DomainConfig) *services.PromptBuilder {
	return services.NewPromptBuilder(domainCfg.MaxPromptLength)
}

// ProvideCacheManager creates the insight cache manager
func ProvideCacheManager(
	c ports.Cache,
	domainCfg *domaincfg.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.InsightCacheManager {
	return services.NewInsightCacheManager(c, domainCfg, metrics, logger)
}

// ProvideOrchestrator creates the cache-first generation orchestrator
func ProvideOrchestrator(
	cacheManager *services.InsightCacheManager,
	prompts *services.PromptBuilder,
	generator ports.InsightGenerator,
	insights ports.InsightRepository,
	logs ports.InsightLogRepository,
	eventStore ports.EventStore,
	ids ports.IDGenerator,
	limiter ratelimit.Limiter,
	lock ports.GenerationLock,
	domainCfg *domaincfg.DomainConfig,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *services.InsightOrchestrator {
	return services.NewInsightOrchestrator(
		cacheManager, prompts, generator, insights, logs, eventStore,
		ids, limiter, lock, domainCfg, metrics, tracer, logger,
	)
}

// ProvideInsightService creates the service facade
func ProvideInsightService(
	charts ports.BirthChartRepository,
	themes ports.LifeThemeRepository,
	insights ports.InsightRepository,
	ephemerisClient ports.EphemerisClient,
	orchestrator *services.InsightOrchestrator,
	cacheManager *services.InsightCacheManager,
	eventStore ports.EventStore,
	domainCfg *domaincfg.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.InsightService {
	return services.NewInsightService(
		charts, themes, insights, ephemerisClient, orchestrator,
		cacheManager, eventStore, domainCfg, metrics, logger,
	)
}

// ProvideOutboxProcessor creates the outbox relay worker
func ProvideOutboxProcessor(
	eventStore *dynamodbstore.EventStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *dynamodbstore.OutboxProcessor {
	return dynamodbstore.NewOutboxProcessor(eventStore, publisher, logger)
}

// busLogger adapts a sugared zap logger to the bus logging interfaces
type busLogger struct {
	sugar *zap.SugaredLogger
}

func (l busLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l busLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(service *services.InsightService, logger *zap.Logger) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()
	pipeline := bus.NewPipeline(bus.LoggingMiddleware(busLogger{sugar: logger.Sugar()}))

	if err := commandBus.Register(commands.GenerateInsightCommand{}, pipeline.Execute(commandhandlers.NewGenerateInsightHandler(service))); err != nil {
		return nil, err
	}
	if err := commandBus.Register(commands.InvalidateInsightsCommand{}, pipeline.Execute(commandhandlers.NewInvalidateInsightsHandler(service))); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(service *services.InsightService, logger *zap.Logger) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	logging := querybus.LoggingMiddleware(busLogger{sugar: logger.Sugar()})

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetInsightQuery{}, queryhandlers.NewGetInsightHandler(service)},
		{queries.GetInsightByTypeQuery{}, queryhandlers.NewGetInsightByTypeHandler(service)},
		{queries.ListInsightsQuery{}, queryhandlers.NewListInsightsHandler(service)},
		{queries.FilterInsightsQuery{}, queryhandlers.NewFilterInsightsHandler(service)},
		{queries.GetTimingWindowsQuery{}, queryhandlers.NewGetTimingWindowsHandler(service)},
	}
	for _, r := range registrations {
		if err := queryBus.Register(r.query, logging(r.handler)); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}
