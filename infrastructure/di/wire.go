//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"astroinsight/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideCache,
	ProvideInsightRepository,
	ProvideInsightLogRepository,
	ProvideBirthChartRepository,
	ProvideLifeThemeRepository,
	ProvideEventStore,
	ProvideEventStorePort,
	ProvideEventPublisher,
	ProvideGenerationLock,
	ProvideEphemerisClient,
	ProvideInsightGenerator,
	ProvideMetrics,
	ProvideTracer,
	ProvideRateLimiter,
	ProvideIDGenerator,
	ProvidePromptBuilder,
	ProvideCacheManager,
	ProvideOrchestrator,
	ProvideInsightService,
	ProvideOutboxProcessor,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
