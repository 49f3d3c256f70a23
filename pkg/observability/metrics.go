package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics emits application metrics to CloudWatch. A nil client turns every
// recorder into a no-op, so tests and local runs need no AWS credentials.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordCacheAccess records a cache hit or miss for an insight kind
func (m *Metrics) RecordCacheAccess(ctx context.Context, insightType string, hit bool) {
	if m == nil || m.client == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}

	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("InsightCacheAccess"),
		Dimensions: []types.Dimension{
			{Name: aws.String("InsightType"), Value: aws.String(insightType)},
			{Name: aws.String("Result"), Value: aws.String(result)},
		},
		Value:     aws.Float64(1),
		Unit:      types.StandardUnitCount,
		Timestamp: aws.Time(time.Now()),
	})
}

// RecordGeneration records the latency and outcome of a generator call
func (m *Metrics) RecordGeneration(ctx context.Context, insightType string, duration time.Duration, err error) {
	if m == nil || m.client == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}

	m.put(ctx,
		types.MetricDatum{
			MetricName: aws.String("InsightGenerationLatency"),
			Dimensions: []types.Dimension{
				{Name: aws.String("InsightType"), Value: aws.String(insightType)},
				{Name: aws.String("Status"), Value: aws.String(status)},
			},
			Value:     aws.Float64(float64(duration.Milliseconds())),
			Unit:      types.StandardUnitMilliseconds,
			Timestamp: aws.Time(time.Now()),
		},
		types.MetricDatum{
			MetricName: aws.String("InsightGenerationCount"),
			Dimensions: []types.Dimension{
				{Name: aws.String("InsightType"), Value: aws.String(insightType)},
				{Name: aws.String("Status"), Value: aws.String(status)},
			},
			Value:     aws.Float64(1),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(time.Now()),
		},
	)
}

// RecordWindowAnalysis records how many timing windows an analysis produced
func (m *Metrics) RecordWindowAnalysis(ctx context.Context, windowCount int, duration time.Duration) {
	if m == nil || m.client == nil {
		return
	}

	m.put(ctx,
		types.MetricDatum{
			MetricName: aws.String("TimingWindowCount"),
			Value:      aws.Float64(float64(windowCount)),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(time.Now()),
		},
		types.MetricDatum{
			MetricName: aws.String("WindowAnalysisLatency"),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  aws.Time(time.Now()),
		},
	)
}

// put ships metric data, logging failures instead of surfacing them.
// Metrics must never fail a request.
func (m *Metrics) put(ctx context.Context, data ...types.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil && m.logger != nil {
		m.logger.Warn("failed to publish metrics", zap.Error(err))
	}
}
