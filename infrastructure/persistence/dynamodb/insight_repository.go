package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"astroinsight/application/ports"
	"astroinsight/domain/core/entities"
	"astroinsight/domain/core/valueobjects"
	pkgerrors "astroinsight/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// InsightRepository implements ports.InsightRepository on DynamoDB.
// One item per (chart, kind): PK = CHART#<chartID>, SK = INSIGHT#<type>.
// GSI1 serves user listings, GSI2 serves direct ID lookups.
type InsightRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewInsightRepository creates a new InsightRepository
func NewInsightRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.InsightRepository {
	return &InsightRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// insightItem is the DynamoDB item shape for one analysis
type insightItem struct {
	PK             string           `dynamodbav:"PK"`
	SK             string           `dynamodbav:"SK"`
	GSI1PK         string           `dynamodbav:"GSI1PK"`
	GSI1SK         string           `dynamodbav:"GSI1SK"`
	GSI2PK         string           `dynamodbav:"GSI2PK"`
	GSI2SK         string           `dynamodbav:"GSI2SK"`
	EntityType     string           `dynamodbav:"EntityType"`
	InsightID      string           `dynamodbav:"InsightID"`
	BirthChartID   string           `dynamodbav:"BirthChartID"`
	UserID         string           `dynamodbav:"UserID"`
	InsightType    string           `dynamodbav:"InsightType"`
	Content        string           `dynamodbav:"Content"`
	OverallSummary string           `dynamodbav:"OverallSummary,omitempty"`
	Insights       []subInsightItem `dynamodbav:"Insights,omitempty"`
	CreatedAt      string           `dynamodbav:"CreatedAt"`
	UpdatedAt      string           `dynamodbav:"UpdatedAt"`
}

// subInsightItem is one materialized insight within an analysis
type subInsightItem struct {
	ID        string `dynamodbav:"ID"`
	Category  string `dynamodbav:"Category"`
	Title     string `dynamodbav:"Title"`
	Content   string `dynamodbav:"Content"`
	StartDate string `dynamodbav:"StartDate,omitempty"`
	EndDate   string `dynamodbav:"EndDate,omitempty"`
	CreatedAt string `dynamodbav:"CreatedAt"`
}

// Create persists a new analysis, refusing to overwrite an existing item
func (r *InsightRepository) Create(ctx context.Context, analysis *entities.InsightAnalysis) error {
	av, err := attributevalue.MarshalMap(r.toItem(analysis))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal insight", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewConflictError(
				fmt.Sprintf("insight already exists for chart %s type %s",
					analysis.BirthChartID(), analysis.Type()))
		}
		return pkgerrors.NewDatabaseError("create insight", err)
	}

	r.logger.Debug("insight created",
		zap.String("insight_id", analysis.ID().String()),
		zap.String("birth_chart_id", analysis.BirthChartID()),
		zap.String("insight_type", analysis.Type().String()))

	return nil
}

// Update replaces the stored item for an existing analysis
func (r *InsightRepository) Update(ctx context.Context, analysis *entities.InsightAnalysis) error {
	av, err := attributevalue.MarshalMap(r.toItem(analysis))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal insight", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewNotFoundError("insight")
		}
		return pkgerrors.NewDatabaseError("update insight", err)
	}

	return nil
}

// GetByID retrieves an analysis via the ID index
func (r *InsightRepository) GetByID(ctx context.Context, id valueobjects.InsightID) (*entities.InsightAnalysis, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI2"),
		KeyConditionExpression: aws.String("GSI2PK = :pk AND GSI2SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "INSIGHTID#" + id.String()},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query insight by ID", err)
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("insight")
	}

	return r.fromAttributes(result.Items[0])
}

// GetByChartID retrieves all analyses for a chart, newest first
func (r *InsightRepository) GetByChartID(ctx context.Context, chartID string) ([]*entities.InsightAnalysis, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "CHART#" + chartID},
			":sk": &types.AttributeValueMemberS{Value: "INSIGHT#"},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query insights by chart", err)
	}

	return r.collect(result.Items, true)
}

// GetByChartAndType retrieves the latest analysis of one kind, nil when
// none exists
func (r *InsightRepository) GetByChartAndType(ctx context.Context, chartID string, insightType valueobjects.InsightType) (*entities.InsightAnalysis, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "CHART#" + chartID},
			"SK": &types.AttributeValueMemberS{Value: "INSIGHT#" + insightType.String()},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get insight by chart and type", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	return r.fromAttributes(result.Item)
}

// GetByUserID retrieves all analyses owned by a user via GSI1, newest first
func (r *InsightRepository) GetByUserID(ctx context.Context, userID string) ([]*entities.InsightAnalysis, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "USER#" + userID},
			":sk": &types.AttributeValueMemberS{Value: "INSIGHT#"},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query insights by user", err)
	}

	return r.collect(result.Items, false)
}

// List retrieves analyses matching the criteria. Filtering beyond the key
// shape happens in memory over the queried partition.
func (r *InsightRepository) List(ctx context.Context, criteria ports.ListCriteria) ([]*entities.InsightAnalysis, error) {
	var analyses []*entities.InsightAnalysis
	var err error

	switch {
	case criteria.ChartID != "":
		analyses, err = r.GetByChartID(ctx, criteria.ChartID)
	case criteria.UserID != "":
		analyses, err = r.GetByUserID(ctx, criteria.UserID)
	default:
		return nil, pkgerrors.NewValidationError("list criteria need a user or chart ID")
	}
	if err != nil {
		return nil, err
	}

	filtered := analyses[:0]
	for _, a := range analyses {
		if criteria.InsightType != "" && a.Type() != criteria.InsightType {
			continue
		}
		if criteria.From != nil && a.CreatedAt().Before(*criteria.From) {
			continue
		}
		if criteria.To != nil && !a.CreatedAt().Before(*criteria.To) {
			continue
		}
		filtered = append(filtered, a)
	}

	if criteria.Offset > 0 {
		if criteria.Offset >= len(filtered) {
			return []*entities.InsightAnalysis{}, nil
		}
		filtered = filtered[criteria.Offset:]
	}
	if criteria.Limit > 0 && len(filtered) > criteria.Limit {
		filtered = filtered[:criteria.Limit]
	}
	return filtered, nil
}

// Delete removes an analysis
func (r *InsightRepository) Delete(ctx context.Context, id valueobjects.InsightID) error {
	analysis, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "CHART#" + analysis.BirthChartID()},
			"SK": &types.AttributeValueMemberS{Value: "INSIGHT#" + analysis.Type().String()},
		},
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("delete insight", err)
	}
	return nil
}

func (r *InsightRepository) toItem(analysis *entities.InsightAnalysis) insightItem {
	item := insightItem{
		PK:             "CHART#" + analysis.BirthChartID(),
		SK:             "INSIGHT#" + analysis.Type().String(),
		GSI1PK:         "USER#" + analysis.UserID(),
		GSI1SK:         fmt.Sprintf("INSIGHT#%s#%s", analysis.CreatedAt().UTC().Format(time.RFC3339), analysis.ID().String()),
		GSI2PK:         "INSIGHTID#" + analysis.ID().String(),
		GSI2SK:         "METADATA",
		EntityType:     "INSIGHT",
		InsightID:      analysis.ID().String(),
		BirthChartID:   analysis.BirthChartID(),
		UserID:         analysis.UserID(),
		InsightType:    analysis.Type().String(),
		Content:        analysis.Content(),
		OverallSummary: analysis.OverallSummary(),
		CreatedAt:      analysis.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt:      analysis.UpdatedAt().UTC().Format(time.RFC3339),
	}

	for _, ins := range analysis.Insights() {
		sub := subInsightItem{
			ID:        ins.ID,
			Category:  ins.Category,
			Title:     ins.Title,
			Content:   ins.Content,
			CreatedAt: ins.CreatedAt.UTC().Format(time.RFC3339),
		}
		if !ins.StartDate.IsZero() {
			sub.StartDate = ins.StartDate.UTC().Format(time.RFC3339)
		}
		if !ins.EndDate.IsZero() {
			sub.EndDate = ins.EndDate.UTC().Format(time.RFC3339)
		}
		item.Insights = append(item.Insights, sub)
	}

	return item
}

func (r *InsightRepository) fromAttributes(attrs map[string]types.AttributeValue) (*entities.InsightAnalysis, error) {
	var item insightItem
	if err := attributevalue.UnmarshalMap(attrs, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal insight", err)
	}
	return r.fromItem(item)
}

func (r *InsightRepository) fromItem(item insightItem) (*entities.InsightAnalysis, error) {
	id, err := valueobjects.NewInsightIDFromString(item.InsightID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("stored insight has invalid ID", err)
	}

	insightType, err := valueobjects.ParseInsightType(item.InsightType)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("stored insight has invalid type", err)
	}

	createdAt, err := time.Parse(time.RFC3339, item.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("stored insight has invalid CreatedAt", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, item.UpdatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("stored insight has invalid UpdatedAt", err)
	}

	insights := make([]entities.Insight, 0, len(item.Insights))
	for _, sub := range item.Insights {
		ins := entities.Insight{
			ID:       sub.ID,
			Category: sub.Category,
			Title:    sub.Title,
			Content:  sub.Content,
		}
		if sub.CreatedAt != "" {
			ins.CreatedAt, _ = time.Parse(time.RFC3339, sub.CreatedAt)
		}
		if sub.StartDate != "" && sub.EndDate != "" {
			start, startErr := time.Parse(time.RFC3339, sub.StartDate)
			end, endErr := time.Parse(time.RFC3339, sub.EndDate)
			if startErr == nil && endErr == nil {
				ins.StartDate = start
				ins.EndDate = end
				if dr, drErr := valueobjects.NewDateRange(start, end); drErr == nil {
					ins.DateRange = &dr
				}
			}
		}
		insights = append(insights, ins)
	}

	return entities.ReconstructInsightAnalysis(
		id, item.BirthChartID, item.UserID, insightType,
		item.Content, item.OverallSummary, insights, createdAt, updatedAt)
}

// collect converts queried items, optionally resorting by CreatedAt since
// the base-table SK orders by kind, not recency
func (r *InsightRepository) collect(items []map[string]types.AttributeValue, resort bool) ([]*entities.InsightAnalysis, error) {
	analyses := make([]*entities.InsightAnalysis, 0, len(items))
	for _, attrs := range items {
		analysis, err := r.fromAttributes(attrs)
		if err != nil {
			r.logger.Warn("skipping corrupt insight item", zap.Error(err))
			continue
		}
		analyses = append(analyses, analysis)
	}

	if resort {
		sort.SliceStable(analyses, func(i, j int) bool {
			return analyses[i].CreatedAt().After(analyses[j].CreatedAt())
		})
	}
	return analyses, nil
}
