package dynamodb

import (
	"context"
	"fmt"
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

// InsightLogRepository stores the append-only generation audit trail.
// PK = USER#<userID>, SK = LOG#<generatedAt>#<id>, so a single query reads
// a user's history in time order.
type InsightLogRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewInsightLogRepository creates a new InsightLogRepository
func NewInsightLogRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.InsightLogRepository {
	return &InsightLogRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type logItem struct {
	PK          string               `dynamodbav:"PK"`
	SK          string               `dynamodbav:"SK"`
	EntityType  string               `dynamodbav:"EntityType"`
	LogID       string               `dynamodbav:"LogID"`
	UserID      string               `dynamodbav:"UserID"`
	InsightType string               `dynamodbav:"InsightType"`
	Content     string               `dynamodbav:"Content"`
	GeneratedAt string               `dynamodbav:"GeneratedAt"`
	Metadata    entities.LogMetadata `dynamodbav:"Metadata"`
}

// Append stores a new log entry. The condition guards against ID reuse;
// entries are never overwritten.
func (r *InsightLogRepository) Append(ctx context.Context, log *entities.InsightLog) error {
	item := logItem{
		PK:          "USER#" + log.UserID(),
		SK:          fmt.Sprintf("LOG#%s#%s", log.GeneratedAt().UTC().Format(time.RFC3339), log.ID()),
		EntityType:  "INSIGHT_LOG",
		LogID:       log.ID(),
		UserID:      log.UserID(),
		InsightType: log.InsightType().String(),
		Content:     log.Content(),
		GeneratedAt: log.GeneratedAt().UTC().Format(time.RFC3339),
		Metadata:    log.Metadata(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal insight log", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(SK)"),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("append insight log", err)
	}
	return nil
}

// GetByUser retrieves a user's log entries, newest first
func (r *InsightLogRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*entities.InsightLog, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "USER#" + userID},
			":sk": &types.AttributeValueMemberS{Value: "LOG#"},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query insight logs", err)
	}

	logs := make([]*entities.InsightLog, 0, len(result.Items))
	for _, attrs := range result.Items {
		var item logItem
		if err := attributevalue.UnmarshalMap(attrs, &item); err != nil {
			r.logger.Warn("skipping corrupt log item", zap.Error(err))
			continue
		}

		generatedAt, err := time.Parse(time.RFC3339, item.GeneratedAt)
		if err != nil {
			r.logger.Warn("skipping log item with invalid timestamp",
				zap.String("log_id", item.LogID), zap.Error(err))
			continue
		}

		logs = append(logs, entities.ReconstructInsightLog(
			item.LogID,
			item.UserID,
			valueobjects.InsightType(item.InsightType),
			item.Content,
			generatedAt,
			item.Metadata,
		))
	}
	return logs, nil
}
