package dynamodb

import (
	"context"
	"time"

	"astroinsight/application/ports"
	"astroinsight/domain/core/entities"
	pkgerrors "astroinsight/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// BirthChartRepository reads chart data written by the calculation
// subsystem. PK = CHART#<chartID>, SK = METADATA; GSI1 serves user lookups.
type BirthChartRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewBirthChartRepository creates a new BirthChartRepository
func NewBirthChartRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.BirthChartRepository {
	return &BirthChartRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type chartItem struct {
	PK         string                  `dynamodbav:"PK"`
	SK         string                  `dynamodbav:"SK"`
	GSI1PK     string                  `dynamodbav:"GSI1PK"`
	GSI1SK     string                  `dynamodbav:"GSI1SK"`
	EntityType string                  `dynamodbav:"EntityType"`
	ChartID    string                  `dynamodbav:"ChartID"`
	UserID     string                  `dynamodbav:"UserID"`
	Bodies     []entities.CelestialBody `dynamodbav:"Bodies"`
	Houses     []entities.House        `dynamodbav:"Houses"`
	Aspects    []entities.Aspect       `dynamodbav:"Aspects"`
	BirthDate  string                  `dynamodbav:"BirthDate"`
}

// GetByID retrieves a chart by its ID
func (r *BirthChartRepository) GetByID(ctx context.Context, chartID string) (*entities.BirthChart, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "CHART#" + chartID},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get birth chart", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("birth chart")
	}

	return r.fromAttributes(result.Item)
}

// GetByUserID retrieves all charts for a user via GSI1
func (r *BirthChartRepository) GetByUserID(ctx context.Context, userID string) ([]*entities.BirthChart, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "USER#" + userID},
			":sk": &types.AttributeValueMemberS{Value: "CHART#"},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query birth charts", err)
	}

	charts := make([]*entities.BirthChart, 0, len(result.Items))
	for _, attrs := range result.Items {
		chart, err := r.fromAttributes(attrs)
		if err != nil {
			r.logger.Warn("skipping corrupt chart item", zap.Error(err))
			continue
		}
		charts = append(charts, chart)
	}
	return charts, nil
}

func (r *BirthChartRepository) fromAttributes(attrs map[string]types.AttributeValue) (*entities.BirthChart, error) {
	var item chartItem
	if err := attributevalue.UnmarshalMap(attrs, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal birth chart", err)
	}

	chart := &entities.BirthChart{
		ID:      item.ChartID,
		UserID:  item.UserID,
		Bodies:  item.Bodies,
		Houses:  item.Houses,
		Aspects: item.Aspects,
	}
	if item.BirthDate != "" {
		birthDate, err := time.Parse(time.RFC3339, item.BirthDate)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("stored chart has invalid birth date", err)
		}
		chart.BirthDate = birthDate
	}
	return chart, nil
}
