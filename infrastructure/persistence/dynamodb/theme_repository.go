package dynamodb

import (
	"context"

	"astroinsight/application/ports"
	"astroinsight/domain/core/entities"
	pkgerrors "astroinsight/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// LifeThemeRepository reads the theme catalogue derived from a chart.
// Themes live in the chart's partition: PK = CHART#<chartID>, SK = THEME#<key>.
type LifeThemeRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewLifeThemeRepository creates a new LifeThemeRepository
func NewLifeThemeRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.LifeThemeRepository {
	return &LifeThemeRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type themeItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	EntityType  string `dynamodbav:"EntityType"`
	Key         string `dynamodbav:"ThemeKey"`
	LifeArea    string `dynamodbav:"LifeArea"`
	Title       string `dynamodbav:"Title"`
	Description string `dynamodbav:"Description"`
}

// GetByChartID retrieves every theme for a chart
func (r *LifeThemeRepository) GetByChartID(ctx context.Context, chartID string) ([]*entities.LifeTheme, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "CHART#" + chartID},
			":sk": &types.AttributeValueMemberS{Value: "THEME#"},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query life themes", err)
	}

	themes := make([]*entities.LifeTheme, 0, len(result.Items))
	for _, attrs := range result.Items {
		var item themeItem
		if err := attributevalue.UnmarshalMap(attrs, &item); err != nil {
			r.logger.Warn("skipping corrupt theme item", zap.Error(err))
			continue
		}
		themes = append(themes, &entities.LifeTheme{
			Key:         item.Key,
			LifeArea:    item.LifeArea,
			Title:       item.Title,
			Description: item.Description,
		})
	}
	return themes, nil
}

// GetByKey retrieves a single theme
func (r *LifeThemeRepository) GetByKey(ctx context.Context, chartID, key string) (*entities.LifeTheme, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "CHART#" + chartID},
			"SK": &types.AttributeValueMemberS{Value: "THEME#" + key},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get life theme", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("life theme")
	}

	var item themeItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal life theme", err)
	}
	return &entities.LifeTheme{
		Key:         item.Key,
		LifeArea:    item.LifeArea,
		Title:       item.Title,
		Description: item.Description,
	}, nil
}
