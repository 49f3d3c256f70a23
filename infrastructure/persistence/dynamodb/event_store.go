package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"astroinsight/domain/core/valueobjects"
	"astroinsight/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// EventStore persists domain events with outbox status fields so the
// processor can publish them to the bus after the fact.
type EventStore struct {
	client    *dynamodb.Client
	tableName string
}

// PublishStatus represents the publishing status of a stored event
type PublishStatus string

const (
	PublishStatusPending   PublishStatus = "pending"
	PublishStatusPublished PublishStatus = "published"
	PublishStatusFailed    PublishStatus = "failed"
)

// eventTTL bounds how long published events stay queryable
const eventTTL = 90 * 24 * time.Hour

// EventRecord is the stored shape of one event
type EventRecord struct {
	PK          string                 `dynamodbav:"PK"` // EVENTS#<aggregate_id>
	SK          string                 `dynamodbav:"SK"` // EVENT#<timestamp>#<event_id>
	EventID     string                 `dynamodbav:"EventID"`
	EventType   string                 `dynamodbav:"EventType"`
	AggregateID string                 `dynamodbav:"AggregateID"`
	EventData   map[string]interface{} `dynamodbav:"EventData"`
	Timestamp   string                 `dynamodbav:"Timestamp"`
	Version     int                    `dynamodbav:"Version"`

	PublishStatus   string `dynamodbav:"PublishStatus"`
	PublishAttempts int    `dynamodbav:"PublishAttempts"`
	LastPublishTry  string `dynamodbav:"LastPublishTry,omitempty"`
	PublishedAt     string `dynamodbav:"PublishedAt,omitempty"`
	ErrorMessage    string `dynamodbav:"ErrorMessage,omitempty"`

	GSI2PK string `dynamodbav:"GSI2PK"` // EVENTTYPE#<type>
	GSI2SK string `dynamodbav:"GSI2SK"` // EVENT#<timestamp>

	TTL int64 `dynamodbav:"TTL,omitempty"`
}

// NewEventStore creates a new DynamoDB event store
func NewEventStore(client *dynamodb.Client, tableName string) *EventStore {
	return &EventStore{
		client:    client,
		tableName: tableName,
	}
}

// SaveEvents persists domain events, pending publication
func (es *EventStore) SaveEvents(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	writeRequests := make([]types.WriteRequest, 0, len(domainEvents))
	for _, event := range domainEvents {
		record, err := es.eventToRecord(event)
		if err != nil {
			return fmt.Errorf("failed to convert event to record: %w", err)
		}

		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("failed to marshal event record: %w", err)
		}

		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	// DynamoDB caps batch writes at 25 items
	for i := 0; i < len(writeRequests); i += 25 {
		end := i + 25
		if end > len(writeRequests) {
			end = len(writeRequests)
		}

		result, err := es.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				es.tableName: writeRequests[i:end],
			},
		})
		if err != nil {
			return fmt.Errorf("failed to write events batch: %w", err)
		}
		if len(result.UnprocessedItems) > 0 {
			return fmt.Errorf("failed to write %d events", len(result.UnprocessedItems[es.tableName]))
		}
	}

	return nil
}

// GetEvents retrieves all events for an aggregate in time order
func (es *EventStore) GetEvents(ctx context.Context, aggregateID string) ([]events.DomainEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "EVENTS#" + aggregateID},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var all []events.DomainEvent
	for {
		result, err := es.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}

		for _, item := range result.Items {
			var record EventRecord
			if err := attributevalue.UnmarshalMap(item, &record); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event record: %w", err)
			}
			event, err := es.recordToEvent(record)
			if err != nil {
				return nil, err
			}
			all = append(all, event)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return all, nil
}

// GetEventsByType retrieves recent events of one type via GSI2
func (es *EventStore) GetEventsByType(ctx context.Context, eventType string, limit int) ([]events.DomainEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		IndexName:              aws.String("GSI2"),
		KeyConditionExpression: aws.String("GSI2PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "EVENTTYPE#" + eventType},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := es.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query events by type: %w", err)
	}

	out := make([]events.DomainEvent, 0, len(result.Items))
	for _, item := range result.Items {
		var record EventRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event record: %w", err)
		}
		event, err := es.recordToEvent(record)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, nil
}

// GetPendingEvents retrieves events awaiting publication
func (es *EventStore) GetPendingEvents(ctx context.Context, limit int32) ([]*EventRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	filter := expression.And(
		expression.Equal(expression.Name("PublishStatus"), expression.Value(string(PublishStatusPending))),
		expression.BeginsWith(expression.Name("PK"), "EVENTS#"),
	)
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pending events filter: %w", err)
	}

	result, err := es.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(es.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan pending events: %w", err)
	}

	records := make([]*EventRecord, 0, len(result.Items))
	for _, item := range result.Items {
		var record EventRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

// MarkEventAsPublished flips a pending event to published
func (es *EventStore) MarkEventAsPublished(ctx context.Context, eventPK, eventSK string) error {
	now := time.Now().Format(time.RFC3339)

	_, err := es.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(es.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: eventPK},
			"SK": &types.AttributeValueMemberS{Value: eventSK},
		},
		UpdateExpression: aws.String("SET PublishStatus = :published, PublishedAt = :publishedAt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":published":   &types.AttributeValueMemberS{Value: string(PublishStatusPublished)},
			":publishedAt": &types.AttributeValueMemberS{Value: now},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("failed to mark event as published: %w", err)
	}
	return nil
}

// MarkEventAsFailed records a publish failure. Events stay pending until
// the attempt budget is spent, then go to failed for manual inspection.
func (es *EventStore) MarkEventAsFailed(ctx context.Context, eventPK, eventSK, errorMsg string, attempts, maxAttempts int) error {
	now := time.Now().Format(time.RFC3339)

	status := string(PublishStatusFailed)
	if attempts < maxAttempts {
		status = string(PublishStatusPending)
	}

	_, err := es.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(es.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: eventPK},
			"SK": &types.AttributeValueMemberS{Value: eventSK},
		},
		UpdateExpression: aws.String("SET PublishStatus = :status, PublishAttempts = :attempts, LastPublishTry = :lastTry, ErrorMessage = :error"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":   &types.AttributeValueMemberS{Value: status},
			":attempts": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", attempts)},
			":lastTry":  &types.AttributeValueMemberS{Value: now},
			":error":    &types.AttributeValueMemberS{Value: errorMsg},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("failed to mark event as failed: %w", err)
	}
	return nil
}

func (es *EventStore) eventToRecord(event events.DomainEvent) (*EventRecord, error) {
	eventData := make(map[string]interface{})
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := json.Unmarshal(eventBytes, &eventData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event to map: %w", err)
	}

	timestamp := event.GetTimestamp()
	eventID := uuid.New().String()

	return &EventRecord{
		PK:          "EVENTS#" + event.GetAggregateID(),
		SK:          fmt.Sprintf("EVENT#%s#%s", timestamp.Format(time.RFC3339Nano), eventID),
		EventID:     eventID,
		EventType:   event.GetEventType(),
		AggregateID: event.GetAggregateID(),
		EventData:   eventData,
		Timestamp:   timestamp.Format(time.RFC3339),
		Version:     event.GetVersion(),

		PublishStatus:   string(PublishStatusPending),
		PublishAttempts: 0,

		GSI2PK: "EVENTTYPE#" + event.GetEventType(),
		GSI2SK: "EVENT#" + timestamp.Format(time.RFC3339Nano),
		TTL:    timestamp.Add(eventTTL).Unix(),
	}, nil
}

// recordToEvent rebuilds the concrete event from its stored data
func (es *EventStore) recordToEvent(record EventRecord) (events.DomainEvent, error) {
	timestamp, err := time.Parse(time.RFC3339, record.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event timestamp: %w", err)
	}

	base := events.BaseEvent{
		AggregateID: record.AggregateID,
		EventType:   record.EventType,
		Timestamp:   timestamp,
		Version:     record.Version,
	}

	switch record.EventType {
	case "insight.generated":
		insightType, _ := record.EventData["insight_type"].(string)
		return &events.InsightGenerated{
			BaseEvent:    base,
			InsightID:    stringField(record.EventData, "insight_id"),
			BirthChartID: stringField(record.EventData, "birth_chart_id"),
			UserID:       stringField(record.EventData, "user_id"),
			InsightType:  valueobjects.InsightType(insightType),
			CacheKey:     stringField(record.EventData, "cache_key"),
		}, nil

	case "insight.invalidated":
		return &events.InsightsInvalidated{
			BaseEvent:    base,
			BirthChartID: stringField(record.EventData, "birth_chart_id"),
			Reason:       stringField(record.EventData, "reason"),
		}, nil

	case "insight.windows_computed":
		return &events.TimingWindowsComputed{
			BaseEvent:    base,
			BirthChartID: stringField(record.EventData, "birth_chart_id"),
			WindowCount:  intField(record.EventData, "window_count"),
			HorizonDays:  intField(record.EventData, "horizon_days"),
		}, nil

	default:
		return &base, nil
	}
}

func stringField(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

func intField(data map[string]interface{}, key string) int {
	// JSON round-tripping stores numbers as float64
	f, _ := data[key].(float64)
	return int(f)
}
