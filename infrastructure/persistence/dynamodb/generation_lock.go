package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"astroinsight/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLockHeld is returned when another flight owns the per-key lock
var ErrLockHeld = errors.New("generation lock already held")

// GenerationLock is the single-flight lock over DynamoDB conditional
// writes: one generation per cache key at a time. Waiters poll with backoff
// until the holder finishes or the lock's TTL lapses, then re-check the
// cache before generating.
type GenerationLock struct {
	client    *dynamodb.Client
	tableName string
	ownerID   string
	logger    *zap.Logger
}

// NewGenerationLock creates a lock manager with a per-process owner ID
func NewGenerationLock(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.GenerationLock {
	return &GenerationLock{
		client:    client,
		tableName: tableName,
		ownerID:   uuid.New().String(),
		logger:    logger,
	}
}

// Acquire takes the lock for a key, polling while another flight holds it.
// The returned release function deletes the lock if this process still
// owns it.
func (gl *GenerationLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(ctx context.Context) error, error) {
	lockID := fmt.Sprintf("%s_%d", gl.ownerID, time.Now().UnixNano())

	retryInterval := 100 * time.Millisecond
	for {
		err := gl.tryPut(ctx, key, lockID, ttl)
		if err == nil {
			gl.logger.Debug("generation lock acquired",
				zap.String("key", key), zap.String("lock_id", lockID))
			return func(ctx context.Context) error {
				return gl.release(ctx, key, lockID)
			}, nil
		}
		if !errors.Is(err, ErrLockHeld) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
			if retryInterval < time.Second {
				retryInterval = time.Duration(float64(retryInterval) * 1.5)
			}
		}
	}
}

func (gl *GenerationLock) tryPut(ctx context.Context, key, lockID string, ttl time.Duration) error {
	now := time.Now()
	expiresAt := now.Add(ttl)

	_, err := gl.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(gl.tableName),
		Item: map[string]types.AttributeValue{
			"PK":         &types.AttributeValueMemberS{Value: "LOCK#" + key},
			"SK":         &types.AttributeValueMemberS{Value: "LOCK"},
			"LockID":     &types.AttributeValueMemberS{Value: lockID},
			"Owner":      &types.AttributeValueMemberS{Value: gl.ownerID},
			"AcquiredAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			"ExpiresAt":  &types.AttributeValueMemberS{Value: expiresAt.Format(time.RFC3339)},
			"TTL":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt.Unix())},
		},
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrLockHeld
		}
		return fmt.Errorf("failed to acquire generation lock: %w", err)
	}
	return nil
}

func (gl *GenerationLock) release(ctx context.Context, key, lockID string) error {
	_, err := gl.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(gl.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "LOCK#" + key},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression: aws.String("LockID = :lockId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lockId": &types.AttributeValueMemberS{Value: lockID},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			// Expired and taken over; nothing left to release.
			gl.logger.Warn("generation lock already released or reassigned",
				zap.String("key", key), zap.String("lock_id", lockID))
			return nil
		}
		return fmt.Errorf("failed to release generation lock: %w", err)
	}
	return nil
}
