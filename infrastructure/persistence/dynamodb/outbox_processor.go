package dynamodb

import (
	"context"
	"fmt"
	"time"

	"astroinsight/application/ports"

	"go.uber.org/zap"
)

// OutboxProcessor publishes stored events to the bus in the background.
// Insight writes stay durable even when the bus is down; pending events
// drain once it recovers.
type OutboxProcessor struct {
	eventStore     *EventStore
	eventPublisher ports.EventPublisher
	logger         *zap.Logger

	batchSize          int32
	processingInterval time.Duration
	maxRetries         int

	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewOutboxProcessor creates a new outbox processor
func NewOutboxProcessor(
	eventStore *EventStore,
	eventPublisher ports.EventPublisher,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		eventStore:         eventStore,
		eventPublisher:     eventPublisher,
		logger:             logger,
		batchSize:          50,
		processingInterval: 5 * time.Second,
		maxRetries:         3,
		stopChan:           make(chan struct{}),
		stoppedChan:        make(chan struct{}),
	}
}

// Start begins background processing
func (op *OutboxProcessor) Start(ctx context.Context) {
	op.logger.Info("starting outbox processor",
		zap.Int32("batch_size", op.batchSize),
		zap.Duration("interval", op.processingInterval))

	go op.processLoop(ctx)
}

// Stop drains the loop and blocks until it exits
func (op *OutboxProcessor) Stop() {
	close(op.stopChan)
	<-op.stoppedChan
	op.logger.Info("outbox processor stopped")
}

func (op *OutboxProcessor) processLoop(ctx context.Context) {
	defer close(op.stoppedChan)

	ticker := time.NewTicker(op.processingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-op.stopChan:
			return
		case <-ticker.C:
			if err := op.processBatch(ctx); err != nil {
				op.logger.Error("outbox batch failed", zap.Error(err))
			}
		}
	}
}

func (op *OutboxProcessor) processBatch(ctx context.Context) error {
	pending, err := op.eventStore.GetPendingEvents(ctx, op.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	published := 0
	failed := 0
	for _, record := range pending {
		if err := op.processEvent(ctx, record); err != nil {
			failed++
		} else {
			published++
		}
	}

	op.logger.Debug("outbox batch processed",
		zap.Int("published", published),
		zap.Int("failed", failed))
	return nil
}

func (op *OutboxProcessor) processEvent(ctx context.Context, record *EventRecord) error {
	event, err := op.eventStore.recordToEvent(*record)
	if err != nil {
		return op.markFailed(ctx, record, fmt.Sprintf("unreadable event record: %v", err))
	}

	if err := op.eventPublisher.Publish(ctx, event); err != nil {
		return op.markFailed(ctx, record, fmt.Sprintf("publish failed: %v", err))
	}

	if err := op.eventStore.MarkEventAsPublished(ctx, record.PK, record.SK); err != nil {
		op.logger.Error("could not mark event as published",
			zap.String("event_id", record.EventID), zap.Error(err))
		return err
	}
	return nil
}

func (op *OutboxProcessor) markFailed(ctx context.Context, record *EventRecord, errorMsg string) error {
	attempts := record.PublishAttempts + 1

	if err := op.eventStore.MarkEventAsFailed(ctx, record.PK, record.SK, errorMsg, attempts, op.maxRetries); err != nil {
		op.logger.Error("could not mark event as failed",
			zap.String("event_id", record.EventID), zap.Error(err))
		return err
	}

	if attempts >= op.maxRetries {
		op.logger.Warn("event permanently failed",
			zap.String("event_id", record.EventID),
			zap.String("event_type", record.EventType),
			zap.Int("attempts", attempts),
			zap.String("error", errorMsg))
	}
	return fmt.Errorf("event processing failed: %s", errorMsg)
}
