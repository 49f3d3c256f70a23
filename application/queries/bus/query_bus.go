package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"astroinsight/pkg/common"
)

// Query represents a read-only request
type Query interface {
	Validate() error
}

// QueryHandler handles a specific query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryBus dispatches queries to their registered handlers by type
type QueryBus struct {
	handlers map[reflect.Type]QueryHandler
	mu       sync.RWMutex
}

// NewQueryBus creates a new query bus
func NewQueryBus() *QueryBus {
	return &QueryBus{
		handlers: make(map[reflect.Type]QueryHandler),
	}
}

// Register registers a handler for a query type
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}

	b.handlers[t] = handler
	return nil
}

// Ask validates a query, dispatches it, and returns the result
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("query validation failed: %w", err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %T", ErrHandlerNotFound, query)
	}

	return handler.Handle(ctx, query)
}

// QueryHandlerFunc adapts a function to the QueryHandler interface
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// Logger is the minimal logging surface the middleware needs
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// LoggingMiddleware logs query execution and outcome, tagging entries
// with the request ID when the context carries one
func LoggingMiddleware(logger Logger) func(QueryHandler) QueryHandler {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			fields := []interface{}{"type", reflect.TypeOf(query).Name()}
			if requestID, ok := common.GetRequestID(ctx); ok {
				fields = append(fields, "request_id", requestID)
			}

			result, err := next.Handle(ctx, query)
			if err != nil {
				logger.Error("query failed", append(fields, "error", err)...)
				return nil, err
			}

			logger.Info("query succeeded", fields...)
			return result, nil
		})
	}
}

// ErrHandlerNotFound is returned when no handler matches a query type
var ErrHandlerNotFound = errors.New("query handler not found")
