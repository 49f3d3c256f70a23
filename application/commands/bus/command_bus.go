package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"astroinsight/pkg/common"
)

// Command represents an operation that changes state
type Command interface {
	Validate() error
}

// CommandHandler handles a specific command type
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}

// CommandBus dispatches commands to their registered handlers by type
type CommandBus struct {
	handlers map[reflect.Type]CommandHandler
	mu       sync.RWMutex
}

// NewCommandBus creates a new command bus
func NewCommandBus() *CommandBus {
	return &CommandBus{
		handlers: make(map[reflect.Type]CommandHandler),
	}
}

// Register registers a handler for a command type
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}

	b.handlers[t] = handler
	return nil
}

// Send validates a command and dispatches it to its handler
func (b *CommandBus) Send(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %T", ErrHandlerNotFound, cmd)
	}

	return handler.Handle(ctx, cmd)
}

// Middleware wraps a handler with cross-cutting behavior
type Middleware func(next CommandHandler) CommandHandler

// CommandHandlerFunc adapts a function to the CommandHandler interface
type CommandHandlerFunc func(ctx context.Context, cmd Command) error

// Handle implements CommandHandler
func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// Logger is the minimal logging surface the middleware needs
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// LoggingMiddleware logs command execution and outcome, tagging entries
// with the request ID when the context carries one
func LoggingMiddleware(logger Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			fields := []interface{}{"type", reflect.TypeOf(cmd).Name()}
			if requestID, ok := common.GetRequestID(ctx); ok {
				fields = append(fields, "request_id", requestID)
			}
			logger.Info("executing command", fields...)

			ctx = common.WithStartTime(ctx, time.Now())
			err := next.Handle(ctx, cmd)

			if start, ok := common.GetStartTime(ctx); ok {
				fields = append(fields, "duration_ms", time.Since(start).Milliseconds())
			}
			if err != nil {
				logger.Error("command failed", append(fields, "error", err)...)
			} else {
				logger.Info("command succeeded", fields...)
			}

			return err
		})
	}
}

// Pipeline chains middleware around a handler
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline creates a middleware pipeline
func NewPipeline(middlewares ...Middleware) *Pipeline {
	return &Pipeline{middlewares: middlewares}
}

// Execute wraps the handler with the pipeline's middleware
func (p *Pipeline) Execute(handler CommandHandler) CommandHandler {
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		handler = p.middlewares[i](handler)
	}
	return handler
}

// ErrHandlerNotFound is returned when no handler matches a command type
var ErrHandlerNotFound = errors.New("command handler not found")
