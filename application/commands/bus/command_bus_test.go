package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astroinsight/pkg/common"
)

type testCommand struct {
	Invalid bool
}

func (c testCommand) Validate() error {
	if c.Invalid {
		return errors.New("bad command")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

type recordingLogger struct {
	entries []map[string]interface{}
}

func (l *recordingLogger) log(msg string, keysAndValues ...interface{}) {
	entry := map[string]interface{}{"msg": msg}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		entry[keysAndValues[i].(string)] = keysAndValues[i+1]
	}
	l.entries = append(l.entries, entry)
}

func (l *recordingLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log(msg, keysAndValues...)
}

func (l *recordingLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log(msg, keysAndValues...)
}

func TestCommandBusDispatch(t *testing.T) {
	cb := NewCommandBus()

	var handled int
	handler := CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		handled++
		return nil
	})
	require.NoError(t, cb.Register(testCommand{}, handler))

	err := cb.Send(context.Background(), testCommand{})
	require.NoError(t, err)
	assert.Equal(t, 1, handled)
}

func TestCommandBusValidationFailure(t *testing.T) {
	cb := NewCommandBus()
	require.NoError(t, cb.Register(testCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		t.Fatal("handler must not run for an invalid command")
		return nil
	})))

	err := cb.Send(context.Background(), testCommand{Invalid: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestCommandBusUnknownCommand(t *testing.T) {
	cb := NewCommandBus()

	err := cb.Send(context.Background(), otherCommand{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestCommandBusDuplicateRegistration(t *testing.T) {
	cb := NewCommandBus()
	noop := CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil })

	require.NoError(t, cb.Register(testCommand{}, noop))
	assert.Error(t, cb.Register(testCommand{}, noop))
}

func TestLoggingMiddlewareTagsRequestID(t *testing.T) {
	logger := &recordingLogger{}
	handler := NewPipeline(LoggingMiddleware(logger)).Execute(
		CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil }),
	)

	ctx := common.WithRequestID(context.Background(), "req-42")
	require.NoError(t, handler.Handle(ctx, testCommand{}))

	require.Len(t, logger.entries, 2)
	assert.Equal(t, "executing command", logger.entries[0]["msg"])
	assert.Equal(t, "req-42", logger.entries[0]["request_id"])
	assert.Equal(t, "testCommand", logger.entries[0]["type"])
	assert.Equal(t, "command succeeded", logger.entries[1]["msg"])
}

func TestLoggingMiddlewareReportsFailure(t *testing.T) {
	logger := &recordingLogger{}
	boom := errors.New("boom")
	handler := NewPipeline(LoggingMiddleware(logger)).Execute(
		CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return boom }),
	)

	err := handler.Handle(context.Background(), testCommand{})
	assert.ErrorIs(t, err, boom)

	require.Len(t, logger.entries, 2)
	assert.Equal(t, "command failed", logger.entries[1]["msg"])
	assert.NotContains(t, logger.entries[1], "request_id")
}
