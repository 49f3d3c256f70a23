package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astroinsight/pkg/common"
)

type testQuery struct {
	Invalid bool
}

func (q testQuery) Validate() error {
	if q.Invalid {
		return errors.New("bad query")
	}
	return nil
}

type otherQuery struct{}

func (otherQuery) Validate() error { return nil }

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

func TestQueryBusDispatch(t *testing.T) {
	qb := NewQueryBus()

	handler := QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		return "result", nil
	})
	require.NoError(t, qb.Register(testQuery{}, handler))

	result, err := qb.Ask(context.Background(), testQuery{})
	require.NoError(t, err)
	assert.Equal(t, "result", result)
}

func TestQueryBusValidationFailure(t *testing.T) {
	qb := NewQueryBus()
	require.NoError(t, qb.Register(testQuery{}, QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		t.Fatal("handler must not run for an invalid query")
		return nil, nil
	})))

	_, err := qb.Ask(context.Background(), testQuery{Invalid: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestQueryBusUnknownQuery(t *testing.T) {
	qb := NewQueryBus()

	_, err := qb.Ask(context.Background(), otherQuery{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestQueryBusDuplicateRegistration(t *testing.T) {
	qb := NewQueryBus()
	noop := QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) { return nil, nil })

	require.NoError(t, qb.Register(testQuery{}, noop))
	assert.Error(t, qb.Register(testQuery{}, noop))
}

func TestQueryLoggingMiddleware(t *testing.T) {
	logger := &recordingLogger{}
	handler := LoggingMiddleware(logger)(QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		return 7, nil
	}))

	ctx := common.WithRequestID(context.Background(), "req-7")
	result, err := handler.Handle(ctx, testQuery{})
	require.NoError(t, err)
	assert.Equal(t, 7, result)

	require.Len(t, logger.entries, 1)
	assert.Equal(t, "query succeeded", logger.entries[0]["msg"])
	assert.Equal(t, "req-7", logger.entries[0]["request_id"])

	boom := errors.New("boom")
	failing := LoggingMiddleware(logger)(QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		return nil, boom
	}))
	_, err = failing.Handle(context.Background(), testQuery{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "query failed", logger.entries[1]["msg"])
}
