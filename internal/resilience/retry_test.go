package resilience

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestDoVal_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastRetry(3), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &StatusError{Service: "places", Status: http.StatusBadGateway}
		}
		return "ok", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDoVal_PermanentErrorNoRetry(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastRetry(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, eris.New("parse error")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastRetry(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, &StatusError{Service: "places", Status: http.StatusTooManyRequests}
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoVal_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := DoVal(ctx, fastRetry(5), func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, &StatusError{Service: "places", Status: 500}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := fastRetry(3)
	cfg.OnRetry = func(attempt int, err error) { attempts = append(attempts, attempt) }

	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		return &StatusError{Service: "places", Status: 503}
	})
	assert.Error(t, err)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestIsTransient_Statuses(t *testing.T) {
	assert.True(t, IsTransient(&StatusError{Service: "places", Status: 429}))
	assert.True(t, IsTransient(&StatusError{Service: "places", Status: 500}))
	assert.True(t, IsTransient(&StatusError{Service: "places", Status: 503}))
	assert.False(t, IsTransient(&StatusError{Service: "places", Status: 400}))
	assert.False(t, IsTransient(&StatusError{Service: "places", Status: 403}))
	assert.False(t, IsTransient(&StatusError{Service: "places", Status: 404}))
}

func TestIsTransient_WrappedStatus(t *testing.T) {
	err := eris.Wrap(&StatusError{Service: "places", Status: 502}, "text search")
	assert.True(t, IsTransient(err))
}

func TestIsTransient_PlainError(t *testing.T) {
	assert.False(t, IsTransient(eris.New("malformed response")))
	assert.False(t, IsTransient(nil))
}
