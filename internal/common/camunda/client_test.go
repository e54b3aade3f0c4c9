package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"iedi-workers/internal/common/config"
	"iedi-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newTestClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		},
	}}
}

func TestExecuteWithRetry_RetriesTransientErrors(t *testing.T) {
	c := newTestClient(3)
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, status.Error(codes.Unavailable, "gateway restarting")
		}
		return "ok", nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	c := newTestClient(3)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, status.Error(codes.NotFound, "process 'iedi-analysis' not found")
	}, "create-instance iedi-analysis")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeEngineRejected, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	c := newTestClient(2)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}, "create-instance")

	assert.Equal(t, 3, calls)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeEngineTimeout, stdErr.Code)
	assert.Contains(t, stdErr.Details, "after 3 attempts")
}

func TestExecuteWithRetry_PassesStandardErrorsThrough(t *testing.T) {
	c := newTestClient(3)
	input := errors.NewInvalidInputError("variables must be an object")

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		return nil, input
	}, "create-instance")

	assert.Same(t, input, err)
}

func TestExecuteWithRetry_Cancelled(t *testing.T) {
	c := &Client{config: &ClientConfig{RetryConfig: &RetryConfig{
		MaxRetries: 5,
		BaseDelay:  time.Hour,
		MaxDelay:   time.Hour,
	}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
		return nil, stderrors.New("connection refused")
	}, "topology")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.ErrorCode
	}{
		{"grpc unavailable", status.Error(codes.Unavailable, "x"), errors.ErrCodeEngineUnavailable},
		{"grpc deadline", status.Error(codes.DeadlineExceeded, "x"), errors.ErrCodeEngineTimeout},
		{"grpc invalid argument", status.Error(codes.InvalidArgument, "x"), errors.ErrCodeEngineRejected},
		{"grpc permission", status.Error(codes.PermissionDenied, "x"), errors.ErrCodeEngineRejected},
		{"plain refused", stderrors.New("dial tcp: connection refused"), errors.ErrCodeEngineUnavailable},
		{"plain timeout", stderrors.New("i/o timeout"), errors.ErrCodeEngineTimeout},
		{"plain other", stderrors.New("already exists"), errors.ErrCodeEngineRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr, ok := errors.AsStandardError(mapZeebeError(tt.err, "op", 0))
			require.True(t, ok)
			assert.Equal(t, tt.want, stdErr.Code)
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.CamundaConfig{
		BrokerAddress:  "zeebe:26500",
		UsePlaintext:   true,
		RequestTimeout: 5000,
	})

	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Same(t, DefaultRetryConfig, cfg.RetryConfig)
}
