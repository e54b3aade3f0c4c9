package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewUnknownBankError([]string{"NUBANK"})
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "UNKNOWN_BANK", bpmnErr.Code)
	assert.Equal(t, "Banco não encontrado na lista de bancos", bpmnErr.Message)
	assert.False(t, bpmnErr.Retryable)
	assert.Zero(t, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "UNKNOWN_BANK", vars["errorCode"])
	assert.Equal(t, "VALIDATION", vars["errorCategory"])
	assert.Equal(t, []string{"NUBANK"}, vars["unknownBanks"])
	assert.NotEmpty(t, vars["timestamp"])
}

func TestNewValidationError_Period(t *testing.T) {
	e := NewValidationError("INVALID_RANGE", "bad range", 2)
	assert.Equal(t, ErrCodeInvalidRange, e.Code)
	assert.Equal(t, 2, e.Metadata["period"])
	assert.Equal(t, "period: 2", e.Details)

	e = NewValidationError("MISSING_NAME", "no name", 0)
	assert.Nil(t, e.Metadata)
	assert.Empty(t, e.Details)
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeMissingName, "VALIDATION"},
		{ErrCodeNoBankSelected, "VALIDATION"},
		{ErrCodeDuplicateBank, "VALIDATION"},
		{ErrCodeUnknownBank, "VALIDATION"},
		{ErrCodeFutureEndDate, "VALIDATION"},
		{ErrCodeInvalidInput, "VALIDATION"},
		{ErrCodeBackendTimeout, "BACKEND"},
		{ErrCodeAnalysisNotFound, "BACKEND"},
		{ErrCodeEngineRejected, "ENGINE"},
		{ErrCodeCacheUnavailable, "CACHE"},
		{ErrCodeNotificationSendFailed, "NOTIFICATION"},
		{ErrCodeInternal, "OTHER"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCategory(tt.code))
		})
	}
}

func TestBackendRejected_RetryableOnlyFor5xx(t *testing.T) {
	assert.True(t, NewBackendRejectedError(502, "bad gateway").Retryable)
	assert.False(t, NewBackendRejectedError(400, "Nome é obrigatório").Retryable)
	assert.Equal(t, 0, ConvertToBPMNError(NewBackendRejectedError(400, "x")).Retries)
	assert.Equal(t, 1, ConvertToBPMNError(NewBackendRejectedError(503, "x")).Retries)
}

func TestRemainingRetries(t *testing.T) {
	tests := []struct {
		name       string
		err        *StandardError
		jobRetries int32
		want       int
	}{
		{"non-retryable", NewAnalysisNotFoundError("a1"), 3, 0},
		{"capped by code", NewBackendUnavailableError("GET /api/banks", stderrors.New("refused")), 10, 3},
		{"spends current attempt", NewBackendUnavailableError("GET /api/banks", stderrors.New("refused")), 2, 1},
		{"last attempt throws", NewBackendTimeoutError("GET /api/banks"), 1, 0},
		{"no retries left", NewEngineUnavailableError("create-instance", stderrors.New("unavailable")), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemainingRetries(tt.err, tt.jobRetries))
		})
	}
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", NewCacheUnavailableError(stderrors.New("dial tcp")))
	got := Normalize(wrapped)
	assert.Equal(t, ErrCodeCacheUnavailable, got.Code)

	got = Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, got.Code)
	assert.Equal(t, "boom", got.Details)
	assert.False(t, got.Retryable)

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Contains(t, stdErr.Error(), "CACHE_UNAVAILABLE")
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeEngineTimeout))
	assert.True(t, IsRetryableErrorCode(ErrCodeNotificationSendFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeMissingQuery))
	assert.False(t, IsRetryableErrorCode(ErrCodeEngineRejected))
}
