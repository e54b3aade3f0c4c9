// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Analysis request validation. One code per validation kind, never retried.
const (
	ErrCodeMissingName    ErrorCode = "MISSING_NAME"
	ErrCodeMissingQuery   ErrorCode = "MISSING_QUERY"
	ErrCodeNoBankSelected ErrorCode = "NO_BANK_SELECTED"
	ErrCodeMissingBank    ErrorCode = "MISSING_BANK"
	ErrCodeMissingDates   ErrorCode = "MISSING_DATES"
	ErrCodeInvalidRange   ErrorCode = "INVALID_RANGE"
	ErrCodeFutureEndDate  ErrorCode = "FUTURE_END_DATE"
	ErrCodeDuplicateBank  ErrorCode = "DUPLICATE_BANK"
	ErrCodeUnknownBank    ErrorCode = "UNKNOWN_BANK"
	ErrCodeInvalidInput   ErrorCode = "INVALID_INPUT"
)

// IEDI backend.
const (
	ErrCodeBackendUnavailable     ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeBackendTimeout         ErrorCode = "BACKEND_TIMEOUT"
	ErrCodeBackendRejected        ErrorCode = "BACKEND_REJECTED"
	ErrCodeAnalysisNotFound       ErrorCode = "ANALYSIS_NOT_FOUND"
	ErrCodeInvalidBackendResponse ErrorCode = "INVALID_BACKEND_RESPONSE"
	ErrCodeResultsNotReady        ErrorCode = "RESULTS_NOT_READY"
)

// Workflow engine.
const (
	ErrCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrCodeEngineTimeout     ErrorCode = "ENGINE_TIMEOUT"
	ErrCodeEngineRejected    ErrorCode = "ENGINE_REJECTED"
)

// Infrastructure.
const (
	ErrCodeCacheUnavailable       ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError unwraps err to a *StandardError if one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationError wraps a request validation failure. code is the kind in SCREAMING_SNAKE form.
func NewValidationError(code, message string, period int) *StandardError {
	e := &StandardError{
		Code:      ErrorCode(code),
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
	if period > 0 {
		e.Details = fmt.Sprintf("period: %d", period)
		e.WithMetadata("period", period)
	}
	return e
}

// NewInvalidInputError reports job variables that do not match the worker schema.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Job variables failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownBankError lists the bank names the backend does not track.
func NewUnknownBankError(banks []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownBank,
		Message:   "Banco não encontrado na lista de bancos",
		Details:   fmt.Sprintf("banks: %s", strings.Join(banks, ", ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"unknownBanks": banks},
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendUnavailableError creates a retryable transport error.
func NewBackendUnavailableError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnavailable,
		Message:   "IEDI backend unavailable",
		Details:   fmt.Sprintf("endpoint: %s, error: %s", endpoint, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendTimeoutError creates a retryable timeout error.
func NewBackendTimeoutError(endpoint string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendTimeout,
		Message:   "IEDI backend timeout",
		Details:   fmt.Sprintf("endpoint: %s", endpoint),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendRejectedError carries the backend's own error message.
func NewBackendRejectedError(status int, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendRejected,
		Message:   message,
		Details:   fmt.Sprintf("status: %d", status),
		Retryable: status >= 500,
		Metadata:  map[string]interface{}{"httpStatus": status},
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisNotFoundError creates a non-retryable lookup error.
func NewAnalysisNotFoundError(analysisID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisNotFound,
		Message:   "Análise não encontrada",
		Details:   fmt.Sprintf("analysisId: %s", analysisID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResultsNotReadyError is thrown when an analysis has no per-bank rows yet.
func NewResultsNotReadyError(analysisID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultsNotReady,
		Message:   "Analysis has no bank results yet",
		Details:   fmt.Sprintf("analysisId: %s", analysisID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidBackendResponseError reports a body that is not the expected JSON.
func NewInvalidBackendResponseError(endpoint string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidBackendResponse,
		Message:   "Resposta inválida do servidor",
		Details:   fmt.Sprintf("endpoint: %s", endpoint),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Bank cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEngineUnavailableError wraps a Zeebe gateway connection failure.
func NewEngineUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineUnavailable,
		Message:   "Workflow engine unavailable",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewEngineTimeoutError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineTimeout,
		Message:   "Workflow engine timeout",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEngineRejectedError covers commands the gateway refused (unknown process, bad variables, auth).
func NewEngineRejectedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineRejected,
		Message:   "Workflow engine rejected the command",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeBackendUnavailable,
		ErrCodeEngineUnavailable,
		ErrCodeCacheUnavailable,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeBackendTimeout, ErrCodeEngineTimeout:
		return 2

	case ErrCodeBackendRejected:
		return 1 // only when the backend answered 5xx

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN codes are identical to internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"errorCategory":     GetErrorCategory(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "MISSING_"),
		strings.HasSuffix(codeStr, "_BANK"),
		codeStr == string(ErrCodeNoBankSelected),
		codeStr == string(ErrCodeInvalidRange),
		codeStr == string(ErrCodeFutureEndDate),
		codeStr == string(ErrCodeInvalidInput):
		return "VALIDATION"
	case strings.Contains(codeStr, "BACKEND"), strings.Contains(codeStr, "ANALYSIS"), codeStr == string(ErrCodeResultsNotReady):
		return "BACKEND"
	case strings.HasPrefix(codeStr, "ENGINE_"):
		return "ENGINE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
