package backend

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"

	"iedi-workers/internal/common/errors"
)

// ErrInvalidResponse means a successful response whose body was not the expected JSON.
var ErrInvalidResponse = stderrors.New("resposta inválida do servidor")

// ErrContractViolation means a request was refused locally before being sent.
var ErrContractViolation = stderrors.New("analysis request violates backend contract")

// APIError is a non-2xx answer. Message is the backend's {error} text or "Erro HTTP: <code>".
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Endpoint, e.Message, e.StatusCode)
}

// IsNotFound reports a 404 anywhere in err's chain.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return stderrors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Classify maps a client error to the job-level error taxonomy.
func Classify(err error, endpoint, analysisID string) *errors.StandardError {
	var apiErr *APIError
	var netErr net.Error

	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusNotFound && analysisID != "" {
			return errors.NewAnalysisNotFoundError(analysisID)
		}
		return errors.NewBackendRejectedError(apiErr.StatusCode, apiErr.Message)
	case stderrors.Is(err, ErrContractViolation):
		return errors.NewInvalidInputError(err.Error())
	case stderrors.Is(err, ErrInvalidResponse):
		return errors.NewInvalidBackendResponseError(endpoint)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewBackendTimeoutError(endpoint)
	case stderrors.As(err, &netErr) && netErr.Timeout():
		return errors.NewBackendTimeoutError(endpoint)
	default:
		return errors.NewBackendUnavailableError(endpoint, err)
	}
}
