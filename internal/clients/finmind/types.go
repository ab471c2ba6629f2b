package finmind

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aristath/finlookup/internal/domain"
)

// response is the envelope every FinMind v4 data call returns.
type response struct {
	Msg    string  `json:"msg"`
	Status int     `json:"status"`
	Data   rawRows `json:"data"`
}

// APIError represents a non-2xx HTTP response or a non-success body status.
type APIError struct {
	StatusCode int
	Message    string
	Dataset    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FinMind API error: %s (status: %d, dataset: %s)", e.Message, e.StatusCode, e.Dataset)
}

// Unwrap classifies the error into the shared taxonomy.
func (e *APIError) Unwrap() error {
	return domain.ErrRemoteUnavailable
}

// retryable reports whether another attempt may succeed.
func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.retryable()
	}
	// Transport errors (timeouts, resets) are retryable; payload errors are not.
	return !errors.Is(err, domain.ErrMalformedDataset)
}
