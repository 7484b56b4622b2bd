package service

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidRecipient  = errors.New("invalid recipient")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotConnected      = errors.New("session is not connected")
	ErrRateLimitExceeded = errors.New("daily send limit exceeded")
	ErrLogoutConflict    = errors.New("no active session to logout")
)

// SendFailedError wraps a protocol-client send error; the underlying message
// is preserved and surfaced verbatim to the caller.
type SendFailedError struct {
	Cause error
}

func (e *SendFailedError) Error() string {
	return fmt.Sprintf("send failed: %v", e.Cause)
}

func (e *SendFailedError) Unwrap() error {
	return e.Cause
}

// ErrorCode maps a dispatch error to its machine-readable code.
func ErrorCode(err error) string {
	var sendErr *SendFailedError
	switch {
	case errors.Is(err, ErrInvalidRecipient):
		return "INVALID_RECIPIENT"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrNotConnected):
		return "NOT_CONNECTED"
	case errors.Is(err, ErrRateLimitExceeded):
		return "RATE_LIMIT_EXCEEDED"
	case errors.Is(err, ErrLogoutConflict):
		return "LOGOUT_CONFLICT"
	case errors.As(err, &sendErr):
		return "SEND_FAILED"
	default:
		return "INTERNAL_ERROR"
	}
}

// HTTPStatus maps a dispatch error to the failure class of the response.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRecipient), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrLogoutConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotConnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
