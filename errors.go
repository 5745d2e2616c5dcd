package walletgate

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrBadRequest is returned when the server rejects the request payload
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized is returned when a signature, nonce or session token is rejected
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the session lacks the required role
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when the account or resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when the resource already exists
	ErrConflict = errors.New("conflict")

	// ErrRateLimited is returned when the client exceeded the challenge rate
	ErrRateLimited = errors.New("rate limited")
)

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("walletgate: %d %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code to one of the package sentinels
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}
