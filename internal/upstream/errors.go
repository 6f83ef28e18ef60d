package upstream

import (
	"errors"
	"fmt"
	"net/http"

	"canvasEdMcp/internal/config"
)

var (
	ErrAuth       = errors.New("authentication failed")
	ErrPermission = errors.New("permission denied")
	ErrNotFound   = errors.New("resource not found")
	ErrRateLimit  = errors.New("rate limit exceeded")
	ErrUpstream   = errors.New("upstream error")
	ErrTimeout    = errors.New("request timed out")
	ErrTransport  = errors.New("request failed")
)

// CallError is a classified upstream failure. Message is safe to show to the agent.
type CallError struct {
	Backend config.Backend
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *CallError) Error() string {
	return e.Message
}

func (e *CallError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Classify returns the user-facing message for an HTTP error status.
func Classify(backend config.Backend, status int) string {
	switch status {
	case http.StatusUnauthorized:
		return fmt.Sprintf("%s authentication failed. Please check if API token is valid.", backend)
	case http.StatusForbidden:
		if backend == config.Ed {
			return "Ed permission denied. You may not have access to this course."
		}
		return fmt.Sprintf("%s permission denied.", backend)
	case http.StatusNotFound:
		if backend == config.Ed {
			return "Ed resource not found. Please check if course ID or thread ID is correct."
		}
		return fmt.Sprintf("%s resource not found. Please check if the ID is correct.", backend)
	case http.StatusTooManyRequests:
		return fmt.Sprintf("%s request rate limit exceeded. Please try again later.", backend)
	default:
		return fmt.Sprintf("%s API error (status code: %d).", backend, status)
	}
}

func kindOf(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrAuth
	case http.StatusForbidden:
		return ErrPermission
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimit
	default:
		return ErrUpstream
	}
}

func statusError(backend config.Backend, status int) *CallError {
	return &CallError{Backend: backend, Kind: kindOf(status), Status: status, Message: Classify(backend, status)}
}

func timeoutError(backend config.Backend, err error) *CallError {
	return &CallError{
		Backend: backend,
		Kind:    ErrTimeout,
		Message: fmt.Sprintf("%s request timed out. Please try again later.", backend),
		Err:     err,
	}
}

func transportError(backend config.Backend, err error) *CallError {
	return &CallError{
		Backend: backend,
		Kind:    ErrTransport,
		Message: fmt.Sprintf("%s request failed. Please try again later.", backend),
		Err:     err,
	}
}
