package eventbrite

import (
	"errors"
	"net/http"
)

// Kind classifies an API failure.
type Kind string

const (
	KindInvalidArgument    Kind = "InvalidArgument"
	KindUnauthorized       Kind = "Unauthorized"
	KindNotFound           Kind = "NotFound"
	KindBadRequest         Kind = "BadRequest"
	KindServiceUnavailable Kind = "ServiceUnavailable"
	KindRequestFailed      Kind = "RequestFailed"
	KindTimeout            Kind = "Timeout"
	KindOffline            Kind = "Offline"
	KindNetworkError       Kind = "NetworkError"
)

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrBadRequest         = &Error{Kind: KindBadRequest}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrRequestFailed      = &Error{Kind: KindRequestFailed}
	ErrTimeout            = &Error{Kind: KindTimeout}
	ErrOffline            = &Error{Kind: KindOffline}
	ErrNetworkError       = &Error{Kind: KindNetworkError}
)

// Error is returned by every Client operation.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, or 0 when no response was received
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

func invalidArgument(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Status: http.StatusBadRequest, Message: msg}
}

func timeoutError(err error) *Error {
	return &Error{
		Kind:    KindTimeout,
		Status:  http.StatusRequestTimeout,
		Message: "Request timeout",
		Details: "The request took too long to complete",
		Err:     err,
	}
}

func offlineError(err error) *Error {
	return &Error{
		Kind:    KindOffline,
		Message: "No internet connection",
		Details: "Please check your internet connection and try again",
		Err:     err,
	}
}

func networkError(err error) *Error {
	details := "Failed to fetch"
	if err != nil && err.Error() != "" {
		details = err.Error()
	}
	return &Error{
		Kind:    KindNetworkError,
		Message: "Network error or service unavailable",
		Details: details,
		Err:     err,
	}
}
