package api

import (
	"errors"
	"fmt"
)

// Error kinds. Classified failures wrap one of these so callers can use [errors.Is].
var (
	ErrCredentialsRequired = errors.New("a client id is required")
	ErrInvalidCountryCode  = errors.New("country code must be a two letter ISO code")
	ErrCountryCodeRequired = errors.New("a country code is required for this operation")
	ErrAPINotAvailable     = errors.New("the service is not available in this territory")
	ErrInvalidCredentials  = errors.New("the client id or user token was rejected")
	ErrNetworkLimited      = errors.New("network access is limited")
	ErrNetworkUnavailable  = errors.New("network unavailable")
	ErrAPICallFailed       = errors.New("API call failed")
	ErrUserAuthRequired    = errors.New("user authentication required")
	ErrInvalidArgument     = errors.New("invalid argument")
)

// Error is a classified API failure.
//
// Kind is always one of the package sentinels; Err carries the underlying cause when there is one
// (a transport error, a JSON decode error).
type Error struct {
	Kind       error
	StatusCode int // zero when no response was received
	RequestID  string
	Body       string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("%s [request-id: %s]", msg, e.RequestID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to [errors.Is] and [errors.As].
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds an [Error] of the given kind.
func NewError(kind error, statusCode int, cause error) *Error {
	return &Error{Kind: kind, StatusCode: statusCode, Err: cause}
}

// ArgumentError reports a missing or unsupported command argument.
func ArgumentError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// IsArgumentError checks if the error came from command validation.
func IsArgumentError(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsAuthError checks if the error means the credentials or user token need attention.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUserAuthRequired)
}

// StatusCodeOf returns the HTTP status carried by a classified error, or zero.
func StatusCodeOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// classified reports whether err already carries a taxonomy kind and must be passed through.
func classified(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}
