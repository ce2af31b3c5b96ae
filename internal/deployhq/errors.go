package deployhq

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error so callers can discriminate on it without type assertions.
type Kind int

const (
	// KindPlatform is any non-2xx response or transport failure not covered by a more specific kind.
	KindPlatform Kind = iota
	// KindConfiguration is raised synchronously when a client cannot be constructed.
	KindConfiguration
	// KindAuthentication means the upstream rejected the credentials (401 or 403).
	KindAuthentication
	// KindValidation means the upstream rejected the request payload (422).
	KindValidation
	// KindTimeout means the request was aborted after the configured timeout.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuthentication:
		return "authentication"
	case KindValidation:
		return "validation"
	case KindTimeout:
		return "timeout"
	default:
		return "platform"
	}
}

// Sentinel errors for use with errors.Is.
var (
	ErrPlatform       = errors.New("deployhq api error")
	ErrConfiguration  = errors.New("invalid client configuration")
	ErrAuthentication = errors.New("authentication failed")
	ErrValidation     = errors.New("validation failed")
	ErrTimeout        = errors.New("request timeout")
)

// Error is the single error type returned by the API client.
//
// StatusCode is zero when no HTTP status is known. Response holds whatever
// payload could be recovered: the decoded JSON body for validation errors,
// the raw response text for other HTTP failures.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Response   any
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrPlatform:
		return true
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrTimeout:
		return e.Kind == KindTimeout
	}
	return false
}

// NewAuthenticationError returns an authentication error with the fixed 401 status.
func NewAuthenticationError(message string) *Error {
	if message == "" {
		message = "Authentication failed"
	}
	return &Error{Kind: KindAuthentication, Message: message, StatusCode: http.StatusUnauthorized}
}

// NewValidationError returns a 422 error carrying the upstream detail.
func NewValidationError(message string, response any) *Error {
	return &Error{
		Kind:       KindValidation,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Response:   response,
	}
}

// NewTimeoutError returns a 408 error for a locally aborted request.
func NewTimeoutError(err error) *Error {
	return &Error{
		Kind:       KindTimeout,
		Message:    "Request timeout",
		StatusCode: http.StatusRequestTimeout,
		Err:        err,
	}
}

func newConfigurationError(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

func newPlatformError(message string, statusCode int, response any, err error) *Error {
	return &Error{
		Kind:       KindPlatform,
		Message:    message,
		StatusCode: statusCode,
		Response:   response,
		Err:        err,
	}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
