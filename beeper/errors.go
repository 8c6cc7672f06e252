package beeper

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind identifies which variant of Error is active
type ErrorKind int

const (
	KindAPI ErrorKind = iota
	KindTransport
	KindSerialization
	KindURL
	KindConfig
	KindBadRequest
	KindAuthentication
	KindPermissionDenied
	KindNotFound
	KindConflict
	KindUnprocessableEntity
	KindRateLimit
	KindInternalServer
)

// String returns a human-readable name for the kind
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport error"
	case KindSerialization:
		return "serialization error"
	case KindURL:
		return "url error"
	case KindConfig:
		return "configuration error"
	case KindBadRequest:
		return "bad request"
	case KindAuthentication:
		return "authentication error"
	case KindPermissionDenied:
		return "permission denied"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindUnprocessableEntity:
		return "unprocessable entity"
	case KindRateLimit:
		return "rate limited"
	case KindInternalServer:
		return "internal server error"
	default:
		return "api error"
	}
}

// Sentinel errors, one per kind. An *Error matches the sentinel of its kind
// with errors.Is.
var (
	ErrAPI                 = errors.New("beeper: api error")
	ErrTransport           = errors.New("beeper: transport error")
	ErrSerialization       = errors.New("beeper: serialization error")
	ErrURL                 = errors.New("beeper: url error")
	ErrConfig              = errors.New("beeper: configuration error")
	ErrBadRequest          = errors.New("beeper: bad request")
	ErrAuthentication      = errors.New("beeper: authentication error")
	ErrPermissionDenied    = errors.New("beeper: permission denied")
	ErrNotFound            = errors.New("beeper: not found")
	ErrConflict            = errors.New("beeper: conflict")
	ErrUnprocessableEntity = errors.New("beeper: unprocessable entity")
	ErrRateLimit           = errors.New("beeper: rate limited")
	ErrInternalServer      = errors.New("beeper: internal server error")
)

var kindSentinels = map[ErrorKind]error{
	KindAPI:                 ErrAPI,
	KindTransport:           ErrTransport,
	KindSerialization:       ErrSerialization,
	KindURL:                 ErrURL,
	KindConfig:              ErrConfig,
	KindBadRequest:          ErrBadRequest,
	KindAuthentication:      ErrAuthentication,
	KindPermissionDenied:    ErrPermissionDenied,
	KindNotFound:            ErrNotFound,
	KindConflict:            ErrConflict,
	KindUnprocessableEntity: ErrUnprocessableEntity,
	KindRateLimit:           ErrRateLimit,
	KindInternalServer:      ErrInternalServer,
}

// Error is the single error type returned by the client. Exactly one Kind is
// active per value. Status, Code and Details are only set for HTTP kinds.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Code    string
	Details map[string]string
	// Err is the underlying cause for transport, serialization, URL and
	// configuration failures.
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Code != "":
		return fmt.Sprintf("beeper: %s (%d, %s): %s", e.Kind, e.Status, e.Code, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("beeper: %s (%d): %s", e.Kind, e.Status, e.Message)
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("beeper: %s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("beeper: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("beeper: %s: %s", e.Kind, e.Message)
	}
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// Retryable reports whether re-issuing the identical request may succeed.
//
// The generic API kind is judged by status alone: 408 and anything >= 500
// are retryable.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTransport:
		return !errors.Is(e.Err, context.Canceled)
	case KindConflict, KindRateLimit, KindInternalServer:
		return true
	case KindAPI:
		return e.Status == 408 || e.Status >= 500
	default:
		return false
	}
}

// IsRetryable reports whether err is an *Error that may succeed on retry
func IsRetryable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

// KindOf returns the kind of err, or KindAPI and false when err is not an *Error
func KindOf(err error) (ErrorKind, bool) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return KindAPI, false
	}
	return apiErr.Kind, true
}

// IsNotFound checks if the error indicates a not found response
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if the error indicates an authentication or
// permission failure
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrAuthentication) || errors.Is(err, ErrPermissionDenied)
}

func configError(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf(format, args...)}
}

func transportError(message string, err error) *Error {
	return &Error{Kind: KindTransport, Message: message, Err: err}
}
