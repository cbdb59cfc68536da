// Package errors defines the error taxonomy shared across the retrieval
// engine: a machine-readable code plus a human message, per §7 of the
// design. Every fallible boundary in this module returns (or wraps) one of
// these instead of an ad-hoc error string.
package errors

import "fmt"

// Code is a machine-readable error classification.
type Code string

const (
	Config       Code = "config_error"
	Connection   Code = "connection_error"
	Timeout      Code = "timeout_error"
	Auth         Code = "auth_error"
	NotFound     Code = "not_found"
	InvalidInput Code = "invalid_input"
	RateLimited  Code = "rate_limited"
	Internal     Code = "internal_error"
	Ingestion    Code = "ingestion_error"
)

// Error is the typed error carried across component boundaries.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// ToEnvelope renders the error as the external error envelope (§6).
func (e *Error) ToEnvelope() map[string]string {
	return map[string]string{"error_code": string(e.Code), "message": e.Message}
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func configf(format string, args ...any) *Error { return New(Config, fmt.Sprintf(format, args...)) }

func Configf(format string, args ...any) *Error       { return configf(format, args...) }
func Connectionf(format string, args ...any) *Error   { return New(Connection, fmt.Sprintf(format, args...)) }
func Timeoutf(format string, args ...any) *Error      { return New(Timeout, fmt.Sprintf(format, args...)) }
func Authf(format string, args ...any) *Error         { return New(Auth, fmt.Sprintf(format, args...)) }
func NotFoundf(format string, args ...any) *Error     { return New(NotFound, fmt.Sprintf(format, args...)) }
func InvalidInputf(format string, args ...any) *Error { return New(InvalidInput, fmt.Sprintf(format, args...)) }
func RateLimitedf(format string, args ...any) *Error  { return New(RateLimited, fmt.Sprintf(format, args...)) }
func Internalf(format string, args ...any) *Error     { return New(Internal, fmt.Sprintf(format, args...)) }
func Ingestionf(format string, args ...any) *Error    { return New(Ingestion, fmt.Sprintf(format, args...)) }

// CodeOf classifies any error for retry/degradation decisions. Non-*Error
// values classify as Internal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Code
	}
	return Internal
}

// asError is a tiny local errors.As to avoid importing the stdlib package
// under the same name as this package.
func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Retryable reports whether the retry policy of §5 applies to this error:
// connection, timeout, and rate_limited are retried; auth and invalid_input
// are not.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case Connection, Timeout, RateLimited:
		return true
	default:
		return false
	}
}
