// ABOUTME: Structured API errors shared by the chat proxy and its client
// ABOUTME: Carries an HTTP status plus the {code, message} body sent on the wire
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Wire codes.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeNotFound     = "NOT_FOUND"
	CodeRateLimited  = "RATE_LIMITED"
	CodeTimeout      = "TIMEOUT"
	CodeUpstreamBusy = "UPSTREAM_BUSY"
	CodeInternal     = "INTERNAL"
	CodeError        = "ERROR"
)

// InternalMessage is the only text a client ever sees for untagged failures.
const InternalMessage = "Something went wrong"

// Error is a failure explicitly tagged with a status and a client-safe message.
// Err holds the underlying cause for server-side logging and is never serialized.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Code, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Body is the JSON error shape returned to clients.
type Body struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Body returns the wire representation of e.
func (e *Error) Body() Body {
	return Body{Code: e.Code, Message: e.Message}
}

// BadRequest tags a validation failure.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: message}
}

// NotFound tags an unknown route.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

// RateLimited tags a quota rejection.
func RateLimited(message string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: CodeRateLimited, Message: message}
}

// Timeout tags a downstream call that exceeded its budget.
func Timeout(cause error) *Error {
	return &Error{
		Status:  http.StatusGatewayTimeout,
		Code:    CodeTimeout,
		Message: "The model took too long to respond. Please try again.",
		Err:     cause,
	}
}

// UpstreamBusy tags a provider-side rate limit.
func UpstreamBusy(cause error) *Error {
	return &Error{
		Status:  http.StatusServiceUnavailable,
		Code:    CodeUpstreamBusy,
		Message: "The model provider is busy. Please try again shortly.",
		Err:     cause,
	}
}

// Internal wraps an untagged failure in the generic response.
func Internal(cause error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: InternalMessage,
		Err:     cause,
	}
}

// Normalize maps any error onto a client-safe *Error. Tagged errors pass
// through unchanged; deadline overruns become timeouts; everything else
// collapses to Internal.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}

	var tagged *Error
	if errors.As(err, &tagged) && tagged.Status != 0 && tagged.Message != "" {
		if tagged.Code == "" {
			tagged.Code = CodeError
		}
		return tagged
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(err)
	}

	return Internal(err)
}
