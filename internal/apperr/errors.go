// Package apperr defines the failure kinds shared by providers, the assistant
// orchestrator, and the HTTP boundary.
//
// DESIGN: Services classify every failure into a Kind and attach a short,
// stable message safe to show callers. The wrapped cause keeps the provider
// detail for logs only. Only the gateway maps kinds to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorises a failure.
type Kind string

const (
	KindValidation          Kind = "validation_error"
	KindUpstreamNotFound    Kind = "upstream_not_found"
	KindUpstream            Kind = "upstream_error"
	KindUpstreamRunFailed   Kind = "upstream_run_failed"
	KindTimeout             Kind = "timeout"
	KindInvalidUpstreamData Kind = "invalid_upstream_data"
	KindNoAssistantResponse Kind = "no_assistant_response"
	KindInternal            Kind = "internal_error"
)

// Error is a classified failure.
type Error struct {
	Kind     Kind
	Message  string // stable, caller-facing
	Provider string // upstream that caused it, if any
	Err      error  // underlying cause, logged but never returned to callers
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Provider != "":
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Provider, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Provider != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// WithProvider returns a copy of e tagged with the provider name.
func (e *Error) WithProvider(provider string) *Error {
	cp := *e
	cp.Provider = provider
	return &cp
}

// Validation reports bad or missing caller input.
func Validation(message string) *Error { return New(KindValidation, message) }

// Upstream reports a provider failure after any retries were exhausted.
func Upstream(message string, cause error) *Error { return Wrap(KindUpstream, message, cause) }

// NotFound reports a provider 404.
func NotFound(message string, cause error) *Error { return Wrap(KindUpstreamNotFound, message, cause) }

// InvalidData reports a structurally invalid provider payload.
func InvalidData(message string) *Error { return New(KindInvalidUpstreamData, message) }

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message for err.
// Unclassified errors get a generic message so internals never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}
