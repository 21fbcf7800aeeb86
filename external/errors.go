package external

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// maxErrorBodyLen limits error body in error messages to avoid log bloat.
const maxErrorBodyLen = 500

// messagePaths are the places providers put a human-readable error message,
// checked in order.
var messagePaths = []string{
	"message",
	"error.message",
	"error",
	"data.message",
	"data.error",
	"Message",
}

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string // truncated raw body
	Message    string // provider message, if one could be extracted
}

// NewStatusError builds a StatusError from a raw response body.
func NewStatusError(provider string, status int, body []byte) *StatusError {
	errBody := string(body)
	if len(errBody) > maxErrorBodyLen {
		errBody = errBody[:maxErrorBodyLen] + "... (truncated)"
	}
	return &StatusError{
		Provider:   provider,
		StatusCode: status,
		Body:       errBody,
		Message:    ProviderMessage(body),
	}
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Temporary reports whether retrying the call could help.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 408 || e.StatusCode == 429
}

// ProviderMessage extracts a provider error message from a JSON body.
// Returns "" when the body is not JSON or carries no string message.
func ProviderMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range messagePaths {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

// StatusCode returns the provider status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
