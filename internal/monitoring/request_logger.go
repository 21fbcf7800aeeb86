// Package monitoring - request_logger.go logs HTTP request lifecycle.
//
// DESIGN: Structured logging for request tracing at DEBUG level:
//   - LogIncoming:  Request received from client
//   - LogResponse:  Response sent to client
//   - LogRunState:  Assistant run state transitions
package monitoring

import (
	"net/http"
	"time"
)

// RequestLogger logs HTTP request lifecycle events.
type RequestLogger struct {
	logger *Logger
}

// NewRequestLogger creates a new request logger.
func NewRequestLogger(logger *Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

// RequestInfo contains incoming request information.
type RequestInfo struct {
	RequestID  string
	Method     string
	Path       string
	Query      string
	RemoteAddr string
	BodySize   int
	StartTime  time.Time
}

// NewRequestInfo creates RequestInfo from an HTTP request.
func NewRequestInfo(r *http.Request, requestID string, bodySize int) *RequestInfo {
	return &RequestInfo{
		RequestID:  requestID,
		Method:     r.Method,
		Path:       r.URL.Path,
		Query:      r.URL.RawQuery,
		RemoteAddr: r.RemoteAddr,
		BodySize:   bodySize,
		StartTime:  time.Now(),
	}
}

// LogIncoming logs an incoming request.
func (rl *RequestLogger) LogIncoming(info *RequestInfo) {
	rl.logger.Debug().
		Str("request_id", info.RequestID).
		Str("method", info.Method).
		Str("path", info.Path).
		Int("body_size", info.BodySize).
		Msg("incoming")
}

// ResponseInfo contains response information.
type ResponseInfo struct {
	RequestID  string
	StatusCode int
	Latency    time.Duration
}

// LogResponse logs a response.
func (rl *RequestLogger) LogResponse(info *ResponseInfo) {
	rl.logger.Debug().
		Str("request_id", info.RequestID).
		Int("status", info.StatusCode).
		Dur("latency", info.Latency).
		Msg("response")
}

// RunStateInfo describes one assistant run state transition.
type RunStateInfo struct {
	RequestID string
	ThreadID  string
	RunID     string
	State     string
	Status    string
	Polls     int
	Elapsed   time.Duration
}

// LogRunState logs an assistant run state transition.
func (rl *RequestLogger) LogRunState(info *RunStateInfo) {
	event := rl.logger.Debug().
		Str("request_id", info.RequestID).
		Str("state", info.State)
	if info.ThreadID != "" {
		event = event.Str("thread_id", info.ThreadID)
	}
	if info.RunID != "" {
		event = event.Str("run_id", info.RunID)
	}
	if info.Status != "" {
		event = event.Str("status", info.Status)
	}
	if info.Polls > 0 {
		event = event.Int("polls", info.Polls).Dur("elapsed", info.Elapsed)
	}
	event.Msg("assistant_run")
}
