// Package monitoring - alerts.go flags anomalies and errors.
//
// DESIGN: AlertManager logs notable events at appropriate levels:
//   - FlagHighLatency:    Warn when request exceeds threshold
//   - FlagRequestFailure: Once per failed request, level by status and cause
//   - FlagPanic:          Error on recovered panics
package monitoring

import (
	"time"

	"github.com/rs/zerolog"
)

// AlertManager flags anomalies and errors.
type AlertManager struct {
	logger               *Logger
	highLatencyThreshold time.Duration
}

// NewAlertManager creates a new alert manager.
func NewAlertManager(logger *Logger, cfg AlertConfig) *AlertManager {
	threshold := cfg.HighLatencyThreshold
	if threshold == 0 {
		threshold = 10 * time.Second
	}
	return &AlertManager{logger: logger, highLatencyThreshold: threshold}
}

// FlagHighLatency logs when request latency exceeds threshold.
func (am *AlertManager) FlagHighLatency(requestID string, latency time.Duration, path string) {
	if latency < am.highLatencyThreshold {
		return
	}
	am.logger.Warn().
		Str("request_id", requestID).
		Dur("latency", latency).
		Str("path", path).
		Msg("high_latency")
}

// FailureInfo describes a failure answered to a caller.
type FailureInfo struct {
	RequestID      string
	Path           string
	Kind           string
	Status         int    // status returned to the caller
	Provider       string // upstream at fault, if any
	UpstreamStatus int    // upstream HTTP status, 0 if none
	Err            error
}

// FlagRequestFailure logs a failure returned to the caller.
// 4xx are logged at debug; provider faults at warn; everything else at error.
func (am *AlertManager) FlagRequestFailure(info *FailureInfo) {
	var event *zerolog.Event
	switch {
	case info.Status < 500:
		event = am.logger.Debug()
	case info.Provider != "" && info.Status != 500:
		event = am.logger.Warn()
	default:
		event = am.logger.Error()
	}
	event = event.
		Str("request_id", info.RequestID).
		Str("path", info.Path).
		Str("kind", info.Kind).
		Int("status", info.Status)
	if info.Provider != "" {
		event = event.Str("provider", info.Provider)
	}
	if info.UpstreamStatus != 0 {
		event = event.Int("upstream_status", info.UpstreamStatus)
	}
	event.Err(info.Err).Msg("request_failed")
}

// FlagPanic logs recovered panic.
func (am *AlertManager) FlagPanic(requestID string, panicValue interface{}, stack string) {
	am.logger.Error().
		Str("request_id", requestID).
		Interface("panic", panicValue).
		Str("stack", stack).
		Msg("panic_recovered")
}
