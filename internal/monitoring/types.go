// Package monitoring - types.go defines shared configuration types.
//
// DESIGN: These types are embedded in config.MonitoringConfig and used by
// the gateway when building loggers and alerts.
package monitoring

import "time"

// LoggerConfig contains logging configuration.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console, auto
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// AlertConfig contains alert thresholds.
type AlertConfig struct {
	HighLatencyThreshold time.Duration `yaml:"high_latency_threshold"`
}
