// Monitoring configuration - logging and alert settings.
//
// DESIGN: Logging (zerolog) is for operators; metrics (Prometheus) are always
// on and need no settings.
package config

import (
	"time"

	"github.com/portfolioproxy/gateway/internal/monitoring"
)

// MonitoringConfig contains all monitoring settings.
type MonitoringConfig struct {
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // json, console, auto
	LogOutput string `yaml:"log_output"` // stdout, stderr, or file path

	HighLatencyThreshold time.Duration `yaml:"high_latency_threshold"` // Warn above this
}

// LoggerConfig converts to the monitoring package type.
func (m MonitoringConfig) LoggerConfig() monitoring.LoggerConfig {
	return monitoring.LoggerConfig{Level: m.LogLevel, Format: m.LogFormat, Output: m.LogOutput}
}

// AlertConfig converts to the monitoring package type.
func (m MonitoringConfig) AlertConfig() monitoring.AlertConfig {
	return monitoring.AlertConfig{HighLatencyThreshold: m.HighLatencyThreshold}
}
