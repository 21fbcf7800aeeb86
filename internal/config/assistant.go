// Assistant configuration - run choreography tuning.
//
// DESIGN: Retry applies to each individual call (thread, message, run,
// status fetch, message list). Poll bounds the status loop as a whole and
// is independent of the per-call timeout in providers.assistant.timeout.
package config

import (
	"fmt"
	"time"
)

// AssistantConfig configures the conversation orchestrator.
type AssistantConfig struct {
	AssistantID       string      `yaml:"assistant_id"`        // Assistant to run against
	Model             string      `yaml:"model"`               // Optional model override for runs
	Instructions      string      `yaml:"instructions"`        // Optional run instructions
	ValidateOnStartup bool        `yaml:"validate_on_startup"` // Retrieve the assistant before serving
	Retry             RetryConfig `yaml:"retry"`
	Poll              PollConfig  `yaml:"poll"`
}

// RetryConfig bounds retries of a single call.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"` // Total attempts including the first
	BaseDelay   time.Duration `yaml:"base_delay"`   // Delay grows as attempt × base_delay
}

// PollConfig shapes the run status loop.
type PollConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval"` // First wait between polls
	Multiplier      float64       `yaml:"multiplier"`       // Growth factor per growth_step elapsed
	GrowthStep      time.Duration `yaml:"growth_step"`      // Elapsed time per growth
	MaxInterval     time.Duration `yaml:"max_interval"`     // Interval cap
	Timeout         time.Duration `yaml:"timeout"`          // Total polling ceiling
}

// DefaultPollConfig returns the polling defaults.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		InitialInterval: time.Second,
		Multiplier:      1.5,
		GrowthStep:      5 * time.Second,
		MaxInterval:     5 * time.Second,
		Timeout:         45 * time.Second,
	}
}

// DefaultRetryConfig returns the per-call retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}
}

func (a *AssistantConfig) applyDefaults() {
	dr := DefaultRetryConfig()
	if a.Retry.MaxAttempts == 0 {
		a.Retry.MaxAttempts = dr.MaxAttempts
	}
	if a.Retry.BaseDelay == 0 {
		a.Retry.BaseDelay = dr.BaseDelay
	}

	dp := DefaultPollConfig()
	if a.Poll.InitialInterval == 0 {
		a.Poll.InitialInterval = dp.InitialInterval
	}
	if a.Poll.Multiplier == 0 {
		a.Poll.Multiplier = dp.Multiplier
	}
	if a.Poll.GrowthStep == 0 {
		a.Poll.GrowthStep = dp.GrowthStep
	}
	if a.Poll.MaxInterval == 0 {
		a.Poll.MaxInterval = dp.MaxInterval
	}
	if a.Poll.Timeout == 0 {
		a.Poll.Timeout = dp.Timeout
	}
}

// Validate checks the assistant settings.
func (a *AssistantConfig) Validate() error {
	if a.AssistantID == "" {
		return fmt.Errorf("assistant.assistant_id is required")
	}
	if a.Retry.MaxAttempts < 1 {
		return fmt.Errorf("assistant.retry.max_attempts must be >= 1, got %d", a.Retry.MaxAttempts)
	}
	if a.Retry.BaseDelay < 0 {
		return fmt.Errorf("assistant.retry.base_delay must not be negative")
	}
	return a.Poll.Validate()
}

// Validate checks the polling settings.
func (p *PollConfig) Validate() error {
	if p.InitialInterval <= 0 {
		return fmt.Errorf("assistant.poll.initial_interval must be positive")
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("assistant.poll.multiplier must be >= 1, got %g", p.Multiplier)
	}
	if p.GrowthStep <= 0 {
		return fmt.Errorf("assistant.poll.growth_step must be positive")
	}
	if p.MaxInterval < p.InitialInterval {
		return fmt.Errorf("assistant.poll.max_interval (%s) must be >= initial_interval (%s)", p.MaxInterval, p.InitialInterval)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("assistant.poll.timeout must be positive")
	}
	return nil
}
