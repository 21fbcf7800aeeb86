// Provider configuration - upstream endpoints and credentials.
//
// DESIGN: One block per upstream. Every provider that needs a key fails
// validation when the key is empty, naming the YAML path so the operator
// knows which environment variable is missing.
package config

import (
	"fmt"
	"sort"
	"time"
)

// DefaultProviderTimeout is the per-call timeout when a provider omits one.
const DefaultProviderTimeout = 30 * time.Second

// SportCodes are the supported sport path values.
var SportCodes = []string{"mlb", "nfl", "nhl", "nba"}

// ProvidersConfig holds every upstream.
type ProvidersConfig struct {
	Weather   ProviderConfig `yaml:"weather"`
	Stock     ProviderConfig `yaml:"stock"`
	Sports    SportsConfig   `yaml:"sports"`
	Discord   ProviderConfig `yaml:"discord"`
	Assistant ProviderConfig `yaml:"assistant"`
}

// ProviderConfig describes a single-key upstream.
type ProviderConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// SportsConfig holds one key per sport; all sports share a base URL.
type SportsConfig struct {
	BaseURL string            `yaml:"base_url"`
	Timeout time.Duration     `yaml:"timeout"`
	APIKeys map[string]string `yaml:"api_keys"`
}

func (p *ProvidersConfig) applyDefaults() {
	for _, pc := range []*ProviderConfig{&p.Weather, &p.Stock, &p.Discord, &p.Assistant} {
		if pc.Timeout == 0 {
			pc.Timeout = DefaultProviderTimeout
		}
	}
	if p.Sports.Timeout == 0 {
		p.Sports.Timeout = DefaultProviderTimeout
	}
}

// Validate checks base URLs and required keys.
func (p *ProvidersConfig) Validate() error {
	keyed := []struct {
		path string
		cfg  ProviderConfig
	}{
		{"providers.weather", p.Weather},
		{"providers.stock", p.Stock},
		{"providers.assistant", p.Assistant},
	}
	for _, k := range keyed {
		if k.cfg.BaseURL == "" {
			return fmt.Errorf("%s.base_url is required", k.path)
		}
		if k.cfg.APIKey == "" {
			return fmt.Errorf("%s.api_key is required", k.path)
		}
	}

	if p.Discord.BaseURL == "" {
		return fmt.Errorf("providers.discord.base_url is required")
	}

	if p.Sports.BaseURL == "" {
		return fmt.Errorf("providers.sports.base_url is required")
	}
	for _, code := range SportCodes {
		if p.Sports.APIKeys[code] == "" {
			return fmt.Errorf("providers.sports.api_keys.%s is required", code)
		}
	}
	for code := range p.Sports.APIKeys {
		if !isSportCode(code) {
			return fmt.Errorf("providers.sports.api_keys.%s: unknown sport (supported: %v)", code, sortedCodes())
		}
	}

	return nil
}

func isSportCode(code string) bool {
	for _, c := range SportCodes {
		if c == code {
			return true
		}
	}
	return false
}

func sortedCodes() []string {
	out := append([]string(nil), SportCodes...)
	sort.Strings(out)
	return out
}
