// Instrumented transport for SDK-driven upstream calls.
//
// Provides an http.RoundTripper that records the same upstream metrics as
// Client for libraries that own their own request loop (the OpenAI SDK).
package external

import (
	"net/http"
	"time"

	"github.com/portfolioproxy/gateway/internal/monitoring"
)

// MeteredTransport is an http.RoundTripper that observes every round trip.
type MeteredTransport struct {
	provider string
	base     http.RoundTripper
}

// NewMeteredTransport wraps base (nil uses http.DefaultTransport).
func NewMeteredTransport(provider string, base http.RoundTripper) *MeteredTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &MeteredTransport{provider: provider, base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *MeteredTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", userAgent)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		monitoring.ObserveUpstream(t.provider, monitoring.OutcomeNetworkError, time.Since(start))
		return nil, err
	}

	outcome := monitoring.OutcomeOK
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = monitoring.OutcomeStatus(resp.StatusCode)
	}
	monitoring.ObserveUpstream(t.provider, outcome, time.Since(start))
	return resp, nil
}

// MeteredClient returns an *http.Client for provider with a per-call timeout.
// base may be nil; its transport is wrapped, not replaced.
func MeteredClient(provider string, timeout time.Duration, base *http.Client) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var rt http.RoundTripper
	if base != nil {
		rt = base.Transport
	}
	return &http.Client{
		Transport: NewMeteredTransport(provider, rt),
		Timeout:   timeout,
	}
}
