// HTTP client for third-party data providers.
//
// Client is the single outbound path for the thin provider services
// (weather, stock, sports, discord). The assistant client reuses StatusError
// so every upstream failure has the same shape.
//
// USAGE:
//   - client := external.NewClient("weather", 30*time.Second, nil)
//   - body, err := client.GetJSON(ctx, url, nil)
//   - var se *external.StatusError; errors.As(err, &se) for status handling
package external

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/portfolioproxy/gateway/internal/monitoring"
)

const (
	// DefaultTimeout for provider calls.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize prevents OOM on unexpectedly large responses (10MB).
	maxResponseSize = 10 * 1024 * 1024

	// userAgent identifies the gateway to providers.
	userAgent = "Portfolio-Gateway/1.0"
)

// Client performs provider calls with a fixed per-call timeout.
type Client struct {
	provider   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a client for one provider.
// If httpClient is nil a default client is used; the timeout is applied via
// the request context either way.
func NewClient(provider string, timeout time.Duration, httpClient *http.Client) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{} // timeout via context, not client
	}
	return &Client{provider: provider, timeout: timeout, httpClient: httpClient}
}

// GetJSON issues a GET and returns the raw body of a 2xx response.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, headers)
}

func (c *Client) do(ctx context.Context, method, rawURL string, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", c.provider, redactURLError(err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		monitoring.ObserveUpstream(c.provider, monitoring.OutcomeNetworkError, time.Since(start))
		return nil, fmt.Errorf("%s request failed: %w", c.provider, redactURLError(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		monitoring.ObserveUpstream(c.provider, monitoring.OutcomeNetworkError, time.Since(start))
		return nil, fmt.Errorf("failed to read %s response: %w", c.provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		monitoring.ObserveUpstream(c.provider, monitoring.OutcomeStatus(resp.StatusCode), time.Since(start))
		statusErr := NewStatusError(c.provider, resp.StatusCode, respBody)
		log.Debug().
			Str("provider", c.provider).
			Int("status", resp.StatusCode).
			Str("body", statusErr.Body).
			Msg("provider returned error status")
		return nil, statusErr
	}

	monitoring.ObserveUpstream(c.provider, monitoring.OutcomeOK, time.Since(start))
	return respBody, nil
}

// redactURLError drops the query from a *url.Error. Provider keys travel as
// query parameters and the error ends up in logs.
func redactURLError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	return &url.Error{Op: ue.Op, URL: redactURL(ue.URL), Err: ue.Err}
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable url)"
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.User = nil
	return u.String()
}
