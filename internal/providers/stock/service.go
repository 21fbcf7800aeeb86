package stock

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/portfolioproxy/gateway/external"
	"github.com/portfolioproxy/gateway/internal/apperr"
	"github.com/portfolioproxy/gateway/internal/config"
)

// ProviderName labels stock calls in logs and metrics.
const ProviderName = "finnhub"

// HistoryQuery selects a candle range. From and To are unix seconds.
type HistoryQuery struct {
	Symbol     string
	Resolution string
	From       int64
	To         int64
}

// Validate checks the query before any upstream call.
func (q HistoryQuery) Validate() error {
	switch {
	case strings.TrimSpace(q.Symbol) == "":
		return apperr.Validation("Symbol parameter is required")
	case strings.TrimSpace(q.Resolution) == "":
		return apperr.Validation("Resolution parameter is required")
	case q.From <= 0 || q.To <= 0:
		return apperr.Validation("From and to must be unix timestamps")
	case q.From > q.To:
		return apperr.Validation("From must not be after to")
	}
	return nil
}

// Service fetches quotes and candles.
type Service struct {
	client  *external.Client
	baseURL string
	apiKey  string
	now     func() time.Time
}

// NewService creates a stock service. httpClient may be nil.
func NewService(cfg config.ProviderConfig, httpClient *http.Client) *Service {
	return &Service{
		client:  external.NewClient(ProviderName, cfg.Timeout, httpClient),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		now:     time.Now,
	}
}

// Quote returns the latest quote for symbol.
func (s *Service) Quote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, apperr.Validation("Symbol parameter is required")
	}

	params := url.Values{"symbol": {symbol}, "token": {s.apiKey}}
	body, err := s.client.GetJSON(ctx, s.baseURL+"/quote?"+params.Encode(), nil)
	if err != nil {
		return nil, classify(err, "Failed to fetch stock data")
	}

	q, err := TransformQuote(symbol, body, s.now())
	if err != nil {
		return nil, fmt.Errorf("stock quote: %w", err)
	}
	return q, nil
}

// History returns price samples for the query range.
func (s *Service) History(ctx context.Context, q HistoryQuery) (*History, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	symbol := strings.TrimSpace(q.Symbol)

	params := url.Values{
		"symbol":     {symbol},
		"resolution": {q.Resolution},
		"from":       {strconv.FormatInt(q.From, 10)},
		"to":         {strconv.FormatInt(q.To, 10)},
		"token":      {s.apiKey},
	}
	body, err := s.client.GetJSON(ctx, s.baseURL+"/stock/candle?"+params.Encode(), nil)
	if err != nil {
		return nil, classify(err, "Failed to fetch historical stock data")
	}

	h, err := TransformHistory(symbol, body, s.now())
	if err != nil {
		return nil, fmt.Errorf("stock history: %w", err)
	}
	return h, nil
}

func classify(err error, fallback string) error {
	var se *external.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return apperr.NotFound("Symbol not found", err).WithProvider(ProviderName)
	}
	return apperr.Upstream(fallback, err).WithProvider(ProviderName)
}
