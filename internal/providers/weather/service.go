package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/portfolioproxy/gateway/external"
	"github.com/portfolioproxy/gateway/internal/apperr"
	"github.com/portfolioproxy/gateway/internal/config"
)

// ProviderName labels weather calls in logs and metrics.
const ProviderName = "openweather"

// Service fetches current weather.
type Service struct {
	client  *external.Client
	baseURL string
	apiKey  string
}

// NewService creates a weather service. httpClient may be nil.
func NewService(cfg config.ProviderConfig, httpClient *http.Client) *Service {
	return &Service{
		client:  external.NewClient(ProviderName, cfg.Timeout, httpClient),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// ByCity returns the weather for a free-text location such as "Boston,US".
func (s *Service) ByCity(ctx context.Context, location string) (*Report, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, apperr.Validation("Location parameter is required")
	}
	return s.fetch(ctx, url.Values{"q": {location}})
}

// ByCoordinates returns the weather at a latitude/longitude.
func (s *Service) ByCoordinates(ctx context.Context, lat, lon float64) (*Report, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, apperr.Validation("Coordinates out of range")
	}
	return s.fetch(ctx, url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	})
}

func (s *Service) fetch(ctx context.Context, params url.Values) (*Report, error) {
	params.Set("appid", s.apiKey)
	params.Set("units", "imperial")

	body, err := s.client.GetJSON(ctx, s.baseURL+"/weather?"+params.Encode(), nil)
	if err != nil {
		return nil, classify(err)
	}

	report, err := Transform(body)
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	return report, nil
}

// classify maps client failures onto error kinds. An unknown city is the
// caller's mistake, so 404 is a validation error rather than a not-found.
func classify(err error) error {
	var se *external.StatusError
	if !errors.As(err, &se) {
		return apperr.Upstream("Failed to fetch weather data", err).WithProvider(ProviderName)
	}
	switch se.StatusCode {
	case http.StatusNotFound:
		return apperr.Wrap(apperr.KindValidation, "Location not found", err).WithProvider(ProviderName)
	case http.StatusUnauthorized:
		return apperr.Upstream("Invalid API key", err).WithProvider(ProviderName)
	default:
		return apperr.Upstream("Failed to fetch weather data", err).WithProvider(ProviderName)
	}
}
