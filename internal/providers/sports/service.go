package sports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/portfolioproxy/gateway/external"
	"github.com/portfolioproxy/gateway/internal/apperr"
	"github.com/portfolioproxy/gateway/internal/config"
)

// ProviderName labels sports calls in logs and metrics.
const ProviderName = "sportsdata"

// endpoints maps each sport to its by-date scoreboard feed.
var endpoints = map[string]string{
	MLB: "mlb/scores/json/GamesByDate",
	NFL: "nfl/scores/json/ScoresByDate",
	NHL: "nhl/scores/json/GamesByDate",
	NBA: "nba/scores/json/GamesByDate",
}

// Service fetches scoreboards.
type Service struct {
	client  *external.Client
	baseURL string
	keys    map[string]string
	now     func() time.Time
}

// NewService creates a sports service. httpClient may be nil.
func NewService(cfg config.SportsConfig, httpClient *http.Client) *Service {
	keys := make(map[string]string, len(cfg.APIKeys))
	for k, v := range cfg.APIKeys {
		keys[k] = v
	}
	return &Service{
		client:  external.NewClient(ProviderName, cfg.Timeout, httpClient),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		keys:    keys,
		now:     time.Now,
	}
}

// Games returns the games for sport on date. A zero date means today.
func (s *Service) Games(ctx context.Context, sport string, date time.Time) ([]Game, error) {
	sport = strings.ToLower(strings.TrimSpace(sport))
	if !ValidSport(sport) {
		return nil, ErrInvalidSportType
	}
	if date.IsZero() {
		date = s.now()
	}

	target := fmt.Sprintf("%s/%s/%s?%s", s.baseURL, endpoints[sport], FormatDate(date),
		url.Values{"key": {s.keys[sport]}}.Encode())

	body, err := s.client.GetJSON(ctx, target, nil)
	if err != nil {
		return nil, classify(sport, err)
	}

	games, err := Transform(sport, body)
	if err != nil {
		return nil, fmt.Errorf("sports %s: %w", sport, err)
	}
	return games, nil
}

// FormatDate renders the provider's date segment, e.g. 2025-MAR-16.
func FormatDate(t time.Time) string {
	return strings.ToUpper(t.Format("2006-Jan-02"))
}

func classify(sport string, err error) error {
	msg := fmt.Sprintf("Failed to fetch %s games", strings.ToUpper(sport))
	var se *external.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return apperr.NotFound(msg, err).WithProvider(ProviderName)
	}
	return apperr.Upstream(msg, err).WithProvider(ProviderName)
}
