// Package discord reads public guild widgets.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/portfolioproxy/gateway/external"
	"github.com/portfolioproxy/gateway/internal/apperr"
	"github.com/portfolioproxy/gateway/internal/config"
)

// ProviderName labels discord calls in logs and metrics.
const ProviderName = "discord"

// WidgetDisabledMessage is returned when the guild has no public widget.
const WidgetDisabledMessage = "Discord widget is not enabled for this server. Please enable it in server settings."

// Service fetches widgets. The widget endpoint needs no credentials.
type Service struct {
	client  *external.Client
	baseURL string
}

// NewService creates a discord service. httpClient may be nil.
func NewService(cfg config.ProviderConfig, httpClient *http.Client) *Service {
	return &Service{
		client:  external.NewClient(ProviderName, cfg.Timeout, httpClient),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Widget returns the widget JSON for serverID, a numeric guild snowflake,
// exactly as the provider sent it.
func (s *Service) Widget(ctx context.Context, serverID string) (json.RawMessage, error) {
	if !isSnowflake(serverID) {
		return nil, apperr.Validation("Server ID must be a numeric Discord guild ID")
	}

	body, err := s.client.GetJSON(ctx, fmt.Sprintf("%s/guilds/%s/widget.json", s.baseURL, serverID), nil)
	if err != nil {
		var se *external.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, apperr.NotFound(WidgetDisabledMessage, err).WithProvider(ProviderName)
		}
		return nil, apperr.Upstream("Failed to fetch Discord data", err).WithProvider(ProviderName)
	}

	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return nil, apperr.InvalidData("Invalid Discord data received from API").WithProvider(ProviderName)
	}
	return json.RawMessage(body), nil
}

func isSnowflake(id string) bool {
	if id == "" || len(id) > 20 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
