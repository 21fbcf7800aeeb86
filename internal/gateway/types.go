// Package gateway types - request/response shapes and service contracts.
//
// DESIGN: Handlers depend on the small interfaces below rather than the
// concrete provider services, so handler tests run against fakes and the
// provider packages never import the HTTP layer.
package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/portfolioproxy/gateway/internal/providers/sports"
	"github.com/portfolioproxy/gateway/internal/providers/stock"
	"github.com/portfolioproxy/gateway/internal/providers/weather"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// HeaderRequestID carries the request ID in and out.
	HeaderRequestID = "X-Request-ID"

	// MaxRequestBodySize caps inbound JSON bodies (1MB).
	MaxRequestBodySize = 1 << 20

	// APIPrefix is the namespace for all provider routes.
	APIPrefix = "/api"
)

// =============================================================================
// SERVICE CONTRACTS
// =============================================================================

// ChatService answers one chat message.
type ChatService interface {
	Reply(ctx context.Context, message string) (string, error)
}

// WeatherService reports current weather.
type WeatherService interface {
	ByCity(ctx context.Context, location string) (*weather.Report, error)
	ByCoordinates(ctx context.Context, lat, lon float64) (*weather.Report, error)
}

// StockService reports quotes and history.
type StockService interface {
	Quote(ctx context.Context, symbol string) (*stock.Quote, error)
	History(ctx context.Context, q stock.HistoryQuery) (*stock.History, error)
}

// SportsService reports scoreboards.
type SportsService interface {
	Games(ctx context.Context, sport string, date time.Time) ([]sports.Game, error)
}

// DiscordService reports guild widgets.
type DiscordService interface {
	Widget(ctx context.Context, serverID string) (json.RawMessage, error)
}

// Services bundles every backend the gateway serves.
type Services struct {
	Chat    ChatService
	Weather WeatherService
	Stock   StockService
	Sports  SportsService
	Discord DiscordService
}

// =============================================================================
// WIRE SHAPES
// =============================================================================

// ChatRequest is the chat request body.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the chat response body.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status string `json:"status"`
}
