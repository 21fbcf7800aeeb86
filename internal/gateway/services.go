package gateway

import (
	"net/http"

	"github.com/portfolioproxy/gateway/internal/config"
	"github.com/portfolioproxy/gateway/internal/providers/discord"
	"github.com/portfolioproxy/gateway/internal/providers/sports"
	"github.com/portfolioproxy/gateway/internal/providers/stock"
	"github.com/portfolioproxy/gateway/internal/providers/weather"
)

// NewServices builds the provider services from cfg around chat.
// httpClient is shared by every provider and may be nil.
func NewServices(cfg *config.Config, chat ChatService, httpClient *http.Client) Services {
	return Services{
		Chat:    chat,
		Weather: weather.NewService(cfg.Providers.Weather, httpClient),
		Stock:   stock.NewService(cfg.Providers.Stock, httpClient),
		Sports:  sports.NewService(cfg.Providers.Sports, httpClient),
		Discord: discord.NewService(cfg.Providers.Discord, httpClient),
	}
}
