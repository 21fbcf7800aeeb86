// Package gateway serves the aggregator's HTTP API.
//
// DESIGN: One Gateway owns the http.Server, the route table, and the
// monitoring helpers. Handlers translate HTTP into service calls; services
// return classified errors and the gateway is the only place that turns an
// error kind into a status code.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/portfolioproxy/gateway/internal/config"
	"github.com/portfolioproxy/gateway/internal/monitoring"
)

// Gateway is the HTTP front end.
type Gateway struct {
	config        *config.Config
	services      Services
	logger        *monitoring.Logger
	requestLogger *monitoring.RequestLogger
	alerts        *monitoring.AlertManager
	allowed       map[string]bool
	handler       http.Handler
	server        *http.Server
}

// New creates a gateway serving svcs.
func New(cfg *config.Config, svcs Services, logger *monitoring.Logger) *Gateway {
	if logger == nil {
		logger = monitoring.Nop()
	}

	g := &Gateway{
		config:        cfg,
		services:      svcs,
		logger:        logger,
		requestLogger: monitoring.NewRequestLogger(logger),
		alerts:        monitoring.NewAlertManager(logger, cfg.Monitoring.AlertConfig()),
		allowed:       make(map[string]bool, len(cfg.Server.CORSOrigins)),
	}
	for _, origin := range cfg.Server.CORSOrigins {
		g.allowed[origin] = true
	}

	// recovery → logging → security → routes
	g.handler = g.panicRecovery(g.loggingMiddleware(g.security(g.routes())))

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           g.handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}
	return g
}

// Handler returns the full middleware-wrapped handler.
func (g *Gateway) Handler() http.Handler { return g.handler }

// Start blocks serving HTTP until Shutdown. Returns http.ErrServerClosed
// after a clean shutdown.
func (g *Gateway) Start() error {
	log.Info().Str("addr", g.server.Addr).Msg("gateway listening")
	return g.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}
