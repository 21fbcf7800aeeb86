// Package main is the entry point for the Portfolio Gateway.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/portfolioproxy/gateway/internal/assistant"
	"github.com/portfolioproxy/gateway/internal/config"
	"github.com/portfolioproxy/gateway/internal/gateway"
	"github.com/portfolioproxy/gateway/internal/monitoring"
)

// Version is set at build time via ldflags.
var Version = "v0.1.0"

// appDir is the per-user directory under ~/.config.
const appDir = "portfolio-gateway"

// startupCheckTimeout bounds the assistant lookup before serving.
const startupCheckTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "portfolio-gateway",
		Short:        "Aggregating REST gateway for weather, stocks, sports, Discord, and an assistant chat",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newCheckCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var configPath string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		Long: `Start the HTTP gateway.

Config is read from --config, then ~/.config/portfolio-gateway/config.yaml,
then ./configs/config.yaml, then the embedded default. API keys come from
the environment; .env files are loaded first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, debug)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and the configured assistant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadEnvFiles()
			cfg, source, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config ok: %s\n", source)

			monitoring.Global(cfg.Monitoring.LoggerConfig())
			info, err := validateAssistant(cmd.Context(), newOrchestrator(cfg, nil))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "assistant ok: %s (%s, model %s)\n", info.Name, info.ID, info.Model)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "portfolio-gateway %s\n", Version)
}

// loadEnvFiles loads .env from standard locations
func loadEnvFiles() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		_ = godotenv.Load()
		return
	}

	// Try loading from ~/.config/portfolio-gateway/.env first
	configEnv := filepath.Join(homeDir, ".config", appDir, ".env")
	if _, err := os.Stat(configEnv); err == nil {
		_ = godotenv.Load(configEnv)
	}

	// Local .env; godotenv never overrides variables that are already set
	_ = godotenv.Load()
}

// resolveServeConfig resolves the config for the serve command.
// Checks: user flag -> filesystem locations -> embedded config.
// Returns raw bytes and source description.
func resolveServeConfig(userConfig string) ([]byte, string, error) {
	if userConfig != "" {
		data, err := os.ReadFile(userConfig)
		if err != nil {
			return nil, "", fmt.Errorf("config file not found: %s", userConfig)
		}
		return data, userConfig, nil
	}

	var searchPaths []string
	if homeDir, _ := os.UserHomeDir(); homeDir != "" {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".config", appDir, "config.yaml"))
	}
	searchPaths = append(searchPaths, filepath.Join("configs", "config.yaml"))

	for _, path := range searchPaths {
		if data, err := os.ReadFile(path); err == nil {
			return data, path, nil
		}
	}

	if data, err := getEmbeddedConfig(defaultConfigName); err == nil {
		return data, "(embedded) " + defaultConfigName + ".yaml", nil
	}

	names, _ := listEmbeddedConfigs()
	return nil, "", fmt.Errorf("no config file found (embedded: %v). Specify --config path", names)
}

func loadConfig(userConfig string) (*config.Config, string, error) {
	data, source, err := resolveServeConfig(userConfig)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadFromBytes(data)
	if err != nil {
		return nil, source, fmt.Errorf("%s: %w", source, err)
	}
	return cfg, source, nil
}

func newOrchestrator(cfg *config.Config, logger *monitoring.Logger) *assistant.Orchestrator {
	var reqLog *monitoring.RequestLogger
	if logger != nil {
		reqLog = monitoring.NewRequestLogger(logger)
	}
	client := assistant.NewOpenAIClient(cfg.Providers.Assistant, nil)
	return assistant.NewOrchestrator(client, cfg.Assistant, reqLog)
}

func validateAssistant(ctx context.Context, orch *assistant.Orchestrator) (assistant.Info, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
	defer cancel()

	info, err := orch.Validate(ctx)
	if err != nil {
		return assistant.Info{}, fmt.Errorf("assistant validation failed: %w", err)
	}
	return info, nil
}

// runServe starts the gateway and blocks until SIGINT/SIGTERM.
func runServe(ctx context.Context, configPath string, debug bool) error {
	loadEnvFiles()

	cfg, source, err := loadConfig(configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return err
	}
	if debug {
		cfg.Monitoring.LogLevel = "debug"
	}
	logger := monitoring.Global(cfg.Monitoring.LoggerConfig())

	logger.Info().
		Str("version", Version).
		Str("config", source).
		Int("port", cfg.Server.Port).
		Msg("Portfolio Gateway starting")

	orch := newOrchestrator(cfg, logger)
	if cfg.Assistant.ValidateOnStartup {
		info, err := validateAssistant(ctx, orch)
		if err != nil {
			logger.Error().Err(err).Msg("startup check failed")
			return err
		}
		logger.Info().
			Str("assistant_id", info.ID).
			Str("name", info.Name).
			Str("model", info.Model).
			Msg("assistant validated")
	}

	gw := gateway.New(cfg, gateway.NewServices(cfg, orch, nil), logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- gw.Start() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("gateway error")
			return err
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := gw.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("gateway shutdown error")
			return err
		}
	}

	logger.Info().Msg("Portfolio Gateway stopped")
	return nil
}
