package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/api"
	"github.com/bryanchriswhite/RetroDesk/internal/apphost"
	"github.com/bryanchriswhite/RetroDesk/internal/config"
	"github.com/bryanchriswhite/RetroDesk/internal/content"
	"github.com/bryanchriswhite/RetroDesk/internal/desktop"
	"github.com/bryanchriswhite/RetroDesk/internal/embed"
	"github.com/bryanchriswhite/RetroDesk/internal/fetch"
	"github.com/bryanchriswhite/RetroDesk/internal/icon"
	"github.com/bryanchriswhite/RetroDesk/internal/logger"
	"github.com/bryanchriswhite/RetroDesk/internal/relay"
	"github.com/bryanchriswhite/RetroDesk/internal/tray"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the RetroDesk server",
	Long: `Start the RetroDesk HTTP server.

The server exposes the desktop over a REST API and a WebSocket stream,
mounts the framing relay at /proxy and Prometheus metrics at /metrics.`,
	Example: `  # Start server on default port (8080)
  retrodesk serve

  # Start server on custom port
  retrodesk serve --port 9090

  # Start with specific config file
  retrodesk serve --config /path/to/config.yaml

  # Start with debug logging
  retrodesk serve --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the config file, applies flag overrides and configures
// logging
func loadConfig() (*config.Manager, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config manager: %w", err)
	}

	// Override port from flag if provided
	if viper.IsSet("server_port") {
		if port := viper.GetInt("server_port"); port > 0 {
			configMgr.SetPort(port)
		}
	}

	// Override log level from flag if provided
	if viper.IsSet("log_level") {
		if level := viper.GetString("log_level"); level != "" {
			configMgr.SetLogLevel(level)
		}
	}

	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	return configMgr, nil
}

func loadTree(cfg *config.Config) (*content.Tree, error) {
	if cfg.ContentFile == "" {
		return content.DefaultTree(), nil
	}
	return content.Load(cfg.ContentFile)
}

// relayBase is the address browsers use to reach the relay
func relayBase(cfg *config.Config) string {
	if !cfg.Embed.UseRelay {
		return ""
	}
	if cfg.Embed.RelayBase != "" {
		return cfg.Embed.RelayBase
	}
	return fmt.Sprintf("http://localhost:%d%s", cfg.ServerPort, relay.Path)
}

func newRelay(cfg *config.Config, reg prometheus.Registerer) *relay.Relay {
	return relay.New(relay.Options{
		Timeout:           cfg.Relay.Timeout(),
		Retries:           cfg.Relay.Retries,
		MaxBodyBytes:      cfg.Relay.MaxBodyBytes,
		RequestsPerSecond: cfg.Relay.RequestsPerSecond,
		Burst:             cfg.Relay.Burst,
		Registerer:        reg,
	})
}

func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func runServe(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()
	log := logger.WithComponent("serve")

	log.Info().
		Str("config", configMgr.GetConfigPath()).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	tree, err := loadTree(cfg)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	log.Info().Int("items", tree.Len()).Msg("Desktop content loaded")

	client := fetch.NewClient(fetch.Options{
		Timeout: cfg.Relay.Timeout(),
		Retries: cfg.Relay.Retries,
	})

	base := relayBase(cfg)
	// Relative resources are served by the desktop's own origin and are
	// trusted, so the inspector gets no base
	inspector := embed.NewHTTPInspector(client, "", base)
	detector := embed.NewDetector(inspector, cfg.Embed.Grace(), cfg.Embed.Fallback(), cfg.Embed.Timeout())

	session := desktop.New(tree, desktop.WindowOptions(cfg), apphost.Options{
		Detector:  detector,
		RelayBase: base,
		BotDelay:  cfg.Game.BotDelay(),
	})
	defer session.Close()

	trayMgr := tray.NewDefault(cfg.Tray, client)
	defer trayMgr.Stop()

	reg := newMetricsRegistry()

	server := api.NewServer(session, api.Deps{
		Config:  configMgr,
		Icons:   icon.NewResolver(client, ""),
		Tray:    trayMgr,
		Relay:   newRelay(cfg, reg),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.ServerPort)
	}()

	log.Info().Msg("RetroDesk is running!")
	log.Info().Msgf("   - Desktop API: http://localhost:%d/api", cfg.ServerPort)
	log.Info().Msgf("   - Stream: ws://localhost:%d/api/desktop/stream", cfg.ServerPort)
	log.Info().Msgf("   - Relay: http://localhost:%d%s?url=...", cfg.ServerPort, relay.Path)
	log.Info().Msg("   - Press Ctrl+C to stop")

	return waitForShutdown(errCh, server.Shutdown)
}

// waitForShutdown blocks until a signal arrives or the server fails, then
// gives in-flight requests a few seconds to finish
func waitForShutdown(errCh <-chan error, shutdown func(context.Context) error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigChan:
	}

	logger.WithComponent("serve").Info().Msg("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return shutdown(ctx)
}
