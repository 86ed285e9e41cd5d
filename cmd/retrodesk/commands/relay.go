package commands

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/logger"
	"github.com/bryanchriswhite/RetroDesk/internal/relay"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run the framing relay on its own",
	Long: `Run only the URL relay, without the desktop.

The relay fetches ?url=<target> and re-serves it with headers that let the
desktop frame it. It listens on relay.port from the configuration.`,
	Example: `  # Run the relay on the configured port (3000)
  retrodesk relay

  # Run the relay on another port
  retrodesk relay --relay-port 4000`,
	RunE: runRelay,
}

var relayPort int

func init() {
	rootCmd.AddCommand(relayCmd)

	relayCmd.Flags().IntVar(&relayPort, "relay-port", 0, "relay port (default is relay.port from config)")
}

func runRelay(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()

	port := cfg.Relay.Port
	if relayPort > 0 {
		port = relayPort
	}

	reg := newMetricsRegistry()
	router := mux.NewRouter()
	router.Handle(relay.Path, newRelay(cfg, reg))
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	logger.WithComponent("relay").Info().Msgf("Relay running at http://localhost:%d%s", port, relay.Path)
	return waitForShutdown(errCh, srv.Shutdown)
}
