package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/platescan/internal/server"
)

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the nutrition estimation HTTP server",
	Long: `Start an HTTP server exposing the estimation pipeline.

Endpoints:
  POST /estimate - Estimate nutrition facts for an uploaded photo
  GET  /healthz  - Health check
  GET  /metrics  - Prometheus metrics

Examples:
  platescan serve
  platescan serve --port 8080
  platescan serve --host 0.0.0.0 --port 3000`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := GetConfig()

		serverCfg := cfg.Server
		if cmd.Flags().Changed("host") {
			serverCfg.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			serverCfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("max-upload-size") {
			serverCfg.MaxUploadMB, _ = cmd.Flags().GetInt("max-upload-size")
		}
		if cmd.Flags().Changed("timeout") {
			serverCfg.TimeoutSec, _ = cmd.Flags().GetInt("timeout")
		}

		p, cleanup, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := server.New(serverCfg, p)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			slog.Info("Shutting down", "signal", sig.String())
			return srv.Shutdown()
		}
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen host")
	serveCmd.Flags().Int("port", 0, "listen port")
	serveCmd.Flags().Int("max-upload-size", 0, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 0, "request timeout in seconds")
	rootCmd.AddCommand(serveCmd)
}
