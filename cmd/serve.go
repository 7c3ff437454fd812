package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reunia/face-service/internal/config"
	"github.com/reunia/face-service/internal/inference"
	"github.com/reunia/face-service/internal/logger"
	"github.com/reunia/face-service/internal/metrics"
	"github.com/reunia/face-service/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the face service HTTP server",
	Long: `Start the face service HTTP server.
The server exposes /detect, /embed, /match and /batch-embed for internal
callers, plus /health and /metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

// resolveServeHostPort applies flag overrides on top of the configured
// host and port.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Web.APIKey == "" {
		return errors.New("FACE_API_KEY environment variable is required")
	}
	resolveServeHostPort(cmd, cfg)

	log := logger.New(cfg.Service.Name, cfg.Service.LogLevel)
	m := metrics.New("face")

	client := inference.NewClient(cfg.Inference.URL, time.Duration(cfg.Inference.TimeoutSeconds)*time.Second)
	server := web.NewServer(cfg, log, m, client, client, Version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("error during shutdown", slog.Any("error", err))
		}
	}()

	log.Info("face service starting",
		slog.String("version", Version),
		slog.String("inference_url", cfg.Inference.URL),
		slog.Int("embedding_dim", cfg.Matching.EmbeddingDim),
	)

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
