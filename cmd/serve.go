package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/lyriceval/internal/config"
	"github.com/lehigh-university-libraries/lyriceval/internal/handlers"
	"github.com/lehigh-university-libraries/lyriceval/internal/service"
)

func newServeCmd() *cobra.Command {
	var port string
	var noSynonyms bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the evaluation API server",
		Long: `Starts the lyriceval HTTP API on the specified port.

The API labels and compares rhyme schemes, scores lemma sequences with
METEOR and evaluates posted songs as stored runs. Prometheus metrics are
served on /metrics.`,
		Example: `  # Start server on default port 8888
  lyriceval serve

  # Start server on custom port
  lyriceval serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			svc, err := service.New(cfg, service.Options{NoSynonyms: noSynonyms})
			if err != nil {
				return fmt.Errorf("failed to initialise evaluator: %w", err)
			}
			defer func() {
				if err := svc.Close(); err != nil {
					slog.Error("Unable to flush caches", "err", err)
				}
			}()

			handler := handlers.New(svc.Evaluator, cfg.Workers)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/rhyme", handler.HandleRhyme)
			mux.HandleFunc("/api/meteor", handler.HandleMeteor)
			mux.HandleFunc("/api/runs", handler.HandleRuns)
			mux.HandleFunc("/api/runs/", handler.HandleRunDetail)
			mux.Handle("/metrics", svc.Metrics.Handler())
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			c := cors.New(cors.Options{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"*"},
				ExposedHeaders: []string{"Location"},
			})

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           c.Handler(mux),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Lyriceval API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().BoolVar(&noSynonyms, "no-synonyms", false, "Disable synonym matching for run requests")

	return cmd
}
