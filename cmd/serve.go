package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/stylist/internal/gemini"
	"github.com/lehigh-university-libraries/stylist/internal/handlers"
	"github.com/lehigh-university-libraries/stylist/internal/studio"
	"github.com/spf13/cobra"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web studio",
		Long: `Starts the Stylist web interface on the specified port.

The web interface lets you upload a PNG or JPEG photo, describe a new
outfit, and see the edited image once Gemini returns it. A JSON API under
/api/sessions exposes the same flow to other clients.`,
		Example: `  # Start server on default port 8888
  stylist serve

  # Start server on custom port with a config file
  stylist serve --port 3000 --config stylist.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			editor, err := gemini.New(cmd.Context(), cfg.Provider())
			if err != nil {
				return err
			}
			service := studio.NewService(editor, cfg.Denylist)
			handler := handlers.New(service, cfg)
			go handler.SweepSessions(cmd.Context())

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Stylist interface available", "addr", addr, "url", "http://localhost"+addr, "model", editor.Model())
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
				slog.Info("Waiting for in-flight edits")
				service.Wait()
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
