package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/toastkit/toastkit/pkg/middleware"
	"github.com/toastkit/toastkit/pkg/server"
	"github.com/toastkit/toastkit/pkg/toast"
)

// serveCmd runs the renderer bridge server.
func serveCmd() *cobra.Command {
	var (
		addr            string
		defaultDuration time.Duration
		logLevel        string
		traces          bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the toast bridge server",
		Long: `Serve runs the toast manager and exposes it to renderers:

  POST   /toasts       show a toast
  GET    /toasts       current queue snapshot
  DELETE /toasts/{id}  hide one toast
  DELETE /toasts       hide all toasts
  GET    /ws           live snapshot feed + renderer events
  GET    /metrics      Prometheus metrics
  GET    /healthz      liveness check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Zero means "unset" in ManagerConfig and would be silently
			// replaced with the built-in default; reject it so the flag
			// always does what it says. Persistence is per-toast
			// (durationMs 0 in the show request), not server-wide.
			if defaultDuration <= 0 {
				return fmt.Errorf("--default-duration must be positive, got %v", defaultDuration)
			}

			logger := newLogger(logLevel)
			slog.SetDefault(logger)

			observers := []toast.Observer{middleware.Prometheus()}
			if traces {
				observers = append(observers, middleware.OpenTelemetry())
			}

			manager := toast.NewManager(&toast.ManagerConfig{
				DefaultDuration: defaultDuration,
				Logger:          logger,
				Observers:       observers,
			})
			defer manager.Close()

			srv := server.New(manager, &server.Config{Address: addr})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				return srv.Shutdown(context.Background())
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	cmd.Flags().DurationVar(&defaultDuration, "default-duration", toast.DefaultDuration,
		"auto-dismiss duration applied when a toast specifies none (must be positive)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&traces, "traces", false, "emit OpenTelemetry spans per toast lifetime")

	return cmd
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
