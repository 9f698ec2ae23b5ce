package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "toastkit",
		Short: "In-app transient notification service",
		Long: `Toastkit manages short-lived notification banners for applications.

It runs the toast lifecycle — queueing, auto-dismiss timers, and
swipe-to-dismiss interruption — and bridges queue state to renderers
over HTTP and WebSocket:

  • Exactly-once dismissal across timers, gestures, and explicit hides
  • Position-partitioned queue with stable insertion order
  • Live queue snapshots pushed to connected renderers
  • Prometheus metrics and OpenTelemetry traces per toast`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
