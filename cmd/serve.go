package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Boot the application and serve HTTP on APP_PORT",
	Long: `Boot every service provider and serve HTTP until interrupted.

Routes:
  GET /health
  GET /metrics                        (METRICS_ENABLED)
  GET /container/bindings             (INSPECT_ENABLED)
  GET /container/bindings/{service}   (INSPECT_ENABLED)

On SIGINT or SIGTERM in-flight requests are drained and the container is
disposed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		application, err := newApplication()
		if err != nil {
			return err
		}
		return application.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
