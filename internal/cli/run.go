package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"TrackDigest/internal/app"
	"TrackDigest/internal/config"
	"TrackDigest/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily pipeline on a schedule until interrupted",
	RunE:  runScheduled,
}

func runScheduled(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.RunScheduled(ctx)
}
