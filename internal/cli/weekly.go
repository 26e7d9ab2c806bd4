package cli

import (
	"github.com/spf13/cobra"

	"TrackDigest/internal/app"
	"TrackDigest/internal/config"
	"TrackDigest/internal/logging"
)

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Select and deliver this week's deep-dive pick",
	RunE:  runWeekly,
}

func runWeekly(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	return application.RunWeekly(cmd.Context())
}
