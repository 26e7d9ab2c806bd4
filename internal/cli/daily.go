package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"TrackDigest/internal/app"
	"TrackDigest/internal/config"
	"TrackDigest/internal/logging"
)

var dailyDayFlag string

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Run one daily digest pass (fetch, match, select, deliver)",
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().StringVar(&dailyDayFlag, "day", "", "backfill an explicit day (YYYY-MM-DD) instead of today")
}

func runDaily(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := cmd.Context()
	if dailyDayFlag != "" {
		day, err := time.ParseInLocation("2006-01-02", dailyDayFlag, cfg.Scheduler.Location())
		if err != nil {
			return fmt.Errorf("parse --day: %w", err)
		}
		return application.RunDailyFor(ctx, day)
	}
	return application.RunDaily(ctx)
}
