package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"TrackDigest/internal/app"
	"TrackDigest/internal/config"
	"TrackDigest/internal/logging"
)

var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Ask the relevance oracle about every unjudged document",
	RunE:  runJudge,
}

func runJudge(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	judged, err := application.JudgeUnscored(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "judged %d documents\n", judged)
	return nil
}
