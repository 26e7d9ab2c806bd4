package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"TrackDigest/internal/app"
	"TrackDigest/internal/config"
	"TrackDigest/internal/logging"
)

var unscoredCmd = &cobra.Command{
	Use:   "unscored",
	Short: "List matched documents still lacking a relevance judgment",
	RunE:  runUnscored,
}

func runUnscored(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	unscored, err := application.Unscored(cmd.Context())
	if err != nil {
		return err
	}

	if len(unscored) == 0 {
		fmt.Fprintln(os.Stdout, "no unscored documents")
		return nil
	}

	for _, un := range unscored {
		title := un.Document.Title
		if title == "" {
			title = un.Document.ID
		}
		fmt.Fprintf(os.Stdout, "%-14s score=%-3d tracks=%s %s\n",
			un.Document.ID, un.MaxScore, strings.Join(un.Tracks, ","), title)
	}
	return nil
}
