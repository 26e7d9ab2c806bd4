package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trackdigest",
	Short: "Paper digests matched against your interest tracks",
	Long: "TrackDigest scans academic paper listings, scores each paper against\n" +
		"configured interest tracks, fuses keyword scores with external relevance\n" +
		"judgments, and delivers bounded daily and weekly digests.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(weeklyCmd)
	rootCmd.AddCommand(judgeCmd)
	rootCmd.AddCommand(unscoredCmd)
	rootCmd.AddCommand(versionCmd)
}
