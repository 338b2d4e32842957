// Command lexiscan is the command-line interface to the scoring engine.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lexiscan",
	Short: "Rule-based lexical scoring for text",
	Long: `lexiscan scores text against weighted indicator dictionaries and
structural signals, classifying it into labels like spam/ham or
toxic/clean. Detectors are fully declarative and explainable: every
score comes with the exact terms that produced it.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(detectorsCmd)
	rootCmd.AddCommand(serveCmd)

	rootCmd.PersistentFlags().StringP("detector", "d", "spam", "detector profile to score with")
	rootCmd.PersistentFlags().Float64P("sensitivity", "s", -1, "sensitivity in [0,1]; negative uses the profile default")
	rootCmd.PersistentFlags().String("profile", "", "path to a YAML detector profile (overrides --detector)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
