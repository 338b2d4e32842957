package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lexiscan/lexiscan/internal/domain"
)

var scoreCmd = &cobra.Command{
	Use:   "score [flags] [text]",
	Short: "Score a single text",
	Long: `Score a single text against a detector profile. The text is read
from the argument, or from stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().Bool("json", false, "emit the full result as JSON")
}

func runScore(cmd *cobra.Command, args []string) error {
	text, err := inputText(args)
	if err != nil {
		return err
	}

	eng, err := cliEngine(cmd)
	if err != nil {
		return err
	}
	sensitivity, err := sensitivityFlag(cmd)
	if err != nil {
		return err
	}

	var result *domain.ScoringResult
	if sensitivity < 0 {
		result, err = eng.Score(cmd.Context(), text)
	} else {
		result, err = eng.ScoreWithSensitivity(cmd.Context(), text, sensitivity)
	}
	if err != nil {
		return err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(cmd.OutOrStdout(), result)
	return nil
}

func inputText(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// severityColor picks a color by where the aggregate falls.
func severityColor(score float64) *color.Color {
	switch {
	case score >= 0.6:
		return color.New(color.FgRed, color.Bold)
	case score >= 0.3:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func printResult(w io.Writer, result *domain.ScoringResult) {
	verdict := severityColor(result.AggregateScore)

	fmt.Fprintf(w, "detector:       %s\n", result.Detector)
	fmt.Fprintf(w, "classification: %s\n", verdict.Sprint(result.Classification))
	fmt.Fprintf(w, "score:          %.4f\n", result.AggregateScore)
	fmt.Fprintf(w, "confidence:     %.4f\n", result.Confidence)
	if result.EmptyInput {
		fmt.Fprintln(w, "input:          empty")
		return
	}

	categories := make([]string, 0, len(result.CategoryScores))
	for cat := range result.CategoryScores {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	fmt.Fprintln(w, "categories:")
	for _, cat := range categories {
		fmt.Fprintf(w, "  %-20s %.4f", cat, result.CategoryScores[cat])
		if terms := result.MatchedTerms[cat]; len(terms) > 0 {
			fmt.Fprintf(w, "  (%s)", strings.Join(terms, ", "))
		}
		fmt.Fprintln(w)
	}
	if len(result.SignalsFired) > 0 {
		fmt.Fprintf(w, "signals:        %s\n", strings.Join(result.SignalsFired, ", "))
	}
}
