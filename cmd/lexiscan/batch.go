package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexiscan/lexiscan/internal/detector"
	"github.com/lexiscan/lexiscan/internal/logger"
	"github.com/lexiscan/lexiscan/internal/logging"
	"github.com/lexiscan/lexiscan/internal/processor"
	"github.com/lexiscan/lexiscan/internal/telemetry"
)

var batchCmd = &cobra.Command{
	Use:   "batch [flags] <input.csv>",
	Short: "Score a CSV file of texts",
	Long: `Score every row of a CSV file against a detector profile. The input
must carry a text column; one result row is written per input row, in
input order. Output goes to stdout unless --output is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringP("output", "o", "", "output CSV path (default stdout)")
	batchCmd.Flags().String("column", processor.DefaultTextColumn, "name of the input text column")
	batchCmd.Flags().IntP("concurrency", "c", 0, "worker pool size")
	batchCmd.Flags().Int("rps", 0, "throttle row intake to this many rows per second")
}

func runBatch(cmd *cobra.Command, args []string) error {
	registry, err := cliRegistry()
	if err != nil {
		return err
	}

	detectorName, err := batchDetector(cmd, registry)
	if err != nil {
		return err
	}
	sensitivity, err := sensitivityFlag(cmd)
	if err != nil {
		return err
	}
	column, err := cmd.Flags().GetString("column")
	if err != nil {
		return fmt.Errorf("failed to get column flag: %w", err)
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return fmt.Errorf("failed to get concurrency flag: %w", err)
	}
	rps, err := cmd.Flags().GetInt("rps")
	if err != nil {
		return fmt.Errorf("failed to get rps flag: %w", err)
	}

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open input %s: %w", args[0], err)
	}
	defer func() {
		_ = in.Close()
	}()

	out := cmd.OutOrStdout()
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if outputPath != "" {
		f, createErr := os.Create(outputPath)
		if createErr != nil {
			return fmt.Errorf("create output %s: %w", outputPath, createErr)
		}
		defer func() {
			_ = f.Close()
		}()
		out = f
	}

	bp := processor.NewBatchProcessor(
		registry,
		concurrency,
		logging.NewAdapter(logger.NewNop()),
		telemetry.NewProvider(),
	)

	rows, err := bp.RunCSV(cmd.Context(), in, out, processor.CSVOptions{
		Detector:    detectorName,
		Sensitivity: sensitivity,
		TextColumn:  column,
		RowsPerSec:  rps,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "scored %d rows with %s\n", rows, detectorName)
	return nil
}

// batchDetector resolves the detector for a batch run, registering the
// --profile file into the registry when one is given.
func batchDetector(cmd *cobra.Command, registry *detector.Registry) (string, error) {
	profilePath, err := cmd.Flags().GetString("profile")
	if err != nil {
		return "", fmt.Errorf("failed to get profile flag: %w", err)
	}
	if profilePath != "" {
		profile, loadErr := detector.LoadProfile(profilePath)
		if loadErr != nil {
			return "", fmt.Errorf("load profile %s: %w", profilePath, loadErr)
		}
		if regErr := registry.Register(profile); regErr != nil {
			return "", regErr
		}
		return profile.Name, nil
	}

	name, err := cmd.Flags().GetString("detector")
	if err != nil {
		return "", fmt.Errorf("failed to get detector flag: %w", err)
	}
	return name, nil
}
