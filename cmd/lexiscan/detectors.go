package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var detectorsCmd = &cobra.Command{
	Use:   "detectors",
	Short: "List the builtin detector profiles",
	RunE:  runDetectors,
}

func runDetectors(cmd *cobra.Command, _ []string) error {
	registry, err := cliRegistry()
	if err != nil {
		return err
	}

	name := color.New(color.FgCyan, color.Bold)
	out := cmd.OutOrStdout()

	for _, profile := range registry.Profiles() {
		fmt.Fprintf(out, "%s  (%s, %d categories", name.Sprint(profile.Name), profile.Combine, len(profile.Categories))
		if len(profile.Signals) > 0 {
			fmt.Fprintf(out, ", %d signals", len(profile.Signals))
		}
		fmt.Fprintln(out, ")")
		if profile.Description != "" {
			fmt.Fprintf(out, "    %s\n", profile.Description)
		}
		for _, cutoff := range profile.Cutoffs {
			fmt.Fprintf(out, "    >= %.2f  %s\n", cutoff.LowerBound, cutoff.Label)
		}
	}
	return nil
}
