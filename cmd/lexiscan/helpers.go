package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexiscan/lexiscan/internal/detector"
	"github.com/lexiscan/lexiscan/internal/engine"
	"github.com/lexiscan/lexiscan/internal/logger"
	"github.com/lexiscan/lexiscan/internal/telemetry"
)

// cliEngine resolves the engine for a command invocation. A --profile file
// wins over --detector; otherwise the named builtin detector is used.
func cliEngine(cmd *cobra.Command) (*engine.Engine, error) {
	profilePath, err := cmd.Flags().GetString("profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get profile flag: %w", err)
	}

	if profilePath != "" {
		profile, loadErr := detector.LoadProfile(profilePath)
		if loadErr != nil {
			return nil, fmt.Errorf("load profile %s: %w", profilePath, loadErr)
		}
		return engine.New(profile, logger.NewNop())
	}

	name, err := cmd.Flags().GetString("detector")
	if err != nil {
		return nil, fmt.Errorf("failed to get detector flag: %w", err)
	}

	registry, err := cliRegistry()
	if err != nil {
		return nil, err
	}
	eng, ok := registry.Engine(name)
	if !ok {
		return nil, fmt.Errorf("unknown detector %q; available: %v", name, registry.Names())
	}
	return eng, nil
}

// cliRegistry compiles the builtin detectors with silenced logging.
func cliRegistry() (*detector.Registry, error) {
	return detector.NewRegistry(logger.NewNop(), telemetry.NewProvider(), detector.Builtin()...)
}

func sensitivityFlag(cmd *cobra.Command) (float64, error) {
	s, err := cmd.Flags().GetFloat64("sensitivity")
	if err != nil {
		return 0, fmt.Errorf("failed to get sensitivity flag: %w", err)
	}
	if s > 1 {
		return 0, fmt.Errorf("sensitivity must be in [0,1], got %v", s)
	}
	return s, nil
}
