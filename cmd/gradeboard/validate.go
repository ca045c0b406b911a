package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/gradeboard/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a GradeBoard configuration file without starting the server.

This command parses the YAML, expands environment variables, validates all
fields and builds every source. It's useful for CI/CD pipelines or
pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  gradeboard validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	sources, err := config.BuildSources(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Config is valid!\n")
	_, _ = fmt.Fprintf(out, "  Port:             %d\n", cfg.Port)
	_, _ = fmt.Fprintf(out, "  Refresh interval: %s\n", cfg.RefreshInterval.Duration())
	_, _ = fmt.Fprintf(out, "  Sources:          %d\n", len(sources))
	for _, src := range sources {
		_, _ = fmt.Fprintf(out, "    - %s (threshold %g): %s\n", src.Name(), src.Threshold(), src.URL())
	}

	return nil
}
