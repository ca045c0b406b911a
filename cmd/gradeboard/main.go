// Package main is the entry point for the gradeboard CLI.
//
// GradeBoard can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	gradeboard serve -c config.yaml [--watch] # Start the dashboard
//	gradeboard validate -c config.yaml        # Validate configuration
//	gradeboard version                        # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "gradeboard",
	Short: "A live grade dashboard",
	Long: `GradeBoard is a real-time grade dashboard.

It polls JSON endpoints listing students or staff with their scores,
classifies each record as passed or failed against a threshold, and
charts the results in a web UI with Server-Sent Events for live updates.

Quick start:
  1. Create a config file (gradeboard.yaml)
  2. Run: gradeboard serve -c gradeboard.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  refresh_interval: 5s
  sources:
    - name: alumnos
      url: https://example.com/apiAlumnos.php
      threshold: 7
      fields: {name: nombre, scores: practicas}`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this gradeboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "gradeboard %s\n", version)
		_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
		_, _ = fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
