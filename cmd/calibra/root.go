package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "calibra",
	Short: "Calibra - SLIPTA laboratory-audit compliance engine",
	Long: `Calibra is the rules engine of a laboratory-audit compliance workspace.

It provides:
  - Weighted scoring with NA exclusions and 0-5 star banding
  - Composite (parent/sub) question consistency enforcement
  - Audit linkage with cycle prevention and progression tracking
  - Review-team composition validation
  - Aggregated closure gating for the audit lifecycle`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
