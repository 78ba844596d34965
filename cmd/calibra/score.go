package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <audit-id>",
	Short: "Compute the score of an audit",
	Long: `Compute the weighted score, adjusted denominator, percentage, and
star level of an audit against the current question catalog.

Not Applicable answers are excluded from the denominator; the percentage
is rounded to one decimal place before banding.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		score, err := rt.manager.ComputeScore(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to compute score: %w", err)
		}

		fmt.Printf("Audit:                %s\n", args[0])
		fmt.Printf("Points earned:        %.1f\n", score.Earned)
		fmt.Printf("Adjusted denominator: %d\n", score.AdjustedDenominator)
		fmt.Printf("NA points excluded:   %d\n", score.NAPointsExcluded)
		fmt.Printf("Percentage:           %.1f%%\n", score.Percentage)
		fmt.Printf("Star level:           %d\n", score.StarLevel)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
