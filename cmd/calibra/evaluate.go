package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <audit-id>",
	Short: "List closure blockers and warnings for an audit",
	Long: `Run the full closure readiness check for an audit and print every
blocker and warning found. The audit itself is not modified.

An audit can be closed only when the report contains no blockers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		report, err := rt.manager.Evaluate(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to evaluate audit: %w", err)
		}

		if report.CanClose {
			fmt.Printf("Audit %s is ready to close.\n", args[0])
		} else {
			fmt.Printf("Audit %s cannot be closed: %d blocker(s).\n", args[0], len(report.Blockers))
		}
		for _, b := range report.Blockers {
			if b.QuestionID != "" {
				fmt.Printf("  BLOCKER [%s] %s: %s\n", b.Code, b.QuestionID, b.Detail)
			} else {
				fmt.Printf("  BLOCKER [%s] %s\n", b.Code, b.Detail)
			}
		}
		for _, w := range report.Warnings {
			fmt.Printf("  warning [%s] %s: %s\n", w.Code, w.QuestionID, w.Detail)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}
