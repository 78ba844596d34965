package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"labtrust-hq/calibra/pkg/catalog"
)

var catalogLintFile string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog inspection commands",
}

var catalogLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate a catalog file",
	Long: `Parse a catalog YAML file and run the structural checks that the
engine applies at load time: unique question and sub-question identifiers,
positive weights, and sub-questions present wherever a question requires
them for a Yes answer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(catalogLintFile)
		if err != nil {
			return fmt.Errorf("catalog is invalid: %w", err)
		}

		fmt.Printf("Catalog %q is valid.\n", catalogLintFile)
		fmt.Printf("  Version:      %s\n", cat.Version)
		fmt.Printf("  Sections:     %d\n", len(cat.Sections))
		fmt.Printf("  Questions:    %d\n", cat.QuestionCount())
		fmt.Printf("  Total weight: %d\n", cat.TotalWeight())
		return nil
	},
}

func init() {
	catalogLintCmd.Flags().StringVarP(&catalogLintFile, "file", "f", "slipta-catalog.yaml", "catalog file to validate")
	catalogCmd.AddCommand(catalogLintCmd)
	rootCmd.AddCommand(catalogCmd)
}
