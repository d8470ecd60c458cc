package main

import (
	"convo-insights-go/internal/dataset"

	"github.com/spf13/cobra"
)

var summaryInput string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print a window-independent overview of the dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rows, err := loadRows(cmd.Context(), summaryInput)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), dataset.Summarize(rows))
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryInput, "input", "", "export file; defaults to the configured source")
	rootCmd.AddCommand(summaryCmd)
}
