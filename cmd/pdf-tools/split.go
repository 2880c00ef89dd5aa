package main

import (
	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

var splitCmd = &cobra.Command{
	Use:   "split <input>",
	Short: "Write one PDF per page range",
	Long: `Split writes one document per page range. Ranges are comma-separated
1-based page numbers or inclusive spans, e.g. --ranges "1-3,5,8-10". Outputs
follow the order of the ranges.`,
	Args: cobra.ExactArgs(1),
	RunE: runTransform(func(cmd *cobra.Command, engine *operations.Engine, inputs []models.SourceInfo) (*models.TransformResult, error) {
		ranges, _ := cmd.Flags().GetString("ranges")
		return engine.Split(cmd.Context(), operations.SplitRequest{Input: inputs[0], Ranges: ranges})
	}),
}

func init() {
	splitCmd.Flags().String("ranges", "", "page ranges, e.g. \"1-3,5\"")
	_ = splitCmd.MarkFlagRequired("ranges")

	rootCmd.AddCommand(splitCmd)
}
