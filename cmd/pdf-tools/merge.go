package main

import (
	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <input> <input>...",
	Short: "Concatenate PDF documents in the order given",
	Args:  cobra.MinimumNArgs(2),
	RunE: runTransform(func(cmd *cobra.Command, engine *operations.Engine, inputs []models.SourceInfo) (*models.TransformResult, error) {
		return engine.Merge(cmd.Context(), operations.MergeRequest{Inputs: inputs})
	}),
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
