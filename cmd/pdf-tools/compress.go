package main

import (
	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

var compressCmd = &cobra.Command{
	Use:   "compress <input>",
	Short: "Structurally re-encode a PDF to reduce its size",
	Long: `Compress re-encodes a document without touching image data. --tier low
gives the smallest output, high keeps closest to the original structure.`,
	Args: cobra.ExactArgs(1),
	RunE: runTransform(func(cmd *cobra.Command, engine *operations.Engine, inputs []models.SourceInfo) (*models.TransformResult, error) {
		tier, _ := cmd.Flags().GetString("tier")
		return engine.Compress(cmd.Context(), operations.CompressRequest{Input: inputs[0], Tier: tier})
	}),
}

func init() {
	compressCmd.Flags().String("tier", "", "quality tier: low, medium or high (default from config)")

	rootCmd.AddCommand(compressCmd)
}
