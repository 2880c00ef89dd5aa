package main

import (
	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <input>",
	Aliases: []string{"delete-pages"},
	Short:   "Remove pages from a PDF",
	Args:    cobra.ExactArgs(1),
	RunE: runTransform(func(cmd *cobra.Command, engine *operations.Engine, inputs []models.SourceInfo) (*models.TransformResult, error) {
		pages, _ := cmd.Flags().GetString("pages")
		return engine.DeletePages(cmd.Context(), operations.DeletePagesRequest{Input: inputs[0], PageSpec: pages})
	}),
}

func init() {
	deleteCmd.Flags().String("pages", "", "pages to remove, e.g. \"2,4-6\"")
	_ = deleteCmd.MarkFlagRequired("pages")

	rootCmd.AddCommand(deleteCmd)
}
