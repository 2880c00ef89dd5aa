package main

import (
	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate <input>",
	Short: "Set the rotation of every page",
	Long: `Rotate sets every page's rotation to --angle degrees. The angle replaces
the existing rotation; it is not added to it.`,
	Args: cobra.ExactArgs(1),
	RunE: runTransform(func(cmd *cobra.Command, engine *operations.Engine, inputs []models.SourceInfo) (*models.TransformResult, error) {
		angle, _ := cmd.Flags().GetInt("angle")
		return engine.Rotate(cmd.Context(), operations.RotateRequest{Input: inputs[0], Angle: angle})
	}),
}

func init() {
	rotateCmd.Flags().Int("angle", 0, "absolute rotation in degrees")
	_ = rotateCmd.MarkFlagRequired("angle")

	rootCmd.AddCommand(rotateCmd)
}
