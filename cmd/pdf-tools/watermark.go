package main

import (
	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

var watermarkCmd = &cobra.Command{
	Use:   "watermark <input>",
	Short: "Overlay text on every page",
	Long: `Watermark draws --text once on every page, centred. Style flags that are
not given take the configured watermark defaults.`,
	Args: cobra.ExactArgs(1),
	RunE: runTransform(func(cmd *cobra.Command, engine *operations.Engine, inputs []models.SourceInfo) (*models.TransformResult, error) {
		req := operations.WatermarkRequest{Input: inputs[0]}
		req.Text, _ = cmd.Flags().GetString("text")
		req.FontSize, _ = cmd.Flags().GetInt("font-size")
		req.Color, _ = cmd.Flags().GetString("color")
		if cmd.Flags().Changed("opacity") {
			opacity, _ := cmd.Flags().GetFloat64("opacity")
			req.Opacity = &opacity
		}
		if cmd.Flags().Changed("rotation") {
			rotation, _ := cmd.Flags().GetFloat64("rotation")
			req.Rotation = &rotation
		}
		return engine.Watermark(cmd.Context(), req)
	}),
}

func init() {
	watermarkCmd.Flags().String("text", "", "watermark text")
	watermarkCmd.Flags().Int("font-size", 0, "font size in points (default from config)")
	watermarkCmd.Flags().Float64("opacity", 0, "opacity between 0 and 1 (default from config)")
	watermarkCmd.Flags().Float64("rotation", 0, "text rotation in degrees (default from config)")
	watermarkCmd.Flags().String("color", "", "\"#rrggbb\", \"r g b\" or a color name (default from config)")
	_ = watermarkCmd.MarkFlagRequired("text")

	rootCmd.AddCommand(watermarkCmd)
}
