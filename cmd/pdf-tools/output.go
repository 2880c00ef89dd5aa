package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/Epistemic-Technology/pdf-tools/models"
)

// printResult writes v in the format chosen by --output. text renders the
// human-readable form.
func printResult(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	format, _ := cmd.Flags().GetString("output")
	w := cmd.OutOrStdout()

	switch format {
	case "", "text":
		text(w)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (expected text, json or yaml)", format)
	}
}

// printTransform reports the staged outputs of one operation
func printTransform(cmd *cobra.Command, dir string, result *models.TransformResult) error {
	return printResult(cmd, result, func(w io.Writer) {
		for _, f := range result.Files {
			fmt.Fprintf(w, "%s\t%d pages\t%d bytes\n", filepath.Join(dir, f.Name), f.Pages, f.Size)
		}
		if c := result.Compression; c != nil {
			fmt.Fprintf(w, "compressed %d -> %d bytes (ratio %.2f, tier %s)\n",
				c.OriginalSize, c.CompressedSize, c.Ratio, c.Tier)
		}
	})
}
