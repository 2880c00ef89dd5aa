package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-tools/internal/storage"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

var stagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Inspect and retrieve staged outputs",
	Long: `Staged lists transform outputs in the staging directory and copies them
out. Outputs are never removed by pdf-tools; "staged list --older-than"
gives a cleanup job the files it may delete.`,
}

var stagedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List staged outputs, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := storage.ListOptions{}
		opts.Operation, _ = cmd.Flags().GetString("operation")
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		if age, _ := cmd.Flags().GetDuration("older-than"); age > 0 {
			opts.OlderThan = time.Now().Add(-age)
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		files, err := engine.List(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if files == nil {
			files = []models.StagedFile{}
		}

		dir := engine.Stager().Dir()
		return printResult(cmd, files, func(w io.Writer) {
			for _, f := range files {
				fmt.Fprintf(w, "%s\t%s\t%d bytes\t%s\n",
					f.CreatedAt.Local().Format(time.RFC3339), f.Operation, f.Size, filepath.Join(dir, f.Name))
			}
		})
	},
}

var stagedShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Describe one staged output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		f, err := engine.Stager().Stat(args[0])
		if err != nil {
			return err
		}
		return printResult(cmd, f, func(w io.Writer) {
			fmt.Fprintf(w, "name:      %s\n", f.Name)
			fmt.Fprintf(w, "operation: %s\n", f.Operation)
			fmt.Fprintf(w, "size:      %d bytes\n", f.Size)
			fmt.Fprintf(w, "created:   %s\n", f.CreatedAt.Local().Format(time.RFC3339Nano))
			fmt.Fprintf(w, "path:      %s\n", filepath.Join(engine.Stager().Dir(), f.Name))
			fmt.Fprintf(w, "resource:  %s\n", f.URI())
		})
	},
}

var stagedGetCmd = &cobra.Command{
	Use:   "get <name> <destination>",
	Short: "Copy a staged output out of the staging directory",
	Long: `Get copies a staged output to destination. An existing destination is
only replaced with --force; "-" writes the PDF to stdout.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, dest := args[0], args[1]
		force, _ := cmd.Flags().GetBool("force")

		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		src, f, err := engine.Stager().Open(name)
		if err != nil {
			return err
		}
		defer src.Close()

		if dest == "-" {
			_, err := io.Copy(cmd.OutOrStdout(), src)
			return err
		}

		flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
		if force {
			flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		}
		out, err := os.OpenFile(dest, flags, 0644)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", dest, err)
		}
		if _, err := io.Copy(out, src); err != nil {
			out.Close()
			return fmt.Errorf("failed to copy %s: %w", f.Name, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", dest, err)
		}
		appLog.Info("Copied %s to %s", f.Name, dest)
		return nil
	},
}

func init() {
	stagedListCmd.Flags().String("operation", "", "only list outputs of this operation")
	stagedListCmd.Flags().Duration("older-than", 0, "only list outputs older than this, e.g. 24h")
	stagedListCmd.Flags().Int("limit", 0, "maximum number of outputs to list")

	stagedGetCmd.Flags().Bool("force", false, "replace an existing destination file")

	stagedCmd.AddCommand(stagedListCmd, stagedShowCmd, stagedGetCmd)
	rootCmd.AddCommand(stagedCmd)
}
