// Package main is the entry point for the pdf-tools CLI and MCP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Epistemic-Technology/pdf-tools/internal/config"
	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg and appLog are loaded before any subcommand runs
	cfg    *config.Config
	appLog logger.Logger
)

// rootCmd is the base command for the pdf-tools CLI.
var rootCmd = &cobra.Command{
	Use:   "pdf-tools",
	Short: "Merge, split, rotate, watermark and compress PDF documents",
	Long: `pdf-tools applies structural transforms to PDF documents: merge, split by
page range, delete pages, rotate, watermark and compress. Every transform
reads its inputs, validates them, and writes its outputs under unique names
in the staging directory, never overwriting an existing file.

Inputs are local paths, http(s) URLs, or Zotero attachment keys written as
zotero:KEY. The same operations are served to MCP clients by "pdf-tools serve".`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./pdf-tools.yaml or ~/.config/pdf-tools/pdf-tools.yaml)")
	flags.String("staging-dir", "", "directory transform outputs are written to")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.StringP("output", "o", "text", "output format: text, json or yaml")

	_ = viper.BindPFlag("staging.dir", flags.Lookup("staging-dir"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")

	used, err := config.Init(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	loaded, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded

	log, err := logger.NewLogger(logger.LogConfig{
		Output:   cfg.Log.Output,
		Level:    cfg.Log.Level,
		FilePath: cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLog = log

	if used != "" {
		appLog.Info("Using config file: %s", used)
	}
	return nil
}

// newEngine builds an engine from the loaded configuration; callers Close it
func newEngine() (*operations.Engine, error) {
	return operations.NewFromConfig(cfg, appLog)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
