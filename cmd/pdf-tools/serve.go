package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-tools/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the PDF tools to an MCP client over stdio",
	Long: `Serve runs an MCP server on stdin/stdout. It exposes one tool per transform
(pdf-merge, pdf-split, pdf-delete-pages, pdf-rotate, pdf-watermark,
pdf-compress), staged-list, zotero-find-pdfs when Zotero credentials are
configured, and the staged://{name} resources holding the outputs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		appLog.Info("Starting pdf-tools MCP server %s (staging in %s)", version, engine.Stager().Dir())

		srv := server.CreateServer(engine, cfg.Zotero, version, appLog)
		if err := srv.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
			appLog.Error("Server failed: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
