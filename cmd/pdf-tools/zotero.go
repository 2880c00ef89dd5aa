package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
)

var zoteroCmd = &cobra.Command{
	Use:   "zotero",
	Short: "Find input PDFs in a Zotero library",
}

var zoteroSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "List the PDF attachments of matching Zotero items",
	Long: `Search queries the configured Zotero library (zotero.api_key and
zotero.library_id, or ZOTERO_API_KEY and ZOTERO_LIBRARY_ID) and lists the
PDF attachments of the matching items. Pass an attachment as zotero:KEY to
any transform.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := operations.ZoteroSearchParams{}
		if len(args) == 1 {
			params.Query = args[0]
		}
		params.Tags, _ = cmd.Flags().GetStringSlice("tag")
		params.Collection, _ = cmd.Flags().GetString("collection")
		params.Limit, _ = cmd.Flags().GetInt("limit")

		attachments, err := operations.FindPDFAttachments(cmd.Context(), cfg.Zotero, params, appLog)
		if err != nil {
			return err
		}
		if attachments == nil {
			attachments = []operations.PDFAttachment{}
		}

		return printResult(cmd, attachments, func(w io.Writer) {
			for _, a := range attachments {
				fmt.Fprintf(w, "zotero:%s\t%s\t%s\n", a.Key, a.ParentTitle, strings.Join(a.Creators, "; "))
			}
		})
	},
}

func init() {
	zoteroSearchCmd.Flags().StringSlice("tag", nil, "filter by tag (repeatable)")
	zoteroSearchCmd.Flags().String("collection", "", "filter by collection key")
	zoteroSearchCmd.Flags().Int("limit", 25, "maximum number of items to search")

	zoteroCmd.AddCommand(zoteroSearchCmd)
	rootCmd.AddCommand(zoteroCmd)
}
