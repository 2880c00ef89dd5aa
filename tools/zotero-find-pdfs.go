package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-tools/internal/documents"
	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
)

type ZoteroFindPDFsQuery struct {
	Query      string   `json:"query,omitempty"`      // Quick search text (searches title, creator, year)
	Tags       []string `json:"tags,omitempty"`       // Filter by tags
	Collection string   `json:"collection,omitempty"` // Filter by collection key (optional)
	Limit      int      `json:"limit,omitempty"`      // Max items searched (default 25)
}

type ZoteroFindPDFsResponse struct {
	Attachments []operations.PDFAttachment `json:"attachments"`
	Count       int                        `json:"count"`
}

func ZoteroFindPDFsTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ZoteroFindPDFsQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "zotero-find-pdfs",
		Description: "Search a Zotero library and list the PDF attachments of the matching items. Pass an attachment key as zotero_id in any pdf-* tool input.",
		InputSchema: inputschema,
	}
}

func ZoteroFindPDFsToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ZoteroFindPDFsQuery, cfg documents.ZoteroConfig, log logger.Logger) (*mcp.CallToolResult, *ZoteroFindPDFsResponse, error) {
	log.Info("zotero-find-pdfs tool called")

	attachments, err := operations.FindPDFAttachments(ctx, cfg, operations.ZoteroSearchParams{
		Query:      query.Query,
		Tags:       query.Tags,
		Collection: query.Collection,
		Limit:      query.Limit,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	return nil, &ZoteroFindPDFsResponse{Attachments: attachments, Count: len(attachments)}, nil
}
