package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
)

type PDFDeletePagesQuery struct {
	Input DocumentInput `json:"input"`
	Pages []int         `json:"pages,omitempty"`      // 1-based page numbers to remove
	Spec  string        `json:"page_spec,omitempty"` // Alternatively a range string, e.g. "2,4-6"
}

func PDFDeletePagesTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFDeletePagesQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-delete-pages",
		Description: "Remove pages from a PDF. Give 1-based page numbers in pages, a range string in page_spec, or both. Remaining pages keep their order; deleting every page is rejected.",
		InputSchema: inputschema,
	}
}

func PDFDeletePagesToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFDeletePagesQuery, engine *operations.Engine, log logger.Logger) (*mcp.CallToolResult, *TransformResponse, error) {
	log.Info("pdf-delete-pages tool called")

	result, err := engine.DeletePages(ctx, operations.DeletePagesRequest{
		Input:    query.Input.source(),
		Pages:    query.Pages,
		PageSpec: query.Spec,
	})
	if err != nil {
		log.Error("pdf-delete-pages tool failed: %v", err)
		return nil, nil, err
	}
	return nil, newTransformResponse(result), nil
}
