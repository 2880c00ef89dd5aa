package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
)

type PDFSplitQuery struct {
	Input  DocumentInput `json:"input"`
	Ranges string        `json:"ranges"` // 1-based page ranges, e.g. "1-3,5,8-10"
}

func PDFSplitTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFSplitQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-split",
		Description: "Split a PDF into one document per page range. Ranges are comma-separated 1-based page numbers or inclusive spans (\"1-3,5\"); outputs are returned in the order the ranges were given.",
		InputSchema: inputschema,
	}
}

func PDFSplitToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFSplitQuery, engine *operations.Engine, log logger.Logger) (*mcp.CallToolResult, *TransformResponse, error) {
	log.Info("pdf-split tool called with ranges %q", query.Ranges)

	result, err := engine.Split(ctx, operations.SplitRequest{Input: query.Input.source(), Ranges: query.Ranges})
	if err != nil {
		log.Error("pdf-split tool failed: %v", err)
		return nil, nil, err
	}
	return nil, newTransformResponse(result), nil
}
