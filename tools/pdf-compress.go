package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
)

type PDFCompressQuery struct {
	Input DocumentInput `json:"input"`
	Tier  string        `json:"tier,omitempty"` // low, medium or high; low is the smallest output
}

func PDFCompressTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFCompressQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-compress",
		Description: "Structurally re-encode a PDF to reduce its size: duplicate objects are shared and, at lower tiers, objects and cross references are packed into compressed streams. Images are not recompressed. Returns the original and compressed sizes.",
		InputSchema: inputschema,
	}
}

func PDFCompressToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFCompressQuery, engine *operations.Engine, log logger.Logger) (*mcp.CallToolResult, *TransformResponse, error) {
	log.Info("pdf-compress tool called with tier %q", query.Tier)

	result, err := engine.Compress(ctx, operations.CompressRequest{Input: query.Input.source(), Tier: query.Tier})
	if err != nil {
		log.Error("pdf-compress tool failed: %v", err)
		return nil, nil, err
	}
	return nil, newTransformResponse(result), nil
}
