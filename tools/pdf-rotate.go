package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
)

type PDFRotateQuery struct {
	Input DocumentInput `json:"input"`
	Angle int           `json:"angle"` // Absolute rotation in degrees, normally 0, 90, 180 or 270
}

func PDFRotateTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFRotateQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-rotate",
		Description: "Set the rotation of every page of a PDF to the given angle. The angle replaces any existing rotation rather than adding to it.",
		InputSchema: inputschema,
	}
}

func PDFRotateToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFRotateQuery, engine *operations.Engine, log logger.Logger) (*mcp.CallToolResult, *TransformResponse, error) {
	log.Info("pdf-rotate tool called with angle %d", query.Angle)

	result, err := engine.Rotate(ctx, operations.RotateRequest{Input: query.Input.source(), Angle: query.Angle})
	if err != nil {
		log.Error("pdf-rotate tool failed: %v", err)
		return nil, nil, err
	}
	return nil, newTransformResponse(result), nil
}
