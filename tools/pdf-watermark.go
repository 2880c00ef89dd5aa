package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
)

type PDFWatermarkQuery struct {
	Input    DocumentInput `json:"input"`
	Text     string        `json:"text"`
	FontSize int           `json:"font_size,omitempty"` // Points (default 50)
	Opacity  *float64      `json:"opacity,omitempty"`   // 0 to 1 (default 0.3)
	Rotation *float64      `json:"rotation,omitempty"`  // Degrees counter-clockwise, any angle (default -45)
	Color    string        `json:"color,omitempty"`     // "#rrggbb", "r g b" floats or a color name (default gray)
}

func PDFWatermarkTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFWatermarkQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-watermark",
		Description: "Overlay a text watermark once on every page of a PDF, centred on the page. Style fields left out take the server's configured defaults.",
		InputSchema: inputschema,
	}
}

func PDFWatermarkToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFWatermarkQuery, engine *operations.Engine, log logger.Logger) (*mcp.CallToolResult, *TransformResponse, error) {
	log.Info("pdf-watermark tool called")

	result, err := engine.Watermark(ctx, operations.WatermarkRequest{
		Input:    query.Input.source(),
		Text:     query.Text,
		FontSize: query.FontSize,
		Opacity:  query.Opacity,
		Rotation: query.Rotation,
		Color:    query.Color,
	})
	if err != nil {
		log.Error("pdf-watermark tool failed: %v", err)
		return nil, nil, err
	}
	return nil, newTransformResponse(result), nil
}
