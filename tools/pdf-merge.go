package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

type PDFMergeQuery struct {
	Inputs []DocumentInput `json:"inputs"` // Documents to concatenate, in order (2 or more)
}

func PDFMergeTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFMergeQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-merge",
		Description: "Merge two or more PDF documents into one. Pages keep their order within each document, and documents are concatenated in the order given. The merged PDF is staged and can be read from the returned resource_uri.",
		InputSchema: inputschema,
	}
}

func PDFMergeToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFMergeQuery, engine *operations.Engine, log logger.Logger) (*mcp.CallToolResult, *TransformResponse, error) {
	log.Info("pdf-merge tool called with %d inputs", len(query.Inputs))

	inputs := make([]models.SourceInfo, len(query.Inputs))
	for i, in := range query.Inputs {
		inputs[i] = in.source()
	}

	result, err := engine.Merge(ctx, operations.MergeRequest{Inputs: inputs})
	if err != nil {
		log.Error("pdf-merge tool failed: %v", err)
		return nil, nil, err
	}
	return nil, newTransformResponse(result), nil
}
