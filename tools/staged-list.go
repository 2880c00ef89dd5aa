package tools

import (
	"context"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
	"github.com/Epistemic-Technology/pdf-tools/internal/storage"
)

type StagedListQuery struct {
	Operation string `json:"operation,omitempty"`  // Filter by operation, e.g. "merge" or "split"
	OlderThan string `json:"older_than,omitempty"` // Only outputs older than this duration, e.g. "24h"
	Limit     int    `json:"limit,omitempty"`      // Max results (default 100)
}

type StagedListResponse struct {
	Files []StagedFileResult `json:"files"`
	Count int                `json:"count"`
}

func StagedListTool() *mcp.Tool {
	inputschema, err := jsonschema.For[StagedListQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "staged-list",
		Description: "List staged transform outputs, oldest first, with their size and creation time. Each file can be read from its resource_uri.",
		InputSchema: inputschema,
	}
}

func StagedListToolHandler(ctx context.Context, req *mcp.CallToolRequest, query StagedListQuery, engine *operations.Engine, log logger.Logger) (*mcp.CallToolResult, *StagedListResponse, error) {
	log.Info("staged-list tool called")

	opts := storage.ListOptions{Operation: query.Operation, Limit: query.Limit}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if query.OlderThan != "" {
		age, err := time.ParseDuration(query.OlderThan)
		if err != nil || age < 0 {
			return nil, nil, errs.Validation(errs.ReasonInvalidInput, "invalid older_than duration %q", query.OlderThan)
		}
		opts.OlderThan = time.Now().Add(-age)
	}

	files, err := engine.List(ctx, opts)
	if err != nil {
		log.Error("staged-list tool failed: %v", err)
		return nil, nil, err
	}

	return nil, &StagedListResponse{Files: stagedFileResults(files), Count: len(files)}, nil
}
