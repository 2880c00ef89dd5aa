package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-tools/internal/documents"
	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
	"github.com/Epistemic-Technology/pdf-tools/resources"
	"github.com/Epistemic-Technology/pdf-tools/tools"
)

// CreateServer registers every pdf-tools tool and the staged resources
func CreateServer(engine *operations.Engine, zotero documents.ZoteroConfig, version string, log logger.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "pdf-tools", Version: version}, nil)

	stagedResourceHandler := resources.NewStagedResourceHandler(engine.Stager())

	// Transforms share the engine and logger
	mcp.AddTool(server, tools.PDFMergeTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFMergeQuery) (*mcp.CallToolResult, *tools.TransformResponse, error) {
		return tools.PDFMergeToolHandler(ctx, req, query, engine, log)
	})

	mcp.AddTool(server, tools.PDFSplitTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFSplitQuery) (*mcp.CallToolResult, *tools.TransformResponse, error) {
		return tools.PDFSplitToolHandler(ctx, req, query, engine, log)
	})

	mcp.AddTool(server, tools.PDFDeletePagesTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFDeletePagesQuery) (*mcp.CallToolResult, *tools.TransformResponse, error) {
		return tools.PDFDeletePagesToolHandler(ctx, req, query, engine, log)
	})

	mcp.AddTool(server, tools.PDFRotateTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFRotateQuery) (*mcp.CallToolResult, *tools.TransformResponse, error) {
		return tools.PDFRotateToolHandler(ctx, req, query, engine, log)
	})

	mcp.AddTool(server, tools.PDFWatermarkTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFWatermarkQuery) (*mcp.CallToolResult, *tools.TransformResponse, error) {
		return tools.PDFWatermarkToolHandler(ctx, req, query, engine, log)
	})

	mcp.AddTool(server, tools.PDFCompressTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFCompressQuery) (*mcp.CallToolResult, *tools.TransformResponse, error) {
		return tools.PDFCompressToolHandler(ctx, req, query, engine, log)
	})

	mcp.AddTool(server, tools.StagedListTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.StagedListQuery) (*mcp.CallToolResult, *tools.StagedListResponse, error) {
		return tools.StagedListToolHandler(ctx, req, query, engine, log)
	})

	if zotero.Configured() {
		mcp.AddTool(server, tools.ZoteroFindPDFsTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ZoteroFindPDFsQuery) (*mcp.CallToolResult, *tools.ZoteroFindPDFsResponse, error) {
			return tools.ZoteroFindPDFsToolHandler(ctx, req, query, zotero, log)
		})
	} else {
		log.Info("Zotero credentials not configured, zotero-find-pdfs disabled")
	}

	// Template for staged PDF bytes
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "staged://{name}",
		Name:        "staged-pdf",
		Description: "A staged transform output",
		MIMEType:    "application/pdf",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return stagedResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for staged file description
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "staged://{name}/info",
		Name:        "staged-info",
		Description: "Operation, size and creation time of a staged output",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return stagedResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	return server
}
