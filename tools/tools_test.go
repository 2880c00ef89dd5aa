package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-tools/internal/documents"
	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/operations"
	"github.com/Epistemic-Technology/pdf-tools/internal/pdftest"
	"github.com/Epistemic-Technology/pdf-tools/internal/staging"
)

func newEngine(t *testing.T) *operations.Engine {
	t.Helper()
	stager, err := staging.New(t.TempDir(), nil, logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("Failed to create stager: %v", err)
	}
	return operations.New(operations.Deps{Stager: stager})
}

func TestToolDefinitions(t *testing.T) {
	tools := []*mcp.Tool{
		PDFMergeTool(),
		PDFSplitTool(),
		PDFDeletePagesTool(),
		PDFRotateTool(),
		PDFWatermarkTool(),
		PDFCompressTool(),
		StagedListTool(),
		ZoteroFindPDFsTool(),
	}

	seen := make(map[string]bool)
	for _, tool := range tools {
		if tool.Name == "" || tool.Description == "" {
			t.Errorf("Tool %q is missing a name or description", tool.Name)
		}
		if tool.InputSchema == nil {
			t.Errorf("Tool %q has no input schema", tool.Name)
		}
		if seen[tool.Name] {
			t.Errorf("Duplicate tool name %q", tool.Name)
		}
		seen[tool.Name] = true
	}
}

func TestPDFMergeToolHandler(t *testing.T) {
	engine := newEngine(t)
	log := logger.NewNoOpLogger()
	ctx := context.Background()

	a := pdftest.WriteFile(t, "a.pdf", pdftest.Sized(2, 100)...)
	b := pdftest.Build(pdftest.Sized(3, 200)...)

	_, response, err := PDFMergeToolHandler(ctx, nil, PDFMergeQuery{
		Inputs: []DocumentInput{{Path: a}, {RawData: b}},
	}, engine, log)
	if err != nil {
		t.Fatalf("PDFMergeToolHandler failed: %v", err)
	}

	if response.Operation != "merge" {
		t.Errorf("Expected operation merge, got %q", response.Operation)
	}
	if len(response.Files) != 1 {
		t.Fatalf("Expected 1 staged file, got %d", len(response.Files))
	}
	f := response.Files[0]
	if f.Pages != 5 {
		t.Errorf("Expected 5 pages, got %d", f.Pages)
	}
	if f.ResourceURI != "staged://"+f.Name {
		t.Errorf("Unexpected resource URI %q", f.ResourceURI)
	}
}

func TestPDFSplitToolHandler(t *testing.T) {
	engine := newEngine(t)
	path := pdftest.WriteFile(t, "in.pdf", pdftest.Sized(4, 100)...)

	_, response, err := PDFSplitToolHandler(context.Background(), nil, PDFSplitQuery{
		Input:  DocumentInput{Path: path},
		Ranges: "3-4,1",
	}, engine, logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("PDFSplitToolHandler failed: %v", err)
	}

	wantPages := []int{2, 1}
	if len(response.Files) != len(wantPages) {
		t.Fatalf("Expected %d files, got %d", len(wantPages), len(response.Files))
	}
	for i, f := range response.Files {
		if f.Pages != wantPages[i] {
			t.Errorf("File %d: expected %d pages, got %d", i, wantPages[i], f.Pages)
		}
	}
}

func TestTransformToolHandlers_Errors(t *testing.T) {
	engine := newEngine(t)
	log := logger.NewNoOpLogger()
	ctx := context.Background()
	path := pdftest.WriteFile(t, "in.pdf", pdftest.Sized(2, 100)...)
	input := DocumentInput{Path: path}

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{
			name: "merge single input",
			call: func() error {
				_, _, err := PDFMergeToolHandler(ctx, nil, PDFMergeQuery{Inputs: []DocumentInput{input}}, engine, log)
				return err
			},
			wantErr: errs.ErrInsufficientInputs,
		},
		{
			name: "delete out of bounds",
			call: func() error {
				_, _, err := PDFDeletePagesToolHandler(ctx, nil, PDFDeletePagesQuery{Input: input, Pages: []int{3}}, engine, log)
				return err
			},
			wantErr: errs.ErrPageOutOfBounds,
		},
		{
			name: "watermark without text",
			call: func() error {
				_, _, err := PDFWatermarkToolHandler(ctx, nil, PDFWatermarkQuery{Input: input}, engine, log)
				return err
			},
			wantErr: errs.ErrInvalidInput,
		},
		{
			name: "compress unknown tier",
			call: func() error {
				_, _, err := PDFCompressToolHandler(ctx, nil, PDFCompressQuery{Input: input, Tier: "extreme"}, engine, log)
				return err
			},
			wantErr: errs.ErrInvalidInput,
		},
		{
			name: "rotate non-PDF",
			call: func() error {
				_, _, err := PDFRotateToolHandler(ctx, nil, PDFRotateQuery{Input: DocumentInput{RawData: []byte("plain text")}, Angle: 90}, engine, log)
				return err
			},
			wantErr: errs.ErrWrongType,
		},
		{
			name: "staged list bad duration",
			call: func() error {
				_, _, err := StagedListToolHandler(ctx, nil, StagedListQuery{OlderThan: "yesterday"}, engine, log)
				return err
			},
			wantErr: errs.ErrInvalidInput,
		},
		{
			name: "zotero without credentials",
			call: func() error {
				_, _, err := ZoteroFindPDFsToolHandler(ctx, nil, ZoteroFindPDFsQuery{}, documents.ZoteroConfig{}, log)
				return err
			},
			wantErr: errs.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStagedListToolHandler(t *testing.T) {
	engine := newEngine(t)
	log := logger.NewNoOpLogger()
	ctx := context.Background()
	path := pdftest.WriteFile(t, "in.pdf", pdftest.Sized(3, 100)...)

	angle := 90
	for range 2 {
		if _, _, err := PDFRotateToolHandler(ctx, nil, PDFRotateQuery{Input: DocumentInput{Path: path}, Angle: angle}, engine, log); err != nil {
			t.Fatalf("PDFRotateToolHandler failed: %v", err)
		}
	}
	if _, _, err := PDFCompressToolHandler(ctx, nil, PDFCompressQuery{Input: DocumentInput{Path: path}}, engine, log); err != nil {
		t.Fatalf("PDFCompressToolHandler failed: %v", err)
	}

	tests := []struct {
		name  string
		query StagedListQuery
		want  int
	}{
		{name: "All", query: StagedListQuery{}, want: 3},
		{name: "By operation", query: StagedListQuery{Operation: "rotate"}, want: 2},
		{name: "Limit", query: StagedListQuery{Limit: 1}, want: 1},
		{name: "Older than an hour", query: StagedListQuery{OlderThan: "1h"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, response, err := StagedListToolHandler(ctx, nil, tt.query, engine, log)
			if err != nil {
				t.Fatalf("StagedListToolHandler failed: %v", err)
			}
			if response.Count != tt.want || len(response.Files) != tt.want {
				t.Errorf("Expected %d files, got %d", tt.want, response.Count)
			}
		})
	}
}
