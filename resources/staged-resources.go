package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
	"github.com/Epistemic-Technology/pdf-tools/internal/staging"
)

// Scheme prefixes every staged resource URI
const Scheme = "staged://"

const (
	pdfMIMEType  = "application/pdf"
	jsonMIMEType = "application/json"
)

// StagedResourceHandler serves staged transform outputs
type StagedResourceHandler struct {
	stager *staging.Stager
}

// NewStagedResourceHandler creates a new staged resource handler
func NewStagedResourceHandler(stager *staging.Stager) *StagedResourceHandler {
	return &StagedResourceHandler{stager: stager}
}

// ReadResource reads a staged file by URI. staged://{name} returns the PDF
// bytes; staged://{name}/info returns its description as JSON.
func (h *StagedResourceHandler) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	if !strings.HasPrefix(uri, Scheme) {
		return nil, fmt.Errorf("invalid URI scheme, expected %s", Scheme)
	}

	path := strings.TrimPrefix(uri, Scheme)
	name, view, _ := strings.Cut(path, "/")
	if name == "" {
		return nil, fmt.Errorf("invalid URI, missing file name")
	}

	switch view {
	case "":
		data, _, err := h.stager.ReadFile(name)
		if err != nil {
			return nil, notFoundOr(uri, err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: pdfMIMEType,
					Blob:     data,
				},
			},
		}, nil

	case "info":
		f, err := h.stager.Stat(name)
		if err != nil {
			return nil, notFoundOr(uri, err)
		}
		content, err := json.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal staged file info: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: jsonMIMEType,
					Text:     string(content),
				},
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown resource type: %s", view)
	}
}

func notFoundOr(uri string, err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return mcp.ResourceNotFoundError(uri)
	}
	return err
}
