package tools

import (
	"time"

	"github.com/Epistemic-Technology/pdf-tools/models"
)

// DocumentInput identifies one input PDF. Set exactly one of path, url,
// zotero_id or raw_data.
type DocumentInput struct {
	Path      string `json:"path,omitempty"`       // Local file path readable by the server
	URL       string `json:"url,omitempty"`        // http(s) URL; the response Content-Type is the declared type
	ZoteroID  string `json:"zotero_id,omitempty"`  // Zotero attachment key (see zotero-find-pdfs)
	RawData   []byte `json:"raw_data,omitempty"`   // Base64-encoded PDF bytes
	MediaType string `json:"media_type,omitempty"` // Declared type for path or raw_data inputs
}

func (d DocumentInput) source() models.SourceInfo {
	return models.SourceInfo{
		Path:      d.Path,
		URL:       d.URL,
		ZoteroID:  d.ZoteroID,
		Data:      d.RawData,
		MediaType: d.MediaType,
	}
}

// StagedFileResult is one staged output. Read it through resource_uri.
type StagedFileResult struct {
	Name        string    `json:"name"`
	ResourceURI string    `json:"resource_uri"`
	Size        int64     `json:"size"`
	Pages       int       `json:"pages,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransformResponse is returned by every transform tool
type TransformResponse struct {
	Operation   string                    `json:"operation"`
	Files       []StagedFileResult        `json:"files"`
	Compression *models.CompressionReport `json:"compression,omitempty"`
}

func stagedFileResults(files []models.StagedFile) []StagedFileResult {
	results := make([]StagedFileResult, len(files))
	for i, f := range files {
		results[i] = StagedFileResult{
			Name:        f.Name,
			ResourceURI: f.URI(),
			Size:        f.Size,
			Pages:       f.Pages,
			CreatedAt:   f.CreatedAt,
		}
	}
	return results
}

func newTransformResponse(result *models.TransformResult) *TransformResponse {
	return &TransformResponse{
		Operation:   result.Operation,
		Files:       stagedFileResults(result.Files),
		Compression: result.Compression,
	}
}
