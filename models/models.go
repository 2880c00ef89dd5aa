package models

import "time"

// StagedFile is a reference to a transform output persisted in the staging directory
type StagedFile struct {
	Name      string    `json:"name" yaml:"name"`
	Operation string    `json:"operation" yaml:"operation"`
	Size      int64     `json:"size" yaml:"size"`
	Pages     int       `json:"pages,omitempty" yaml:"pages,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// URI returns the MCP resource URI for the staged file
func (f StagedFile) URI() string {
	return "staged://" + f.Name
}

// CompressionReport describes the effect of a compress operation
type CompressionReport struct {
	Tier           string  `json:"tier" yaml:"tier"`
	OriginalSize   int64   `json:"original_size" yaml:"original_size"`
	CompressedSize int64   `json:"compressed_size" yaml:"compressed_size"`
	// Ratio is OriginalSize / CompressedSize; values below 1 mean the output grew
	Ratio float64 `json:"ratio" yaml:"ratio"`
}

// TransformResult is the ordered list of staged outputs of one operation
type TransformResult struct {
	Operation   string             `json:"operation" yaml:"operation"`
	Files       []StagedFile       `json:"files" yaml:"files"`
	Compression *CompressionReport `json:"compression,omitempty" yaml:"compression,omitempty"`
}

// SourceInfo describes where an input PDF came from. Exactly one field is set.
type SourceInfo struct {
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	ZoteroID string `json:"zotero_id,omitempty" yaml:"zotero_id,omitempty"`
	// Data carries raw PDF bytes (base64 in JSON)
	Data []byte `json:"data,omitempty" yaml:"-"`
	// MediaType is the declared type for Path or Data inputs; defaults to application/pdf
	MediaType string `json:"media_type,omitempty" yaml:"media_type,omitempty"`
}

// String names the source for logs and errors
func (s SourceInfo) String() string {
	switch {
	case s.Path != "":
		return s.Path
	case s.URL != "":
		return s.URL
	case s.ZoteroID != "":
		return "zotero:" + s.ZoteroID
	case len(s.Data) > 0:
		return "raw data"
	default:
		return "empty source"
	}
}
