package documents

import (
	"bytes"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	mediaTypePDF     = "application/pdf"
	mediaTypeUnknown = "application/octet-stream"
)

var pdfMagic = []byte("%PDF-")

// DetectMediaType sniffs data and returns its media type without parameters.
// PDF is recognised by its header; anything else falls back to the
// WHATWG sniffing rules so the validator can name what it rejected.
func DetectMediaType(data []byte) string {
	if len(data) == 0 {
		return mediaTypeUnknown
	}
	if bytes.HasPrefix(data, pdfMagic) {
		return mediaTypePDF
	}
	mt, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return mediaTypeUnknown
	}
	return mt
}

// MediaTypeForPath guesses a media type from a file extension. It returns
// "" when the extension is unknown.
func MediaTypeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return mediaTypePDF
	}
	mt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	if err != nil {
		return ""
	}
	return mt
}
