// Package validate enforces upload constraints before any transform runs.
package validate

import (
	"errors"
	"io/fs"
	"mime"
	"os"
	"strings"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
)

// DefaultMaxBytes is the default upload ceiling (50 MiB)
const DefaultMaxBytes int64 = 50 * 1024 * 1024

// pdfMediaTypes lists the declared media types accepted as PDF
var pdfMediaTypes = map[string]bool{
	"application/pdf":   true,
	"application/x-pdf": true,
}

// Upload describes an input document as received from the outer layer.
// Either Path or Data must be set; when Path is set the file size on disk
// takes precedence over Size.
type Upload struct {
	Name      string
	MediaType string
	Size      int64
	Path      string
	Data      []byte
}

// Length returns the declared byte length, falling back to len(Data)
func (u Upload) Length() int64 {
	if u.Size > 0 {
		return u.Size
	}
	return int64(len(u.Data))
}

// Validator checks uploads against a size ceiling and the PDF media type
type Validator struct {
	MaxBytes int64
}

// New returns a Validator with the given ceiling, or DefaultMaxBytes if maxBytes <= 0
func New(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Validator{MaxBytes: maxBytes}
}

// Check succeeds only for a present PDF upload no larger than MaxBytes
func (v *Validator) Check(u Upload) error {
	size, err := v.size(u)
	if err != nil {
		return err
	}

	if !IsPDFMediaType(u.MediaType) {
		return &errs.Error{
			Kind:   errs.KindValidation,
			Reason: errs.ReasonWrongType,
			Token:  u.MediaType,
			Msg:    "invalid file type " + quoteOrEmpty(u.MediaType) + ": only PDF files are allowed",
		}
	}

	limit := v.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if size > limit {
		return errs.Validation(errs.ReasonTooLarge, "%s is %d bytes, exceeds the %d byte limit", displayName(u), size, limit)
	}

	return nil
}

// CheckAll validates every upload and returns the first failure
func (v *Validator) CheckAll(uploads []Upload) error {
	for _, u := range uploads {
		if err := v.Check(u); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) size(u Upload) (int64, error) {
	if u.Path == "" {
		if len(u.Data) == 0 {
			return 0, errs.Validation(errs.ReasonMissing, "no file provided")
		}
		return u.Length(), nil
	}

	info, err := os.Stat(u.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, errs.Validation(errs.ReasonMissing, "file not found: %s", u.Path)
	}
	if err != nil {
		return 0, &errs.Error{Kind: errs.KindValidation, Reason: errs.ReasonMissing, Msg: "file not readable: " + u.Path, Err: err}
	}
	if info.IsDir() {
		return 0, errs.Validation(errs.ReasonMissing, "%s is a directory", u.Path)
	}
	return info.Size(), nil
}

// IsPDFMediaType reports whether a declared media type denotes PDF.
// Parameters such as charset are ignored.
func IsPDFMediaType(mediaType string) bool {
	if mediaType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.TrimSpace(mediaType)
	}
	return pdfMediaTypes[strings.ToLower(mt)]
}

func displayName(u Upload) string {
	if u.Name != "" {
		return u.Name
	}
	if u.Path != "" {
		return u.Path
	}
	return "upload"
}

func quoteOrEmpty(s string) string {
	if s == "" {
		return "(none)"
	}
	return `"` + s + `"`
}
