// Package pdf is the document transformation engine. A Document is an
// immutable, validated PDF together with a description of its pages; every
// transform reads a private pdfcpu context from the source bytes and returns
// a new Document backed by freshly written bytes, so inputs are never
// mutated and outputs never share storage.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
)

// Page is one page of a Document. Index is 0-based.
type Page struct {
	Index    int     `json:"index"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation int     `json:"rotation"`
}

// Number returns the 1-based page number
func (p Page) Number() int {
	return p.Index + 1
}

// Document is an immutable in-memory model of a PDF's ordered pages
type Document struct {
	data  []byte
	pages []Page
}

// newConfig returns a fresh pdfcpu configuration. pdfcpu commands write to
// their configuration, so one is created per call.
func newConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Load parses and validates data. Documents protected only by an owner
// password (or an empty user password) are opened and re-serialized without
// their encryption; this is a compatibility measure, not a security check.
// Corrupt input fails here with an OperationError before any transform runs.
func Load(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, errs.Operation("load", errs.ReasonDecode, errors.New("empty document"))
	}

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfig())
	if err != nil {
		return nil, errs.Operation("load", errs.ReasonDecode, err)
	}

	if !isEncrypted(ctx) {
		pages, err := describePages(ctx)
		if err != nil {
			return nil, errs.Operation("load", errs.ReasonDecode, err)
		}
		return &Document{data: bytes.Clone(data), pages: pages}, nil
	}

	stripEncryption(ctx)
	doc, err := fromContext(ctx)
	if err != nil {
		return nil, errs.Operation("load", errs.ReasonEncode, err)
	}
	return doc, nil
}

// LoadFile reads and loads the PDF at path
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Operation("load", errs.ReasonDecode, fmt.Errorf("failed to read %s: %w", path, err))
	}
	return Load(data)
}

// fromContext serializes ctx into a new Document. The page description is
// taken from ctx so documents whose page attributes pdfcpu would not
// re-validate (e.g. a non-quadrant rotation) can still be produced.
func fromContext(ctx *model.Context) (*Document, error) {
	pages, err := describePages(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return &Document{data: buf.Bytes(), pages: pages}, nil
}

func describePages(ctx *model.Context) ([]Page, error) {
	pages := make([]Page, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		d, _, inherited, err := ctx.PageDict(pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", pageNr, err)
		}
		if d == nil {
			return nil, fmt.Errorf("page %d is missing", pageNr)
		}

		page := Page{Index: pageNr - 1}
		if inherited != nil {
			box := inherited.MediaBox
			if box == nil {
				box = inherited.CropBox
			}
			if box != nil {
				page.Width = box.Width()
				page.Height = box.Height()
			}
			page.Rotation = inherited.Rotate
		}
		if r := d.IntEntry("Rotate"); r != nil {
			page.Rotation = *r
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func isEncrypted(ctx *model.Context) bool {
	return ctx.Encrypt != nil || ctx.E != nil
}

// stripEncryption drops the encryption dictionary of a context whose
// objects have already been decrypted on read.
func stripEncryption(ctx *model.Context) {
	ctx.Encrypt = nil
	ctx.E = nil
	ctx.EncKey = nil
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Size returns the serialized size in bytes
func (d *Document) Size() int64 {
	return int64(len(d.data))
}

// Empty reports whether the document has no pages
func (d *Document) Empty() bool {
	return d == nil || len(d.pages) == 0
}

// Bytes returns a copy of the serialized document
func (d *Document) Bytes() []byte {
	return bytes.Clone(d.data)
}

// Page returns the page at 0-based index i
func (d *Document) Page(i int) (Page, bool) {
	if i < 0 || i >= len(d.pages) {
		return Page{}, false
	}
	return d.pages[i], true
}

// Pages yields each page by value in document order
func (d *Document) Pages() iter.Seq2[int, Page] {
	return func(yield func(int, Page) bool) {
		for i, p := range d.pages {
			if !yield(i, p) {
				return
			}
		}
	}
}

// reader returns a fresh reader over the document's bytes. pdfcpu never
// writes through it, so concurrent transforms on one Document are safe.
func (d *Document) reader() *bytes.Reader {
	return bytes.NewReader(d.data)
}

// context reads a private, validated pdfcpu context for this document
func (d *Document) context(conf *model.Configuration) (*model.Context, error) {
	return api.ReadValidateAndOptimize(d.reader(), conf)
}
