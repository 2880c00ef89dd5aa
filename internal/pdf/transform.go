package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
	"github.com/Epistemic-Technology/pdf-tools/internal/pagerange"
)

// Operation names used in errors and staged file names
const (
	OpMerge       = "merge"
	OpSplit       = "split"
	OpDeletePages = "delete_pages"
	OpRotate      = "rotate"
	OpWatermark   = "watermark"
	OpCompress    = "compress"
)

// fail wraps err as an OperationError unless it already carries a kind
func fail(op string, reason errs.Reason, err error) error {
	var e *errs.Error
	if errors.As(err, &e) {
		if e.Op == "" || e.Op == "load" {
			clone := *e
			clone.Op = op
			return &clone
		}
		return err
	}
	return errs.Operation(op, reason, err)
}

// Merge appends the pages of each document, in the order given, into a new
// Document. At least two non-empty documents are required.
func Merge(docs []*Document) (*Document, error) {
	if len(docs) < 2 {
		return nil, &errs.Error{
			Kind:   errs.KindValidation,
			Reason: errs.ReasonInsufficientInputs,
			Op:     OpMerge,
			Msg:    fmt.Sprintf("at least 2 documents are required, got %d", len(docs)),
		}
	}

	want := 0
	readers := make([]io.ReadSeeker, len(docs))
	for i, doc := range docs {
		if doc.Empty() {
			return nil, &errs.Error{
				Kind:   errs.KindValidation,
				Reason: errs.ReasonInsufficientInputs,
				Op:     OpMerge,
				Msg:    fmt.Sprintf("document %d has no pages", i+1),
			}
		}
		want += doc.PageCount()
		readers[i] = doc.reader()
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, newConfig()); err != nil {
		return nil, errs.Operation(OpMerge, errs.ReasonEncode, err)
	}

	merged, err := Load(buf.Bytes())
	if err != nil {
		return nil, fail(OpMerge, errs.ReasonEncode, err)
	}
	if merged.PageCount() != want {
		return nil, errs.Operation(OpMerge, errs.ReasonEncode,
			fmt.Errorf("merged document has %d pages, expected %d", merged.PageCount(), want))
	}
	return merged, nil
}

// Split builds one Document per range, in the order supplied. Every range
// is validated against doc before any page is copied.
func Split(doc *Document, ranges []pagerange.PageRange) ([]*Document, error) {
	if len(ranges) == 0 {
		return nil, &errs.Error{Kind: errs.KindValidation, Reason: errs.ReasonInvalidInput, Op: OpSplit, Msg: "no page ranges given"}
	}
	for _, r := range ranges {
		if err := r.Validate(doc.PageCount()); err != nil {
			return nil, err
		}
	}

	parts := make([]*Document, 0, len(ranges))
	for _, r := range ranges {
		b := newBuilder(doc)
		if err := b.AddAll(rangePages(doc, r)); err != nil {
			return nil, errs.Operation(OpSplit, errs.ReasonEncode, err)
		}
		part, err := b.Build()
		if err != nil {
			return nil, fail(OpSplit, errs.ReasonEncode, err)
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// DeletePages returns a Document without the given 1-based pages. Repeated
// numbers count once. Every number must lie in [1, PageCount]; deleting
// every page is rejected since a PDF needs at least one page.
func DeletePages(doc *Document, pages []int) (*Document, error) {
	if len(pages) == 0 {
		return nil, &errs.Error{Kind: errs.KindValidation, Reason: errs.ReasonInvalidInput, Op: OpDeletePages, Msg: "no pages to delete"}
	}
	if err := pagerange.ValidatePages(pages, doc.PageCount()); err != nil {
		return nil, err
	}

	drop := make(map[int]bool, len(pages))
	for _, p := range pages {
		drop[p] = true
	}
	if len(drop) == doc.PageCount() {
		return nil, &errs.Error{
			Kind:   errs.KindValidation,
			Reason: errs.ReasonInvalidInput,
			Op:     OpDeletePages,
			Msg:    fmt.Sprintf("cannot delete all %d pages", doc.PageCount()),
		}
	}

	b := newBuilder(doc)
	if err := b.AddAll(keptPages(doc, drop)); err != nil {
		return nil, errs.Operation(OpDeletePages, errs.ReasonEncode, err)
	}
	out, err := b.Build()
	if err != nil {
		return nil, fail(OpDeletePages, errs.ReasonEncode, err)
	}
	return out, nil
}

// Rotate sets every page's rotation to angle. The value is absolute and is
// written as given: rotating a page already at 90 by 90 leaves it at 90, and
// angles outside [0, 360) are not normalized.
func Rotate(doc *Document, angle int) (*Document, error) {
	ctx, err := doc.context(newConfig())
	if err != nil {
		return nil, errs.Operation(OpRotate, errs.ReasonDecode, err)
	}

	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		d, _, _, err := ctx.PageDict(pageNr, false)
		if err != nil {
			return nil, errs.Operation(OpRotate, errs.ReasonDecode, fmt.Errorf("page %d: %w", pageNr, err))
		}
		if d == nil {
			return nil, errs.Operation(OpRotate, errs.ReasonDecode, fmt.Errorf("page %d is missing", pageNr))
		}
		d.Update("Rotate", types.Integer(angle))
	}

	out, err := fromContext(ctx)
	if err != nil {
		return nil, errs.Operation(OpRotate, errs.ReasonEncode, err)
	}
	return out, nil
}
