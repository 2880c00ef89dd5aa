package operations

import (
	"context"
	"fmt"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
	"github.com/Epistemic-Technology/pdf-tools/internal/pagerange"
	"github.com/Epistemic-Technology/pdf-tools/internal/pdf"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

// MergeRequest concatenates Inputs in the order given
type MergeRequest struct {
	Inputs []models.SourceInfo
}

// SplitRequest produces one output per range in Ranges, e.g. "1-3,5"
type SplitRequest struct {
	Input  models.SourceInfo
	Ranges string
}

// DeletePagesRequest removes pages. Pages and PageSpec are combined;
// PageSpec uses the range grammar, e.g. "2,4-6".
type DeletePagesRequest struct {
	Input    models.SourceInfo
	Pages    []int
	PageSpec string
}

// RotateRequest sets every page's rotation to Angle degrees
type RotateRequest struct {
	Input models.SourceInfo
	Angle int
}

// WatermarkRequest overlays Text on every page. Nil or zero style fields
// take the configured defaults.
type WatermarkRequest struct {
	Input    models.SourceInfo
	Text     string
	FontSize int
	Opacity  *float64
	Rotation *float64
	Color    string
}

// CompressRequest re-encodes Input; an empty Tier uses the configured default
type CompressRequest struct {
	Input models.SourceInfo
	Tier  string
}

// Merge combines at least two documents into one
func (e *Engine) Merge(ctx context.Context, req MergeRequest) (*models.TransformResult, error) {
	return e.run(pdf.OpMerge, func() (*models.TransformResult, error) {
		n := len(req.Inputs)
		if n < 2 {
			return nil, &errs.Error{Kind: errs.KindValidation, Reason: errs.ReasonInsufficientInputs, Op: pdf.OpMerge,
				Msg: fmt.Sprintf("at least 2 documents are required, got %d", n)}
		}
		if n > e.maxMergeInputs {
			return nil, &errs.Error{Kind: errs.KindValidation, Reason: errs.ReasonInvalidInput, Op: pdf.OpMerge,
				Msg: fmt.Sprintf("at most %d documents can be merged, got %d", e.maxMergeInputs, n)}
		}

		docs, err := e.loadInputs(ctx, req.Inputs)
		if err != nil {
			return nil, err
		}
		merged, err := pdf.Merge(docs)
		if err != nil {
			return nil, err
		}
		e.log.Debug("Merged %d documents into %d pages", n, merged.PageCount())
		return e.stage(ctx, pdf.OpMerge, merged)
	})
}

// Split writes one document per page range, in the order the ranges were given
func (e *Engine) Split(ctx context.Context, req SplitRequest) (*models.TransformResult, error) {
	return e.run(pdf.OpSplit, func() (*models.TransformResult, error) {
		doc, err := e.loadInput(ctx, req.Input)
		if err != nil {
			return nil, err
		}
		ranges, err := pagerange.Parse(req.Ranges, doc.PageCount())
		if err != nil {
			return nil, err
		}
		parts, err := pdf.Split(doc, ranges)
		if err != nil {
			return nil, err
		}
		e.log.Debug("Split %d pages into %d documents", doc.PageCount(), len(parts))
		return e.stage(ctx, pdf.OpSplit, parts...)
	})
}

// DeletePages removes the requested pages
func (e *Engine) DeletePages(ctx context.Context, req DeletePagesRequest) (*models.TransformResult, error) {
	return e.run(pdf.OpDeletePages, func() (*models.TransformResult, error) {
		doc, err := e.loadInput(ctx, req.Input)
		if err != nil {
			return nil, err
		}
		pages := append([]int(nil), req.Pages...)
		if req.PageSpec != "" {
			more, err := pagerange.ParsePages(req.PageSpec, doc.PageCount())
			if err != nil {
				return nil, err
			}
			pages = append(pages, more...)
		}
		out, err := pdf.DeletePages(doc, pages)
		if err != nil {
			return nil, err
		}
		e.log.Debug("Deleted pages %v: %d of %d pages remain", pages, out.PageCount(), doc.PageCount())
		return e.stage(ctx, pdf.OpDeletePages, out)
	})
}

// Rotate sets an absolute rotation on every page
func (e *Engine) Rotate(ctx context.Context, req RotateRequest) (*models.TransformResult, error) {
	return e.run(pdf.OpRotate, func() (*models.TransformResult, error) {
		doc, err := e.loadInput(ctx, req.Input)
		if err != nil {
			return nil, err
		}
		out, err := pdf.Rotate(doc, req.Angle)
		if err != nil {
			return nil, err
		}
		e.log.Debug("Rotated %d pages to %d degrees", out.PageCount(), req.Angle)
		return e.stage(ctx, pdf.OpRotate, out)
	})
}

// watermarkOptions resolves the request's style against the defaults
func (e *Engine) watermarkOptions(req WatermarkRequest) pdf.WatermarkOptions {
	opts := e.watermark
	if req.FontSize != 0 {
		opts.FontSize = req.FontSize
	}
	if req.Opacity != nil {
		opts.Opacity = *req.Opacity
	}
	if req.Rotation != nil {
		opts.Rotation = *req.Rotation
	}
	if req.Color != "" {
		opts.Color = req.Color
	}
	return opts
}

// Watermark overlays text on every page
func (e *Engine) Watermark(ctx context.Context, req WatermarkRequest) (*models.TransformResult, error) {
	return e.run(pdf.OpWatermark, func() (*models.TransformResult, error) {
		opts := e.watermarkOptions(req)
		if err := opts.Validate(); err != nil {
			return nil, err
		}
		doc, err := e.loadInput(ctx, req.Input)
		if err != nil {
			return nil, err
		}
		out, err := pdf.Watermark(doc, req.Text, opts)
		if err != nil {
			return nil, err
		}
		e.log.Debug("Watermarked %d pages", out.PageCount())
		return e.stage(ctx, pdf.OpWatermark, out)
	})
}

// Compress re-encodes a document and reports the size change
func (e *Engine) Compress(ctx context.Context, req CompressRequest) (*models.TransformResult, error) {
	return e.run(pdf.OpCompress, func() (*models.TransformResult, error) {
		tier := e.defaultTier
		if req.Tier != "" {
			t, err := pdf.ParseTier(req.Tier)
			if err != nil {
				return nil, err
			}
			tier = t
		}

		doc, err := e.loadInput(ctx, req.Input)
		if err != nil {
			return nil, err
		}
		out, err := pdf.Compress(doc, tier)
		if err != nil {
			return nil, err
		}

		result, err := e.stage(ctx, pdf.OpCompress, out)
		if err != nil {
			return nil, err
		}
		result.Compression = &models.CompressionReport{
			Tier:           string(tier),
			OriginalSize:   doc.Size(),
			CompressedSize: out.Size(),
			Ratio:          compressionRatio(doc.Size(), out.Size()),
		}
		e.log.Debug("Compressed %d -> %d bytes (%s)", doc.Size(), out.Size(), tier)
		return result, nil
	})
}

// compressionRatio reports how many times smaller the output is than the input.
func compressionRatio(original, compressed int64) float64 {
	if compressed <= 0 {
		return 0
	}
	return float64(original) / float64(compressed)
}
