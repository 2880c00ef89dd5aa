package pdf

import (
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
)

// Tier selects how densely a document is re-encoded. Tiers name the
// output quality: low is the most compact encoding, high keeps the file
// closest to its original structure. No tier touches image data.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// DefaultTier is used when no tier is given
const DefaultTier = TierMedium

// ParseTier parses a tier name; the empty string yields DefaultTier
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultTier, nil
	case TierLow:
		return TierLow, nil
	case TierMedium:
		return TierMedium, nil
	case TierHigh:
		return TierHigh, nil
	default:
		return "", errs.Validation(errs.ReasonInvalidInput, "unknown quality tier %q (expected low, medium or high)", s)
	}
}

type encoding struct {
	objectStreams bool
	dedupContent  bool
	stripMetadata bool
}

func (t Tier) encoding() encoding {
	switch t {
	case TierLow:
		return encoding{objectStreams: true, dedupContent: true, stripMetadata: true}
	case TierHigh:
		return encoding{}
	default:
		return encoding{objectStreams: true, dedupContent: true}
	}
}

func (e encoding) config() *model.Configuration {
	conf := newConfig()
	conf.WriteObjectStream = e.objectStreams
	conf.WriteXRefStream = e.objectStreams
	conf.OptimizeResourceDicts = true
	conf.OptimizeDuplicateContentStreams = e.dedupContent
	return conf
}

// Compress re-serializes doc with the structural encoding of tier. Page
// count and order are unchanged. The output is not guaranteed to be
// smaller, least of all for TierHigh.
func Compress(doc *Document, tier Tier) (*Document, error) {
	enc := tier.encoding()

	ctx, err := doc.context(enc.config())
	if err != nil {
		return nil, errs.Operation(OpCompress, errs.ReasonDecode, err)
	}
	ctx.WriteObjectStream = enc.objectStreams
	ctx.WriteXRefStream = enc.objectStreams

	if enc.stripMetadata {
		if err := stripMetadata(ctx); err != nil {
			return nil, errs.Operation(OpCompress, errs.ReasonDecode, err)
		}
	}

	out, err := fromContext(ctx)
	if err != nil {
		return nil, errs.Operation(OpCompress, errs.ReasonEncode, err)
	}
	if out.PageCount() != doc.PageCount() {
		return nil, errs.Operation(OpCompress, errs.ReasonEncode,
			fmt.Errorf("compressed document has %d pages, expected %d", out.PageCount(), doc.PageCount()))
	}
	return out, nil
}

// stripMetadata removes the XMP stream and page-piece data from the
// catalog and drops the info dictionary.
func stripMetadata(ctx *model.Context) error {
	root, err := ctx.Catalog()
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	root.Delete("Metadata")
	root.Delete("PieceInfo")
	ctx.Info = nil
	return nil
}
