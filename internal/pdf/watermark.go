package pdf

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"golang.org/x/image/colornames"
	"golang.org/x/text/unicode/norm"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
)

// watermarkFont is one of the PDF standard fonts, so nothing is embedded
const watermarkFont = "Helvetica"

// capHeight is the Helvetica cap height per point of font size. Half of it
// approximates the distance from the baseline to the middle of the glyphs.
const capHeight = 0.718

// WatermarkOptions controls how watermark text is drawn
type WatermarkOptions struct {
	FontSize int     `json:"font_size,omitempty" yaml:"font_size" mapstructure:"font_size"`
	Opacity  float64 `json:"opacity,omitempty" yaml:"opacity" mapstructure:"opacity"`
	Rotation float64 `json:"rotation,omitempty" yaml:"rotation" mapstructure:"rotation"`
	// Color is "#rrggbb", three floats "r g b" in [0,1], or a CSS color name
	Color string `json:"color,omitempty" yaml:"color" mapstructure:"color"`
}

// DefaultWatermarkOptions returns 50pt gray text at 30% opacity, tilted -45 degrees
func DefaultWatermarkOptions() WatermarkOptions {
	return WatermarkOptions{
		FontSize: 50,
		Opacity:  0.3,
		Rotation: -45,
		Color:    "0.5 0.5 0.5",
	}
}

// WithDefaults fills zero fields from DefaultWatermarkOptions
func (o WatermarkOptions) WithDefaults() WatermarkOptions {
	def := DefaultWatermarkOptions()
	if o.FontSize == 0 {
		o.FontSize = def.FontSize
	}
	if o.Opacity == 0 {
		o.Opacity = def.Opacity
	}
	if o.Color == "" {
		o.Color = def.Color
	}
	return o
}

// Validate checks the ranges accepted for each option. Any finite rotation
// is accepted.
func (o WatermarkOptions) Validate() error {
	if o.FontSize <= 0 {
		return errs.Validation(errs.ReasonInvalidInput, "font size must be positive, got %d", o.FontSize)
	}
	if o.Opacity < 0 || o.Opacity > 1 {
		return errs.Validation(errs.ReasonInvalidInput, "opacity must be between 0 and 1, got %g", o.Opacity)
	}
	if math.IsNaN(o.Rotation) || math.IsInf(o.Rotation, 0) {
		return errs.Validation(errs.ReasonInvalidInput, "rotation must be a finite angle, got %g", o.Rotation)
	}
	if _, err := ParseColor(o.Color); err != nil {
		return err
	}
	return nil
}

// normalizeRotation folds an angle in degrees into (-180, 180]
func normalizeRotation(deg float64) float64 {
	r := math.Remainder(deg, 360)
	if r <= -180 {
		r += 360
	}
	return r
}

// anchorOffset is the offset from the page centre of the centre of the text
// box such that the left end of the baseline sits 2*fontSize left of the
// page centre, with the text turned about that point.
func (o WatermarkOptions) anchorOffset(text string) (dx, dy float64) {
	size := float64(o.FontSize)
	cx := font.TextWidth(text, watermarkFont, o.FontSize) / 2
	cy := size * capHeight / 2

	sin, cos := math.Sincos(normalizeRotation(o.Rotation) * math.Pi / 180)
	return -2*size + cx*cos - cy*sin, cx*sin + cy*cos
}

// description renders the options as a pdfcpu watermark description for text
func (o WatermarkOptions) description(text string) (string, error) {
	rgb, err := ParseColor(o.Color)
	if err != nil {
		return "", err
	}
	dx, dy := o.anchorOffset(text)
	parts := []string{
		"fontname:" + watermarkFont,
		"points:" + strconv.Itoa(o.FontSize),
		"position:c",
		fmt.Sprintf("offset:%.2f %.2f", dx, dy),
		"scalefactor:1 abs",
		fmt.Sprintf("rotation:%.2f", normalizeRotation(o.Rotation)),
		fmt.Sprintf("opacity:%.2f", o.Opacity),
		fmt.Sprintf("fillcolor:%.3f %.3f %.3f", rgb[0], rgb[1], rgb[2]),
	}
	return strings.Join(parts, ", "), nil
}

// ParseColor resolves a color to RGB components in [0,1]
func ParseColor(s string) ([3]float64, error) {
	var rgb [3]float64
	s = strings.TrimSpace(s)
	invalid := errs.Validation(errs.ReasonInvalidInput, "invalid color %q", s)

	switch {
	case s == "":
		return rgb, invalid
	case strings.HasPrefix(s, "#"):
		hex := s[1:]
		if len(hex) != 6 {
			return rgb, invalid
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return rgb, invalid
		}
		rgb[0] = float64(v>>16&0xff) / 255
		rgb[1] = float64(v>>8&0xff) / 255
		rgb[2] = float64(v&0xff) / 255
		return rgb, nil
	}

	if fields := strings.Fields(s); len(fields) == 3 {
		for i, f := range fields {
			c, err := strconv.ParseFloat(f, 64)
			if err != nil || c < 0 || c > 1 {
				return rgb, invalid
			}
			rgb[i] = c
		}
		return rgb, nil
	}

	named, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return rgb, invalid
	}
	rgb[0] = float64(named.R) / 255
	rgb[1] = float64(named.G) / 255
	rgb[2] = float64(named.B) / 255
	return rgb, nil
}

// Watermark draws text once on top of every page
func Watermark(doc *Document, text string, opts WatermarkOptions) (*Document, error) {
	text = norm.NFC.String(strings.TrimSpace(text))
	if text == "" {
		return nil, &errs.Error{Kind: errs.KindValidation, Reason: errs.ReasonInvalidInput, Op: OpWatermark, Msg: "watermark text is required"}
	}
	if err := opts.Validate(); err != nil {
		return nil, fail(OpWatermark, errs.ReasonInvalidInput, err)
	}
	desc, err := opts.description(text)
	if err != nil {
		return nil, fail(OpWatermark, errs.ReasonInvalidInput, err)
	}

	var buf bytes.Buffer
	if err := api.AddTextWatermarks(doc.reader(), &buf, nil, true, text, desc, newConfig()); err != nil {
		return nil, errs.Operation(OpWatermark, errs.ReasonEncode, err)
	}

	out, err := Load(buf.Bytes())
	if err != nil {
		return nil, fail(OpWatermark, errs.ReasonEncode, err)
	}
	if out.PageCount() != doc.PageCount() {
		return nil, errs.Operation(OpWatermark, errs.ReasonEncode,
			fmt.Errorf("watermarked document has %d pages, expected %d", out.PageCount(), doc.PageCount()))
	}
	return out, nil
}
