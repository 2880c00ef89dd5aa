package pdf

import (
	"bytes"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
	"github.com/Epistemic-Technology/pdf-tools/internal/pagerange"
	"github.com/Epistemic-Technology/pdf-tools/internal/pdftest"
)

// load builds and loads a document whose page widths start at base
func load(t *testing.T, pages int, base float64) *Document {
	t.Helper()
	doc, err := Load(pdftest.Build(pdftest.Sized(pages, base)...))
	require.NoError(t, err)
	require.Equal(t, pages, doc.PageCount())
	return doc
}

func widths(doc *Document) []float64 {
	var w []float64
	for _, p := range doc.Pages() {
		w = append(w, p.Width)
	}
	return w
}

func rotations(doc *Document) []int {
	var r []int
	for _, p := range doc.Pages() {
		r = append(r, p.Rotation)
	}
	return r
}

func TestLoad(t *testing.T) {
	doc := load(t, 3, 200)
	assert.Equal(t, []float64{200, 201, 202}, widths(doc))
	assert.Greater(t, doc.Size(), int64(0))

	p, ok := doc.Page(1)
	require.True(t, ok)
	assert.Equal(t, 2, p.Number())
	assert.Equal(t, 400.0, p.Height)

	_, ok = doc.Page(3)
	assert.False(t, ok)
}

func TestLoad_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "not a pdf", data: []byte("This is not a PDF")},
		{name: "truncated", data: pdftest.Build(pdftest.Sized(2, 100)...)[:40]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.data)
			require.Error(t, err)
			assert.Equal(t, errs.KindOperation, errs.KindOf(err))
		})
	}
}

func TestLoad_ReadsRotation(t *testing.T) {
	doc, err := Load(pdftest.Build(
		pdftest.PageSpec{Width: 100, Height: 200, Rotate: 180},
		pdftest.PageSpec{Width: 101, Height: 200},
	))
	require.NoError(t, err)
	assert.Equal(t, []int{180, 0}, rotations(doc))
}

func TestLoad_BypassesOwnerPasswordEncryption(t *testing.T) {
	plain := pdftest.Build(pdftest.Sized(2, 300)...)

	var encrypted bytes.Buffer
	conf := model.NewAESConfiguration("", "owner-secret", 256)
	if err := api.Encrypt(bytes.NewReader(plain), &encrypted, conf); err != nil {
		t.Skipf("Could not build encrypted fixture: %v", err)
	}

	doc, err := Load(encrypted.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []float64{300, 301}, widths(doc))

	ctx, err := api.ReadContext(bytes.NewReader(doc.Bytes()), model.NewDefaultConfiguration())
	require.NoError(t, err)
	assert.Nil(t, ctx.Encrypt, "loaded document should no longer be encrypted")
}

func TestBytesReturnsCopy(t *testing.T) {
	doc := load(t, 1, 100)
	b := doc.Bytes()
	b[0] = 'X'
	assert.Equal(t, byte('%'), doc.Bytes()[0])
}

func TestMerge(t *testing.T) {
	a := load(t, 2, 100)
	b := load(t, 3, 200)

	merged, err := Merge([]*Document{a, b})
	require.NoError(t, err)

	assert.Equal(t, a.PageCount()+b.PageCount(), merged.PageCount())
	assert.Equal(t, []float64{100, 101, 200, 201, 202}, widths(merged))

	// Inputs are untouched.
	assert.Equal(t, []float64{100, 101}, widths(a))
	assert.Equal(t, []float64{200, 201, 202}, widths(b))
}

func TestMerge_PreservesSuppliedOrder(t *testing.T) {
	a := load(t, 1, 100)
	b := load(t, 1, 200)
	c := load(t, 2, 300)

	merged, err := Merge([]*Document{c, a, b})
	require.NoError(t, err)
	assert.Equal(t, []float64{300, 301, 100, 200}, widths(merged))
}

func TestMerge_InsufficientInputs(t *testing.T) {
	a := load(t, 1, 100)

	_, err := Merge(nil)
	assert.ErrorIs(t, err, errs.ErrInsufficientInputs)

	_, err = Merge([]*Document{a})
	assert.ErrorIs(t, err, errs.ErrInsufficientInputs)

	_, err = Merge([]*Document{a, {}})
	assert.ErrorIs(t, err, errs.ErrInsufficientInputs)
}

func TestSplit(t *testing.T) {
	doc := load(t, 5, 100)
	ranges, err := pagerange.Parse("1-2,4", doc.PageCount())
	require.NoError(t, err)

	parts, err := Split(doc, ranges)
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, []float64{100, 101}, widths(parts[0]))
	assert.Equal(t, []float64{103}, widths(parts[1]))
	assert.Equal(t, 3, parts[0].PageCount()+parts[1].PageCount())
}

func TestSplit_SuppliedOrderAndOverlap(t *testing.T) {
	doc := load(t, 5, 100)
	ranges, err := pagerange.Parse("5,1-3,2", doc.PageCount())
	require.NoError(t, err)

	parts, err := Split(doc, ranges)
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, []float64{104}, widths(parts[0]))
	assert.Equal(t, []float64{100, 101, 102}, widths(parts[1]))
	assert.Equal(t, []float64{101}, widths(parts[2]))
}

func TestSplit_OutputsAreIndependent(t *testing.T) {
	doc := load(t, 4, 100)
	parts, err := Split(doc, []pagerange.PageRange{{Start: 0, End: 1}, {Start: 0, End: 1}})
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, widths(parts[0]), widths(parts[1]))
	assert.NotSame(t, &parts[0].data[0], &parts[1].data[0], "outputs must not share backing storage")
	assert.NotSame(t, &parts[0].data[0], &doc.data[0])
}

func TestSplit_InvalidRanges(t *testing.T) {
	doc := load(t, 3, 100)

	_, err := Split(doc, []pagerange.PageRange{{Start: 0, End: 0}, {Start: 2, End: 3}})
	assert.ErrorIs(t, err, errs.ErrPageOutOfBounds)

	_, err = Split(doc, nil)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestDeletePages(t *testing.T) {
	doc := load(t, 3, 100)

	out, err := DeletePages(doc, []int{2})
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 102}, widths(out))
	assert.Equal(t, 3, doc.PageCount())
}

func TestDeletePages_DuplicatesCountOnce(t *testing.T) {
	doc := load(t, 5, 100)

	out, err := DeletePages(doc, []int{4, 2, 4})
	require.NoError(t, err)
	assert.Equal(t, 3, out.PageCount())
	assert.Equal(t, []float64{100, 102, 104}, widths(out))
}

func TestDeletePages_Errors(t *testing.T) {
	doc := load(t, 3, 100)

	tests := []struct {
		name    string
		pages   []int
		wantErr error
	}{
		{name: "zero", pages: []int{0}, wantErr: errs.ErrPageOutOfBounds},
		{name: "past end", pages: []int{1, 4}, wantErr: errs.ErrPageOutOfBounds},
		{name: "every page", pages: []int{1, 2, 3}, wantErr: errs.ErrInvalidInput},
		{name: "nothing", pages: nil, wantErr: errs.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := DeletePages(doc, tt.pages)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, out)
		})
	}
}

func TestRotate_IsAbsolute(t *testing.T) {
	doc, err := Load(pdftest.Build(
		pdftest.PageSpec{Width: 100, Height: 200, Rotate: 180},
		pdftest.PageSpec{Width: 101, Height: 200, Rotate: 90},
		pdftest.PageSpec{Width: 102, Height: 200},
	))
	require.NoError(t, err)

	first, err := Rotate(doc, 90)
	require.NoError(t, err)
	assert.Equal(t, []int{90, 90, 90}, rotations(first))

	// Two independent calls on the same input agree.
	second, err := Rotate(doc, 90)
	require.NoError(t, err)
	assert.Equal(t, []int{90, 90, 90}, rotations(second))

	// Applying to a result overwrites rather than accumulates.
	again, err := Rotate(first, 90)
	require.NoError(t, err)
	assert.Equal(t, []int{90, 90, 90}, rotations(again))

	assert.Equal(t, []int{180, 90, 0}, rotations(doc))
	assert.Equal(t, widths(doc), widths(first))
}

func TestRotate_NoNormalization(t *testing.T) {
	doc := load(t, 2, 100)

	for _, angle := range []int{0, 270, 450, -90} {
		t.Run(fmt.Sprint(angle), func(t *testing.T) {
			out, err := Rotate(doc, angle)
			require.NoError(t, err)
			assert.Equal(t, []int{angle, angle}, rotations(out))
		})
	}
}

// overlayCounts returns the number of XObjects in each page's resources
func overlayCounts(t *testing.T, doc *Document) []int {
	t.Helper()
	ctx, err := doc.context(newConfig())
	require.NoError(t, err)

	counts := make([]int, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		_, _, inherited, err := ctx.PageDict(pageNr, true)
		require.NoError(t, err)
		if inherited == nil || inherited.Resources == nil {
			continue
		}
		xobjects, err := ctx.DereferenceDict(inherited.Resources["XObject"])
		require.NoError(t, err)
		counts[pageNr-1] = len(xobjects)
	}
	return counts
}

func hasWatermarks(t *testing.T, doc *Document) bool {
	t.Helper()
	ok, err := api.HasWatermarks(bytes.NewReader(doc.Bytes()), newConfig())
	require.NoError(t, err)
	return ok
}

func TestWatermark(t *testing.T) {
	doc := load(t, 3, 300)
	before := doc.Bytes()
	require.False(t, hasWatermarks(t, doc))
	require.Equal(t, []int{0, 0, 0}, overlayCounts(t, doc))

	out, err := Watermark(doc, "CONFIDENTIAL", DefaultWatermarkOptions())
	require.NoError(t, err)
	assert.Equal(t, widths(doc), widths(out))
	assert.Equal(t, before, doc.Bytes(), "input must not change")

	assert.True(t, hasWatermarks(t, out))
	assert.Equal(t, []int{1, 1, 1}, overlayCounts(t, out), "one overlay per page")
}

func TestWatermark_AnyRotation(t *testing.T) {
	doc := load(t, 2, 300)

	for _, rotation := range []float64{270, -90, 450, -180, 180, 720} {
		t.Run(fmt.Sprint(rotation), func(t *testing.T) {
			opts := WatermarkOptions{FontSize: 20, Opacity: 0.5, Rotation: rotation, Color: "red"}
			out, err := Watermark(doc, "DRAFT", opts)
			require.NoError(t, err)
			assert.Equal(t, []int{1, 1}, overlayCounts(t, out))
		})
	}
}

func TestWatermarkDescription_FoldsRotation(t *testing.T) {
	describe := func(rotation float64) string {
		desc, err := WatermarkOptions{FontSize: 20, Opacity: 0.5, Rotation: rotation, Color: "red"}.description("DRAFT")
		require.NoError(t, err)
		return desc
	}

	assert.Equal(t, describe(-90), describe(270))
	assert.Equal(t, describe(45), describe(405))
	assert.Equal(t, describe(180), describe(-180))
	assert.Contains(t, describe(270), "rotation:-90.00")
	assert.Contains(t, describe(-180), "rotation:180.00")
}

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0}, {-45, -45}, {180, 180}, {-180, 180}, {270, -90},
		{-270, 90}, {360, 0}, {540, 180}, {-540, 180}, {725, 5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, normalizeRotation(tt.in), 1e-9, "normalizeRotation(%g)", tt.in)
	}
}

func TestWatermark_InvalidInput(t *testing.T) {
	doc := load(t, 1, 300)

	tests := []struct {
		name string
		text string
		opts WatermarkOptions
	}{
		{name: "empty text", text: "", opts: DefaultWatermarkOptions()},
		{name: "blank text", text: "   ", opts: DefaultWatermarkOptions()},
		{name: "opacity", text: "x", opts: WatermarkOptions{FontSize: 20, Opacity: 1.5, Color: "red"}},
		{name: "font size", text: "x", opts: WatermarkOptions{FontSize: -1, Opacity: 0.5, Color: "red"}},
		{name: "rotation", text: "x", opts: WatermarkOptions{FontSize: 20, Opacity: 0.5, Rotation: math.Inf(1), Color: "red"}},
		{name: "color", text: "x", opts: WatermarkOptions{FontSize: 20, Opacity: 0.5, Color: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Watermark(doc, tt.text, tt.opts)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}
}

func TestWatermarkAnchor(t *testing.T) {
	const size = 40
	text := "CONFIDENTIAL"
	halfWidth := font.TextWidth(text, watermarkFont, size) / 2
	halfHeight := size * capHeight / 2

	tests := []struct {
		rotation float64
		dx, dy   float64
	}{
		// unrotated: the box centre is half the text to the right of the baseline start
		{rotation: 0, dx: -2*size + halfWidth, dy: halfHeight},
		{rotation: 90, dx: -2*size - halfHeight, dy: halfWidth},
		{rotation: 180, dx: -2*size - halfWidth, dy: -halfHeight},
		{rotation: -90, dx: -2*size + halfHeight, dy: -halfWidth},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.rotation), func(t *testing.T) {
			dx, dy := WatermarkOptions{FontSize: size, Rotation: tt.rotation}.anchorOffset(text)
			assert.InDelta(t, tt.dx, dx, 1e-6)
			assert.InDelta(t, tt.dy, dy, 1e-6)
		})
	}
}

func TestWatermarkDescription(t *testing.T) {
	opts := WatermarkOptions{FontSize: 40, Opacity: 0.25, Rotation: 30, Color: "#ff0000"}
	desc, err := opts.description("TOP SECRET")
	require.NoError(t, err)

	dx, dy := opts.anchorOffset("TOP SECRET")
	assert.Contains(t, desc, "points:40")
	assert.Contains(t, desc, fmt.Sprintf("offset:%.2f %.2f", dx, dy))
	assert.Contains(t, desc, "position:c")
	assert.Contains(t, desc, "rotation:30.00")
	assert.Contains(t, desc, "opacity:0.25")
	assert.Contains(t, desc, "fillcolor:1.000 0.000 0.000")
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]float64
		wantErr bool
	}{
		{in: "#000000", want: [3]float64{0, 0, 0}},
		{in: "#FFFFFF", want: [3]float64{1, 1, 1}},
		{in: "0.5 0.25 1", want: [3]float64{0.5, 0.25, 1}},
		{in: "white", want: [3]float64{1, 1, 1}},
		{in: "Black", want: [3]float64{0, 0, 0}},
		{in: "#fff", wantErr: true},
		{in: "1 2 3", wantErr: true},
		{in: "", wantErr: true},
		{in: "notacolor", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want[:], got[:], 0.001)
		})
	}
}

func TestWatermarkOptionsWithDefaults(t *testing.T) {
	opts := WatermarkOptions{Rotation: 10}.WithDefaults()
	assert.Equal(t, 50, opts.FontSize)
	assert.Equal(t, 0.3, opts.Opacity)
	assert.Equal(t, 10.0, opts.Rotation)
	assert.Equal(t, "0.5 0.5 0.5", opts.Color)
}

func TestCompress_PreservesPages(t *testing.T) {
	doc := load(t, 4, 100)

	for _, tier := range []Tier{TierLow, TierMedium, TierHigh} {
		t.Run(string(tier), func(t *testing.T) {
			out, err := Compress(doc, tier)
			require.NoError(t, err)
			assert.Equal(t, widths(doc), widths(out))
			assert.Equal(t, rotations(doc), rotations(out))

			// The output is itself a loadable document.
			reloaded, err := Load(out.Bytes())
			require.NoError(t, err)
			assert.Equal(t, doc.PageCount(), reloaded.PageCount())
		})
	}
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("")
	require.NoError(t, err)
	assert.Equal(t, TierMedium, tier)

	tier, err = ParseTier(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, TierHigh, tier)

	_, err = ParseTier("extreme")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestConcurrentSplits(t *testing.T) {
	const n = 8

	docs := make([]*Document, n)
	for i := range docs {
		docs[i] = load(t, 4, float64(100*(i+1)))
	}

	results := make([][]*Document, n)
	errors := make([]error, n)
	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errors[i] = Split(docs[i], []pagerange.PageRange{{Start: 0, End: 1}, {Start: 3, End: 3}})
		}(i)
	}
	wg.Wait()

	for i := range docs {
		require.NoError(t, errors[i])
		base := float64(100 * (i + 1))
		require.Len(t, results[i], 2)
		assert.Equal(t, []float64{base, base + 1}, widths(results[i][0]), "document %d", i)
		assert.Equal(t, []float64{base + 3}, widths(results[i][1]), "document %d", i)
	}
}
