package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"iter"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/Epistemic-Technology/pdf-tools/internal/pagerange"
)

// builder collects pages taken from a single source document and
// materializes them into a new, independently backed Document. Pages must
// be added in ascending source order without repeats, which is the only
// shape split and delete produce.
type builder struct {
	src   *Document
	picks []int
}

func newBuilder(src *Document) *builder {
	return &builder{src: src}
}

// Add takes ownership of p for the document under construction
func (b *builder) Add(p Page) error {
	if _, ok := b.src.Page(p.Index); !ok {
		return fmt.Errorf("page index %d is not in the source document", p.Index)
	}
	if n := len(b.picks); n > 0 && p.Index <= b.picks[n-1] {
		return fmt.Errorf("page index %d added out of order", p.Index)
	}
	b.picks = append(b.picks, p.Index)
	return nil
}

// AddAll adds every page yielded by seq
func (b *builder) AddAll(seq iter.Seq2[int, Page]) error {
	for _, p := range seq {
		if err := b.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// Build writes the selected pages to a new Document
func (b *builder) Build() (*Document, error) {
	if len(b.picks) == 0 {
		return nil, errors.New("no pages selected")
	}

	numbers := make([]int, len(b.picks))
	for i, idx := range b.picks {
		numbers[i] = idx + 1
	}

	var buf bytes.Buffer
	if err := api.Trim(b.src.reader(), &buf, pagerange.Selection(numbers), newConfig()); err != nil {
		return nil, fmt.Errorf("failed to copy pages: %w", err)
	}

	doc, err := Load(buf.Bytes())
	if err != nil {
		return nil, err
	}
	if doc.PageCount() != len(b.picks) {
		return nil, fmt.Errorf("copied %d pages, expected %d", doc.PageCount(), len(b.picks))
	}
	return doc, nil
}

// rangePages yields the pages of src within r, in order
func rangePages(src *Document, r pagerange.PageRange) iter.Seq2[int, Page] {
	return func(yield func(int, Page) bool) {
		for i := r.Start; i <= r.End; i++ {
			p, ok := src.Page(i)
			if !ok {
				return
			}
			if !yield(i, p) {
				return
			}
		}
	}
}

// keptPages yields the pages of src whose 1-based number is not in drop
func keptPages(src *Document, drop map[int]bool) iter.Seq2[int, Page] {
	return func(yield func(int, Page) bool) {
		for i, p := range src.Pages() {
			if drop[p.Number()] {
				continue
			}
			if !yield(i, p) {
				return
			}
		}
	}
}
