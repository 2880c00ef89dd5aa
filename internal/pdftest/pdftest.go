// Package pdftest builds small, structurally valid PDF files in memory for
// tests. Each page gets its own MediaBox so page identity survives a round
// trip through any transform.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// PageSpec describes one generated page
type PageSpec struct {
	Width  float64
	Height float64
	Rotate int
}

// Sized returns n pages whose widths are base, base+1, ... and whose height is fixed
func Sized(n int, base float64) []PageSpec {
	specs := make([]PageSpec, n)
	for i := range specs {
		specs[i] = PageSpec{Width: base + float64(i), Height: 400}
	}
	return specs
}

// Build renders the pages as a PDF 1.4 file with a classic xref table
func Build(pages ...PageSpec) []byte {
	var buf bytes.Buffer
	var offsets []int

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	// Objects 1 and 2 are the catalog and page tree; each page then takes
	// two objects, the page dict followed by its content stream.
	kids := make([]byte, 0, len(pages)*8)
	for i := range pages {
		kids = fmt.Appendf(kids, "%d 0 R ", 3+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", bytes.TrimSpace(kids), len(pages)))

	for i, p := range pages {
		page := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.0f %.0f] /Resources << >> /Contents %d 0 R",
			p.Width, p.Height, 4+2*i)
		if p.Rotate != 0 {
			page += fmt.Sprintf(" /Rotate %d", p.Rotate)
		}
		obj(page + " >>")

		content := fmt.Sprintf("0.5 g 10 10 %d 20 re f", 10+i)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

// WriteFile writes a generated PDF into the test's temp dir and returns its path
func WriteFile(t testing.TB, name string, pages ...PageSpec) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		t.Fatalf("Failed to write test PDF: %v", err)
	}
	return path
}
