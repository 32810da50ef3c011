// Package pdftest builds small, valid PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Page describes one page of a generated document.
type Page struct {
	Width, Height float64
	Rotate        int
	// CropBox is llx, lly, urx, ury. Nil means no crop box.
	CropBox *[4]float64
	// Content is the raw content stream. Empty pages omit /Contents.
	Content string
}

// A4 returns n portrait A4 pages, each labelled with its 1-based number.
func A4(n int) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{
			Width:   595,
			Height:  842,
			Content: fmt.Sprintf("BT /F1 48 Tf 72 720 Td (Page %d) Tj ET\n0 0 595 842 re S", i+1),
		}
	}
	return pages
}

// Build serializes pages into a PDF with a correct cross-reference table.
func Build(title string, pages []Page) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	const firstPage = 4
	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", firstPage+2*i)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, p := range pages {
		page := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << /Font << /F1 3 0 R >> >>",
			p.Width, p.Height)
		if p.CropBox != nil {
			page += fmt.Sprintf(" /CropBox [%g %g %g %g]", p.CropBox[0], p.CropBox[1], p.CropBox[2], p.CropBox[3])
		}
		if p.Rotate != 0 {
			page += fmt.Sprintf(" /Rotate %d", p.Rotate)
		}
		if p.Content != "" {
			page += fmt.Sprintf(" /Contents %d 0 R", firstPage+2*i+1)
		}
		obj(page + " >>")
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(p.Content), p.Content))
	}

	obj(fmt.Sprintf("<< /Title (%s) /Producer (pdftest) >>", title))
	info := len(offsets)

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, info, xref)

	return buf.Bytes()
}

// MiniBookSource returns an 8-page A4 document.
func MiniBookSource() []byte {
	return Build("Minibook Source", A4(8))
}

// WriteFile writes data into dir and returns the full path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
