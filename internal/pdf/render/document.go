// Package render implements the page-rendering collaborator of the imposition
// engine on top of pdfcpu.
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/a3tai/mcp-pdf-minibook/internal/imposition"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Error describes a failure inside the pdfcpu collaborator
type Error struct {
	Op   string
	Page int // 1-based, 0 when not tied to a page
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("pdfcpu %s page %d: %v", e.Op, e.Page, e.Err)
	}
	return fmt.Sprintf("pdfcpu %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Document is a source PDF opened with pdfcpu. Sheets add their objects to
// the document's context: one form XObject per drawn page and one sheet
// content stream, all reused by later impositions of the same document.
type Document struct {
	ctx *model.Context

	forms        map[int]types.IndirectRef // page number -> form XObject
	sheetContent *types.IndirectRef
}

var _ imposition.Document = (*Document)(nil)

// Open reads a PDF from r in relaxed validation mode.
func Open(r io.ReadSeeker) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(r, conf)
	if err != nil {
		return nil, &Error{Op: "open", Err: fmt.Errorf("failed to read PDF context: %w", err)}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &Error{Op: "open", Err: fmt.Errorf("failed to ensure page count: %w", err)}
	}

	return &Document{ctx: ctx}, nil
}

// OpenBytes reads a PDF held in memory
func OpenBytes(data []byte) (*Document, error) {
	return Open(bytes.NewReader(data))
}

// OpenFile reads a PDF from disk
func OpenFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &Error{Op: "open_file", Err: fmt.Errorf("failed to open file: %w", err)}
	}
	defer file.Close()

	return Open(file)
}

// PageCount returns the number of pages in the document
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// PageSize returns the displayed size of the page at the 0-based index: the
// crop box (or media box) with the page's /Rotate applied.
func (d *Document) PageSize(index int) (float64, float64, error) {
	g, err := d.geometry(index + 1)
	if err != nil {
		return 0, 0, err
	}
	w, h := g.displayedSize()
	return w, h, nil
}

// pageGeometry is the visible area of a source page
type pageGeometry struct {
	box      *types.Rectangle
	rotation imposition.Rotation
	dict     types.Dict
	inh      *model.InheritedPageAttrs
}

func (g pageGeometry) displayedSize() (float64, float64) {
	w, h := g.box.Width(), g.box.Height()
	if g.rotation.SwapsAxes() {
		return h, w
	}
	return w, h
}

func (d *Document) geometry(pageNr int) (pageGeometry, error) {
	if pageNr < 1 || pageNr > d.ctx.PageCount {
		return pageGeometry{}, &Error{Op: "page_geometry", Page: pageNr, Err: fmt.Errorf("page out of range 1-%d", d.ctx.PageCount)}
	}

	pageDict, _, inh, err := d.ctx.PageDict(pageNr, true)
	if err != nil {
		return pageGeometry{}, &Error{Op: "page_geometry", Page: pageNr, Err: err}
	}
	if pageDict == nil || inh == nil {
		return pageGeometry{}, &Error{Op: "page_geometry", Page: pageNr, Err: fmt.Errorf("page dictionary not found")}
	}

	box := inh.CropBox
	if box == nil {
		box = inh.MediaBox
	}
	if box == nil {
		return pageGeometry{}, &Error{Op: "page_geometry", Page: pageNr, Err: fmt.Errorf("page has no media box")}
	}

	rot, err := imposition.ParseRotation(inh.Rotate)
	if err != nil {
		return pageGeometry{}, &Error{Op: "page_geometry", Page: pageNr, Err: err}
	}

	return pageGeometry{box: box, rotation: rot, dict: pageDict, inh: inh}, nil
}
