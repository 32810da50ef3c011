package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/a3tai/mcp-pdf-minibook/internal/imposition"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Renderer creates pdfcpu-backed sheets.
type Renderer struct{}

var _ imposition.Renderer = Renderer{}

// NewRenderer returns a renderer
func NewRenderer() Renderer {
	return Renderer{}
}

// NewSheet creates an empty sheet of the given size in points.
func (Renderer) NewSheet(width, height float64) (imposition.Sheet, error) {
	if width <= 0 || height <= 0 {
		return nil, &Error{Op: "new_sheet", Err: fmt.Errorf("sheet size must be positive, got %gx%g", width, height)}
	}
	return &Sheet{
		width:  width,
		height: height,
		forms:  make(types.Dict),
	}, nil
}

// Sheet collects source pages as form XObjects inside the source document's
// context. All pages drawn onto one sheet must come from the same Document.
type Sheet struct {
	width, height float64

	doc     *Document
	forms   types.Dict
	content bytes.Buffer
	drawn   int
}

// DrawPage draws a source page through t, clipped to region.
func (s *Sheet) DrawPage(region imposition.Rect, doc imposition.Document, source int, t imposition.AffineTransform) error {
	d, ok := doc.(*Document)
	if !ok || d == nil {
		return &Error{Op: "draw_page", Page: source + 1, Err: fmt.Errorf("document %T was not opened by this renderer", doc)}
	}
	if s.doc == nil {
		s.doc = d
	} else if s.doc != d {
		return &Error{Op: "draw_page", Page: source + 1, Err: fmt.Errorf("sheet already bound to another document")}
	}

	ref, err := s.doc.formXObject(source + 1)
	if err != nil {
		return err
	}

	name := "Pg" + strconv.Itoa(source+1)
	s.forms[name] = *ref

	fmt.Fprintf(&s.content, "q %s %s %s %s re W n %s %s %s %s %s %s cm /%s Do Q\n",
		num(region.X), num(region.Y), num(region.Width), num(region.Height),
		num(t[0]), num(t[1]), num(t[2]), num(t[3]), num(t[4]), num(t[5]),
		name)
	s.drawn++

	return nil
}

// Drawn returns the number of pages drawn so far
func (s *Sheet) Drawn() int {
	return s.drawn
}

// Serialize writes the sheet as a single-page PDF. The first page of the
// source document is temporarily rewritten into the sheet page and extracted
// into a fresh context; the source document is restored afterwards.
func (s *Sheet) Serialize(w io.Writer) error {
	if s.doc == nil {
		return &Error{Op: "serialize", Err: fmt.Errorf("sheet has no pages")}
	}
	ctx := s.doc.ctx

	pageDict, _, _, err := ctx.PageDict(1, false)
	if err != nil {
		return &Error{Op: "serialize", Page: 1, Err: err}
	}
	if pageDict == nil {
		return &Error{Op: "serialize", Page: 1, Err: fmt.Errorf("page dictionary not found")}
	}

	sd, err := ctx.NewStreamDictForBuf(s.content.Bytes())
	if err != nil {
		return &Error{Op: "serialize", Err: fmt.Errorf("failed to create content stream: %w", err)}
	}
	if err := sd.Encode(); err != nil {
		return &Error{Op: "serialize", Err: fmt.Errorf("failed to encode content stream: %w", err)}
	}
	contentRef, err := s.doc.storeSheetContent(*sd)
	if err != nil {
		return &Error{Op: "serialize", Err: err}
	}

	box := types.RectForWidthAndHeight(0, 0, s.width, s.height)
	restore := patchDict(pageDict, map[string]types.Object{
		"MediaBox":  box.Array(),
		"CropBox":   box.Array(),
		"Rotate":    types.Integer(0),
		"Resources": types.Dict{"XObject": s.forms},
		"Contents":  *contentRef,
		"Annots":    nil,
		"BleedBox":  nil,
		"TrimBox":   nil,
		"ArtBox":    nil,
	})
	defer restore()

	out, err := pdfcpu.ExtractPages(ctx, []int{1}, false)
	if err != nil {
		return &Error{Op: "serialize", Err: fmt.Errorf("failed to extract sheet page: %w", err)}
	}

	if err := api.WriteContext(out, w); err != nil {
		return &Error{Op: "serialize", Err: fmt.Errorf("failed to write PDF: %w", err)}
	}
	return nil
}

// formXObject wraps a source page into a form XObject whose coordinate
// system has the displayed page's lower-left corner at the origin.
func (d *Document) formXObject(pageNr int) (*types.IndirectRef, error) {
	if ref, ok := d.forms[pageNr]; ok {
		return &ref, nil
	}

	g, err := d.geometry(pageNr)
	if err != nil {
		return nil, err
	}

	var content []byte
	if _, found := g.dict.Find("Contents"); found {
		content, err = d.ctx.PageContent(g.dict, pageNr)
		if err != nil {
			return nil, &Error{Op: "form_xobject", Page: pageNr, Err: fmt.Errorf("failed to read page content: %w", err)}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("q ")
	if g.rotation != imposition.Rotate0 {
		buf.Write(model.ContentBytesForPageRotation(g.rotation.Degrees(), g.box.Width(), g.box.Height()))
	}
	fmt.Fprintf(&buf, "1 0 0 1 %s %s cm ", num(-g.box.LL.X), num(-g.box.LL.Y))
	buf.Write(content)
	buf.WriteString(" Q")

	sd, err := d.ctx.NewStreamDictForBuf(buf.Bytes())
	if err != nil {
		return nil, &Error{Op: "form_xobject", Page: pageNr, Err: err}
	}

	w, h := g.displayedSize()
	sd.Dict["Type"] = types.Name("XObject")
	sd.Dict["Subtype"] = types.Name("Form")
	sd.Dict["BBox"] = types.RectForWidthAndHeight(0, 0, w, h).Array()
	if g.inh.Resources != nil {
		sd.Dict["Resources"] = g.inh.Resources
	} else {
		sd.Dict["Resources"] = types.Dict{}
	}

	if err := sd.Encode(); err != nil {
		return nil, &Error{Op: "form_xobject", Page: pageNr, Err: fmt.Errorf("failed to encode form: %w", err)}
	}

	ref, err := d.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return nil, &Error{Op: "form_xobject", Page: pageNr, Err: err}
	}
	if d.forms == nil {
		d.forms = make(map[int]types.IndirectRef)
	}
	d.forms[pageNr] = *ref
	return ref, nil
}

// storeSheetContent puts sd into the document's single sheet content stream
// object, replacing the stream written by an earlier sheet.
func (d *Document) storeSheetContent(sd types.StreamDict) (*types.IndirectRef, error) {
	if d.sheetContent != nil {
		if entry, ok := d.ctx.Table[d.sheetContent.ObjectNumber.Value()]; ok && entry != nil {
			entry.Object = sd
			return d.sheetContent, nil
		}
	}

	ref, err := d.ctx.IndRefForNewObject(sd)
	if err != nil {
		return nil, err
	}
	d.sheetContent = ref
	return ref, nil
}

// patchDict sets (or, for nil values, deletes) the given keys and returns a
// function that puts the previous entries back.
func patchDict(d types.Dict, values map[string]types.Object) func() {
	type saved struct {
		value   types.Object
		present bool
	}
	prev := make(map[string]saved, len(values))

	for k, v := range values {
		old, ok := d[k]
		prev[k] = saved{value: old, present: ok}
		if v == nil {
			delete(d, k)
			continue
		}
		d[k] = v
	}

	return func() {
		for k, p := range prev {
			if p.present {
				d[k] = p.value
			} else {
				delete(d, k)
			}
		}
	}
}

func num(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', 5, 64)
}
