package imposition

import (
	"fmt"
	"io"
)

// Document is the read side of the page-rendering collaborator.
type Document interface {
	// PageCount returns the number of pages in the document
	PageCount() int
	// PageSize returns the intrinsic size of the page at the 0-based index
	PageSize(index int) (width, height float64, err error)
}

// Sheet is an output sheet under construction.
type Sheet interface {
	// DrawPage renders the source page into the sheet using t. Area outside
	// the image of the page is left untouched.
	DrawPage(region Rect, doc Document, source int, t AffineTransform) error
	// Serialize writes the finished sheet as a document
	Serialize(w io.Writer) error
}

// Renderer creates output sheets.
type Renderer interface {
	NewSheet(width, height float64) (Sheet, error)
}

// Imposition is a fully drawn sheet together with the placements used.
type Imposition struct {
	Layout     *SignatureLayout
	Sheet      Sheet
	Placements []Placement
}

// Imposer applies a signature layout to source documents.
type Imposer struct {
	layout   *SignatureLayout
	renderer Renderer
}

// NewImposer creates an imposer for the given layout. A nil layout selects
// the built-in minibook.
func NewImposer(layout *SignatureLayout, renderer Renderer) (*Imposer, error) {
	if renderer == nil {
		return nil, fmt.Errorf("renderer cannot be nil")
	}
	if layout == nil {
		layout = MiniBookA4()
	}
	return &Imposer{layout: layout, renderer: renderer}, nil
}

// Layout returns the layout used by the imposer
func (im *Imposer) Layout() *SignatureLayout {
	return im.layout
}

// Plan validates the document and computes the placement of every slot
// without drawing anything.
func (im *Imposer) Plan(doc Document) ([]Placement, error) {
	if doc == nil {
		return nil, geometryError("plan", "document cannot be nil")
	}

	want := im.layout.PageCount()
	if got := doc.PageCount(); got != want {
		return nil, &Error{
			Kind:   ErrPageCountMismatch,
			Op:     "plan",
			Slot:   -1,
			Source: -1,
			Detail: fmt.Sprintf("layout %s needs exactly %d pages, document has %d", im.layout.Name(), want, got),
		}
	}

	placements := make([]Placement, 0, want)
	for _, slot := range im.layout.slots {
		if slot.Source < 0 || slot.Source >= doc.PageCount() {
			return nil, &Error{
				Kind:   ErrInvalidGeometry,
				Op:     "plan",
				Slot:   slot.Index,
				Source: slot.Source,
				Detail: "source page missing from document",
			}
		}

		w, h, err := doc.PageSize(slot.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to read size of page %d: %w", slot.Source+1, err)
		}

		p, err := Compose(w, h, slot.Target, slot.Rotation)
		if err != nil {
			return nil, inSlot(err, slot.Index, slot.Source)
		}
		p.Slot = slot.Index
		p.Source = slot.Source
		placements = append(placements, p)
	}

	return placements, nil
}

// Impose draws every source page of doc into a new sheet. On error no sheet
// is returned.
func (im *Imposer) Impose(doc Document) (*Imposition, error) {
	placements, err := im.Plan(doc)
	if err != nil {
		return nil, err
	}

	sheet, err := im.renderer.NewSheet(im.layout.SheetWidth(), im.layout.SheetHeight())
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	for _, p := range placements {
		if err := sheet.DrawPage(p.Target, doc, p.Source, p.Transform); err != nil {
			return nil, fmt.Errorf("failed to draw page %d into slot %d: %w", p.Source+1, p.Slot, err)
		}
	}

	return &Imposition{
		Layout:     im.layout,
		Sheet:      sheet,
		Placements: placements,
	}, nil
}

// ImposeTo imposes doc and serializes the sheet to w.
func (im *Imposer) ImposeTo(w io.Writer, doc Document) (*Imposition, error) {
	result, err := im.Impose(doc)
	if err != nil {
		return nil, err
	}
	if err := result.Sheet.Serialize(w); err != nil {
		return nil, fmt.Errorf("failed to serialize sheet: %w", err)
	}
	return result, nil
}
