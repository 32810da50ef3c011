package imposition

import (
	"fmt"
	"math"
)

const (
	// A4 landscape in PDF points (1/72 inch)
	A4LandscapeWidth  = 842.0
	A4LandscapeHeight = 595.0

	// MiniBookName is the name of the built-in 8-up booklet layout
	MiniBookName = "minibook-a4"
)

// Rotation is a slot rotation in degrees, counter-clockwise.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// ParseRotation normalizes an angle in degrees to one of the four quarter
// turns. Negative angles and angles above 360 are accepted.
func ParseRotation(degrees int) (Rotation, error) {
	if degrees%90 != 0 {
		return 0, geometryError("parse_rotation", "rotation must be a multiple of 90 degrees, got %d", degrees)
	}
	r := degrees % 360
	if r < 0 {
		r += 360
	}
	return Rotation(r), nil
}

// Valid reports whether r is one of the four quarter turns
func (r Rotation) Valid() bool {
	return r == Rotate0 || r == Rotate90 || r == Rotate180 || r == Rotate270
}

// Degrees returns the rotation angle
func (r Rotation) Degrees() int {
	return int(r)
}

// SwapsAxes reports whether the rotation exchanges width and height
func (r Rotation) SwapsAxes() bool {
	return r == Rotate90 || r == Rotate270
}

func (r Rotation) String() string {
	return fmt.Sprintf("%d°", int(r))
}

// Rect is an axis-aligned rectangle in sheet coordinates (origin bottom-left).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MaxX returns the right edge
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the top edge
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Slot is one fixed placement on the output sheet.
type Slot struct {
	Index    int      `json:"index"`  // position in layout order
	Source   int      `json:"source"` // 0-based source page index
	Column   int      `json:"column"`
	Row      int      `json:"row"` // row 0 is the bottom row
	Target   Rect     `json:"target"`
	Rotation Rotation `json:"rotation"`
}

// GridSlot describes a slot by its grid cell. It is the input format for
// NewGridLayout.
type GridSlot struct {
	Source   int
	Column   int
	Row      int
	Rotation Rotation
}

// SignatureLayout is an immutable table of slots on a sheet divided into a
// regular grid. Every grid cell holds exactly one slot and every source index
// 0..n-1 appears exactly once.
type SignatureLayout struct {
	name        string
	sheetWidth  float64
	sheetHeight float64
	columns     int
	rows        int
	slots       []Slot
}

// NewGridLayout builds and validates a layout. Slots keep the order of cells.
func NewGridLayout(name string, sheetWidth, sheetHeight float64, columns, rows int, cells []GridSlot) (*SignatureLayout, error) {
	const op = "new_layout"

	if name == "" {
		return nil, geometryError(op, "layout name cannot be empty")
	}
	if !positive(sheetWidth) || !positive(sheetHeight) {
		return nil, geometryError(op, "sheet size must be positive, got %gx%g", sheetWidth, sheetHeight)
	}
	if columns < 1 || rows < 1 {
		return nil, geometryError(op, "grid must have at least one column and row, got %dx%d", columns, rows)
	}
	if len(cells) != columns*rows {
		return nil, geometryError(op, "grid %dx%d needs %d slots, got %d", columns, rows, columns*rows, len(cells))
	}

	n := len(cells)
	cellWidth := sheetWidth / float64(columns)
	cellHeight := sheetHeight / float64(rows)

	usedCells := make(map[[2]int]int, n)
	usedSources := make(map[int]int, n)
	slots := make([]Slot, 0, n)

	for i, c := range cells {
		if c.Column < 0 || c.Column >= columns || c.Row < 0 || c.Row >= rows {
			return nil, geometryError(op, "slot %d: cell (%d,%d) outside %dx%d grid", i, c.Column, c.Row, columns, rows)
		}
		if c.Source < 0 || c.Source >= n {
			return nil, geometryError(op, "slot %d: source index %d outside 0..%d", i, c.Source, n-1)
		}
		if !c.Rotation.Valid() {
			return nil, geometryError(op, "slot %d: unsupported rotation %d", i, int(c.Rotation))
		}
		cell := [2]int{c.Column, c.Row}
		if prev, dup := usedCells[cell]; dup {
			return nil, geometryError(op, "slots %d and %d share cell (%d,%d)", prev, i, c.Column, c.Row)
		}
		if prev, dup := usedSources[c.Source]; dup {
			return nil, geometryError(op, "slots %d and %d share source index %d", prev, i, c.Source)
		}
		usedCells[cell] = i
		usedSources[c.Source] = i

		slots = append(slots, Slot{
			Index:  i,
			Source: c.Source,
			Column: c.Column,
			Row:    c.Row,
			Target: Rect{
				X:      float64(c.Column) * cellWidth,
				Y:      float64(c.Row) * cellHeight,
				Width:  cellWidth,
				Height: cellHeight,
			},
			Rotation: c.Rotation,
		})
	}

	return &SignatureLayout{
		name:        name,
		sheetWidth:  sheetWidth,
		sheetHeight: sheetHeight,
		columns:     columns,
		rows:        rows,
		slots:       slots,
	}, nil
}

func mustGridLayout(name string, sheetWidth, sheetHeight float64, columns, rows int, cells []GridSlot) *SignatureLayout {
	l, err := NewGridLayout(name, sheetWidth, sheetHeight, columns, rows, cells)
	if err != nil {
		panic(err)
	}
	return l
}

// The fold-and-cut pattern of the A4 minibook. Top row reads 8,1,2,7 and the
// bottom row 6,3,4,5 in 1-based page numbers.
var miniBookA4 = mustGridLayout(MiniBookName, A4LandscapeWidth, A4LandscapeHeight, 4, 2, []GridSlot{
	{Source: 7, Column: 0, Row: 1, Rotation: Rotate180},
	{Source: 0, Column: 1, Row: 1, Rotation: Rotate0},
	{Source: 1, Column: 2, Row: 1, Rotation: Rotate0},
	{Source: 6, Column: 3, Row: 1, Rotation: Rotate180},

	{Source: 5, Column: 0, Row: 0, Rotation: Rotate180},
	{Source: 2, Column: 1, Row: 0, Rotation: Rotate0},
	{Source: 3, Column: 2, Row: 0, Rotation: Rotate0},
	{Source: 4, Column: 3, Row: 0, Rotation: Rotate0},
})

// MiniBookA4 returns the built-in 8-up booklet layout on an A4 landscape
// sheet. The returned layout is shared and immutable.
func MiniBookA4() *SignatureLayout {
	return miniBookA4
}

// Name returns the layout name
func (l *SignatureLayout) Name() string { return l.name }

// SheetWidth returns the output sheet width
func (l *SignatureLayout) SheetWidth() float64 { return l.sheetWidth }

// SheetHeight returns the output sheet height
func (l *SignatureLayout) SheetHeight() float64 { return l.sheetHeight }

// Columns returns the number of grid columns
func (l *SignatureLayout) Columns() int { return l.columns }

// Rows returns the number of grid rows
func (l *SignatureLayout) Rows() int { return l.rows }

// PageCount returns the exact number of source pages the layout requires
func (l *SignatureLayout) PageCount() int { return len(l.slots) }

// Slots returns a copy of the slot table in layout order
func (l *SignatureLayout) Slots() []Slot {
	out := make([]Slot, len(l.slots))
	copy(out, l.slots)
	return out
}

// Slot returns the slot at position i
func (l *SignatureLayout) Slot(i int) (Slot, bool) {
	if i < 0 || i >= len(l.slots) {
		return Slot{}, false
	}
	return l.slots[i], true
}

// SlotForSource returns the slot holding the given 0-based source page
func (l *SignatureLayout) SlotForSource(source int) (Slot, bool) {
	for _, s := range l.slots {
		if s.Source == source {
			return s, true
		}
	}
	return Slot{}, false
}

// SlotAt returns the slot in the given grid cell
func (l *SignatureLayout) SlotAt(column, row int) (Slot, bool) {
	for _, s := range l.slots {
		if s.Column == column && s.Row == row {
			return s, true
		}
	}
	return Slot{}, false
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
