package imposition

import (
	"math"

	"seehuhn.de/go/geom/matrix"
)

// AffineTransform maps source page space into sheet space. The six
// coefficients follow the PDF convention: x' = a·x + c·y + e, y' = b·x + d·y + f.
type AffineTransform = matrix.Matrix

// Placement is the result of composing a transform for one slot.
type Placement struct {
	Slot   int `json:"slot"`
	Source int `json:"source"`

	SourceWidth  float64  `json:"source_width"`
	SourceHeight float64  `json:"source_height"`
	Target       Rect     `json:"target"`
	Rotation     Rotation `json:"rotation"`

	Scale          float64 `json:"scale"`
	BoundingWidth  float64 `json:"bounding_width"`  // width of the rotated, scaled page
	BoundingHeight float64 `json:"bounding_height"` // height of the rotated, scaled page
	OffsetX        float64 `json:"offset_x"`        // centering offset inside the slot
	OffsetY        float64 `json:"offset_y"`

	Transform AffineTransform `json:"transform"`
}

// Compose computes the transform that fits a source page of the given size
// into target, uniformly scaled, rotated about the origin and centered.
//
// The page is scaled first and rotated second; the bounding box of the four
// transformed corners then determines the centering offsets, and the final
// translation moves the bounding box's lower-left corner to
// (target.X+offsetX, target.Y+offsetY).
//
// For 0° and 180° the scale is min(tw/sw, th/sh). For 90° and 270° it is
// min(tw/sh, th/sw), fitted against the rotated extents. This departs from
// applying min(tw/sw, th/sh) to every rotation, which would let a quarter-turned
// page overflow its slot; the rotated page is then a tight fit on one axis.
func Compose(sourceWidth, sourceHeight float64, target Rect, rotation Rotation) (Placement, error) {
	const op = "compose"

	if !positive(sourceWidth) || !positive(sourceHeight) {
		return Placement{}, geometryError(op, "source size must be positive, got %gx%g", sourceWidth, sourceHeight)
	}
	if !positive(target.Width) || !positive(target.Height) {
		return Placement{}, geometryError(op, "target size must be positive, got %gx%g", target.Width, target.Height)
	}
	if math.IsNaN(target.X) || math.IsNaN(target.Y) || math.IsInf(target.X, 0) || math.IsInf(target.Y, 0) {
		return Placement{}, geometryError(op, "target origin must be finite, got (%g,%g)", target.X, target.Y)
	}
	if !rotation.Valid() {
		return Placement{}, geometryError(op, "unsupported rotation %d", int(rotation))
	}

	fitW, fitH := sourceWidth, sourceHeight
	if rotation.SwapsAxes() {
		fitW, fitH = sourceHeight, sourceWidth
	}
	scale := math.Min(target.Width/fitW, target.Height/fitH)
	sr := matrix.Scale(scale, scale).Mul(quarterTurn(rotation))

	minX, minY, maxX, maxY := bounds(sr, sourceWidth, sourceHeight)
	bw := maxX - minX
	bh := maxY - minY

	offsetX := (target.Width - bw) / 2
	offsetY := (target.Height - bh) / 2

	final := sr.Mul(matrix.Translate(target.X+offsetX-minX, target.Y+offsetY-minY))

	return Placement{
		SourceWidth:    sourceWidth,
		SourceHeight:   sourceHeight,
		Target:         target,
		Rotation:       rotation,
		Scale:          scale,
		BoundingWidth:  bw,
		BoundingHeight: bh,
		OffsetX:        offsetX,
		OffsetY:        offsetY,
		Transform:      final,
	}, nil
}

// ContentRect returns the image of the source page rectangle in sheet space.
func (p Placement) ContentRect() Rect {
	minX, minY, maxX, maxY := bounds(p.Transform, p.SourceWidth, p.SourceHeight)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Apply maps a point through an affine transform.
func Apply(m AffineTransform, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// quarterTurn returns an exact counter-clockwise rotation about the origin.
func quarterTurn(r Rotation) AffineTransform {
	switch r {
	case Rotate90:
		return AffineTransform{0, 1, -1, 0, 0, 0}
	case Rotate180:
		return AffineTransform{-1, 0, 0, -1, 0, 0}
	case Rotate270:
		return AffineTransform{0, -1, 1, 0, 0, 0}
	default:
		return matrix.Identity
	}
}

// bounds returns the bounding box of the rectangle [0,w]×[0,h] under m.
func bounds(m AffineTransform, w, h float64) (minX, minY, maxX, maxY float64) {
	corners := [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x, y := Apply(m, c[0], c[1])
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	return minX, minY, maxX, maxY
}
