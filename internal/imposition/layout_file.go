package imposition

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// layoutFile is the TOML representation of a grid layout.
type layoutFile struct {
	Name        string           `toml:"name"`
	SheetWidth  float64          `toml:"sheet_width"`
	SheetHeight float64          `toml:"sheet_height"`
	Columns     int              `toml:"columns"`
	Rows        int              `toml:"rows"`
	Slots       []layoutFileSlot `toml:"slot"`
}

type layoutFileSlot struct {
	Source   int `toml:"source"`
	Column   int `toml:"column"`
	Row      int `toml:"row"`
	Rotation int `toml:"rotation"`
}

// ParseLayout decodes a TOML layout description. Unknown keys are rejected so
// that typos do not silently produce a different fold pattern.
func ParseLayout(data []byte) (*SignatureLayout, error) {
	var f layoutFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, geometryError("parse_layout", "invalid TOML: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, geometryError("parse_layout", "unknown keys: %s", strings.Join(keys, ", "))
	}

	cells := make([]GridSlot, len(f.Slots))
	for i, s := range f.Slots {
		rot, err := ParseRotation(s.Rotation)
		if err != nil {
			return nil, inSlot(err, i, s.Source)
		}
		cells[i] = GridSlot{
			Source:   s.Source,
			Column:   s.Column,
			Row:      s.Row,
			Rotation: rot,
		}
	}

	return NewGridLayout(f.Name, f.SheetWidth, f.SheetHeight, f.Columns, f.Rows, cells)
}

// LoadLayout reads a layout file. An empty path returns the built-in
// minibook.
func LoadLayout(path string) (*SignatureLayout, error) {
	if path == "" {
		return MiniBookA4(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	l, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("layout file %s: %w", path, err)
	}
	return l, nil
}

// EncodeLayout writes l in the format accepted by ParseLayout.
func EncodeLayout(w io.Writer, l *SignatureLayout) error {
	f := layoutFile{
		Name:        l.name,
		SheetWidth:  l.sheetWidth,
		SheetHeight: l.sheetHeight,
		Columns:     l.columns,
		Rows:        l.rows,
		Slots:       make([]layoutFileSlot, len(l.slots)),
	}
	for i, s := range l.slots {
		f.Slots[i] = layoutFileSlot{
			Source:   s.Source,
			Column:   s.Column,
			Row:      s.Row,
			Rotation: s.Rotation.Degrees(),
		}
	}
	return toml.NewEncoder(w).Encode(f)
}

// Digest identifies the full layout: name, sheet size and every slot. Two
// layouts that share a name but differ in any slot have different digests.
func (l *SignatureLayout) Digest() string {
	h := sha256.New()
	// writes to a hash never fail
	_ = EncodeLayout(h, l)
	return hex.EncodeToString(h.Sum(nil))
}
