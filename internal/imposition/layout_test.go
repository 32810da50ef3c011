package imposition

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiniBookA4_Table(t *testing.T) {
	l := MiniBookA4()

	assert.Equal(t, MiniBookName, l.Name())
	assert.Equal(t, 842.0, l.SheetWidth())
	assert.Equal(t, 595.0, l.SheetHeight())
	assert.Equal(t, 4, l.Columns())
	assert.Equal(t, 2, l.Rows())
	assert.Equal(t, 8, l.PageCount())

	const w, h = 842.0 / 4, 595.0 / 2
	want := []Slot{
		{Index: 0, Source: 7, Column: 0, Row: 1, Target: Rect{X: 0, Y: h, Width: w, Height: h}, Rotation: Rotate180},
		{Index: 1, Source: 0, Column: 1, Row: 1, Target: Rect{X: w, Y: h, Width: w, Height: h}, Rotation: Rotate0},
		{Index: 2, Source: 1, Column: 2, Row: 1, Target: Rect{X: 2 * w, Y: h, Width: w, Height: h}, Rotation: Rotate0},
		{Index: 3, Source: 6, Column: 3, Row: 1, Target: Rect{X: 3 * w, Y: h, Width: w, Height: h}, Rotation: Rotate180},
		{Index: 4, Source: 5, Column: 0, Row: 0, Target: Rect{X: 0, Y: 0, Width: w, Height: h}, Rotation: Rotate180},
		{Index: 5, Source: 2, Column: 1, Row: 0, Target: Rect{X: w, Y: 0, Width: w, Height: h}, Rotation: Rotate0},
		{Index: 6, Source: 3, Column: 2, Row: 0, Target: Rect{X: 2 * w, Y: 0, Width: w, Height: h}, Rotation: Rotate0},
		{Index: 7, Source: 4, Column: 3, Row: 0, Target: Rect{X: 3 * w, Y: 0, Width: w, Height: h}, Rotation: Rotate0},
	}

	if diff := cmp.Diff(want, l.Slots()); diff != "" {
		t.Errorf("minibook slots mismatch (-want +got):\n%s", diff)
	}
}

func TestMiniBookA4_SourcesAppearOnce(t *testing.T) {
	l := MiniBookA4()
	seen := make(map[int]int)
	for _, s := range l.Slots() {
		seen[s.Source]++
	}
	for src := 0; src < 8; src++ {
		assert.Equal(t, 1, seen[src], "source %d", src)
	}
	assert.Len(t, seen, 8)
}

func TestMiniBookA4_SlotsPartitionSheet(t *testing.T) {
	l := MiniBookA4()
	slots := l.Slots()

	var area float64
	for i, a := range slots {
		area += a.Target.Width * a.Target.Height
		assert.GreaterOrEqual(t, a.Target.X, 0.0)
		assert.GreaterOrEqual(t, a.Target.Y, 0.0)
		assert.LessOrEqual(t, a.Target.MaxX(), l.SheetWidth())
		assert.LessOrEqual(t, a.Target.MaxY(), l.SheetHeight())

		for _, b := range slots[i+1:] {
			overlapX := a.Target.X < b.Target.MaxX() && b.Target.X < a.Target.MaxX()
			overlapY := a.Target.Y < b.Target.MaxY() && b.Target.Y < a.Target.MaxY()
			assert.False(t, overlapX && overlapY, "slots %d and %d overlap", a.Index, b.Index)
		}
	}
	assert.InDelta(t, l.SheetWidth()*l.SheetHeight(), area, 1e-6)
}

func TestMiniBookA4_ReadingOrder(t *testing.T) {
	l := MiniBookA4()

	// 1-based page numbers per row, left to right
	top := []int{8, 1, 2, 7}
	bottom := []int{6, 3, 4, 5}
	for col := 0; col < 4; col++ {
		s, ok := l.SlotAt(col, 1)
		require.True(t, ok)
		assert.Equal(t, top[col], s.Source+1, "top row column %d", col)

		s, ok = l.SlotAt(col, 0)
		require.True(t, ok)
		assert.Equal(t, bottom[col], s.Source+1, "bottom row column %d", col)
	}
}

func TestSignatureLayout_SlotsReturnsCopy(t *testing.T) {
	l := MiniBookA4()
	slots := l.Slots()
	slots[0].Source = 99
	slots[0].Target.Width = 1

	s, ok := l.Slot(0)
	require.True(t, ok)
	assert.Equal(t, 7, s.Source)
	assert.Equal(t, 842.0/4, s.Target.Width)
}

func TestSignatureLayout_Lookups(t *testing.T) {
	l := MiniBookA4()

	s, ok := l.SlotForSource(0)
	require.True(t, ok)
	assert.Equal(t, 1, s.Index)

	_, ok = l.SlotForSource(8)
	assert.False(t, ok)

	_, ok = l.Slot(-1)
	assert.False(t, ok)
	_, ok = l.Slot(8)
	assert.False(t, ok)

	_, ok = l.SlotAt(4, 0)
	assert.False(t, ok)
}

func TestNewGridLayout_Invalid(t *testing.T) {
	valid := func() []GridSlot {
		return []GridSlot{
			{Source: 0, Column: 0, Row: 0},
			{Source: 1, Column: 1, Row: 0},
		}
	}

	tests := []struct {
		name    string
		layout  string
		width   float64
		height  float64
		columns int
		rows    int
		cells   func() []GridSlot
	}{
		{"empty name", "", 100, 100, 2, 1, valid},
		{"zero width", "x", 0, 100, 2, 1, valid},
		{"negative height", "x", 100, -1, 2, 1, valid},
		{"no columns", "x", 100, 100, 0, 1, valid},
		{"too few slots", "x", 100, 100, 3, 1, valid},
		{"cell outside grid", "x", 100, 100, 2, 1, func() []GridSlot {
			c := valid()
			c[1].Column = 2
			return c
		}},
		{"duplicate cell", "x", 100, 100, 2, 1, func() []GridSlot {
			c := valid()
			c[1].Column = 0
			return c
		}},
		{"duplicate source", "x", 100, 100, 2, 1, func() []GridSlot {
			c := valid()
			c[1].Source = 0
			return c
		}},
		{"source out of range", "x", 100, 100, 2, 1, func() []GridSlot {
			c := valid()
			c[1].Source = 2
			return c
		}},
		{"bad rotation", "x", 100, 100, 2, 1, func() []GridSlot {
			c := valid()
			c[0].Rotation = 45
			return c
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewGridLayout(tt.layout, tt.width, tt.height, tt.columns, tt.rows, tt.cells())
			require.Error(t, err)
			assert.Nil(t, l)
			assert.True(t, IsInvalidGeometry(err), "expected invalid geometry, got %v", err)
		})
	}
}

func TestNewGridLayout_Valid(t *testing.T) {
	l, err := NewGridLayout("two-up", 100, 50, 2, 1, []GridSlot{
		{Source: 1, Column: 0, Row: 0, Rotation: Rotate90},
		{Source: 0, Column: 1, Row: 0, Rotation: Rotate270},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, l.PageCount())

	s, ok := l.SlotForSource(0)
	require.True(t, ok)
	assert.Equal(t, Rect{X: 50, Y: 0, Width: 50, Height: 50}, s.Target)
	assert.Equal(t, Rotate270, s.Rotation)
}

func TestParseRotation(t *testing.T) {
	tests := []struct {
		in      int
		want    Rotation
		wantErr bool
	}{
		{0, Rotate0, false},
		{90, Rotate90, false},
		{180, Rotate180, false},
		{270, Rotate270, false},
		{360, Rotate0, false},
		{-90, Rotate270, false},
		{450, Rotate90, false},
		{45, 0, true},
		{100, 0, true},
	}

	for _, tt := range tests {
		got, err := ParseRotation(tt.in)
		if tt.wantErr {
			assert.True(t, IsInvalidGeometry(err), "ParseRotation(%d)", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ParseRotation(%d)", tt.in)
	}
}

func TestRotation_SwapsAxes(t *testing.T) {
	assert.False(t, Rotate0.SwapsAxes())
	assert.True(t, Rotate90.SwapsAxes())
	assert.False(t, Rotate180.SwapsAxes())
	assert.True(t, Rotate270.SwapsAxes())
	assert.Equal(t, "180°", Rotate180.String())
}
