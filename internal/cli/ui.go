package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/a3tai/mcp-pdf-minibook/internal/imposition"
)

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // rotated cells
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey   = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)

	styleCell = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorDim).
			Align(lipgloss.Center, lipgloss.Center).
			Width(10).
			Height(3)
	styleCellRotated = styleCell.Foreground(colorYellow)
)

const (
	iconSuccess = "✓"
	iconArrow   = "→"
)

func (c *CLI) printSuccess(format string, args ...any) {
	fmt.Fprintln(c.out, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func (c *CLI) printFile(path string) {
	fmt.Fprintln(c.out, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

func (c *CLI) printKeyValue(key, value string) {
	fmt.Fprintln(c.out, styleKey.Render(key)+" "+styleValue.Render(value))
}

func (c *CLI) printCached() {
	fmt.Fprintln(c.out, "  "+styleCached.Render("cached"))
}

func (c *CLI) printTitle(title string) {
	fmt.Fprintln(c.out, styleTitle.Render(title))
}

// renderGrid draws the slot grid as seen on the printed sheet, top row first.
// Each cell shows the 1-based source page and its rotation.
func renderGrid(l *imposition.SignatureLayout) string {
	rows := make([]string, 0, l.Rows())
	for row := l.Rows() - 1; row >= 0; row-- {
		cells := make([]string, 0, l.Columns())
		for col := 0; col < l.Columns(); col++ {
			slot, ok := l.SlotAt(col, row)
			if !ok {
				cells = append(cells, styleCell.Render(""))
				continue
			}
			label := fmt.Sprintf("p%d", slot.Source+1)
			style := styleCell
			if slot.Rotation != imposition.Rotate0 {
				label += "\n" + slot.Rotation.String()
				style = styleCellRotated
			}
			cells = append(cells, style.Render(label))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderPlacements formats one line per slot.
func renderPlacements(placements []imposition.Placement) string {
	var b strings.Builder
	for _, p := range placements {
		fmt.Fprintf(&b, "%s page %-2d %s (%7.2f, %7.2f)  scale %.4f  rotation %s\n",
			styleDim.Render(fmt.Sprintf("slot %d", p.Slot)),
			p.Source+1, styleDim.Render(iconArrow), p.Target.X, p.Target.Y, p.Scale, p.Rotation)
	}
	return b.String()
}
