package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-minibook/internal/imposition"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		layoutFile string
		asTOML     bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Draw the signature layout",
		Long: `Draw the signature layout as it appears on the printed sheet.

Cells show the 1-based source page; rotated cells are highlighted. With
--toml the layout is printed in the format accepted by --layout-file, which
is a convenient starting point for custom layouts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			layout, err := imposition.LoadLayout(layoutFile)
			if err != nil {
				return fmt.Errorf("load layout: %w", err)
			}
			if asTOML {
				return imposition.EncodeLayout(c.out, layout)
			}
			c.printTitle(fmt.Sprintf("%s (%.0f x %.0f pt, %d pages)",
				layout.Name(), layout.SheetWidth(), layout.SheetHeight(), layout.PageCount()))
			fmt.Fprintln(c.out, renderGrid(layout))
			return nil
		},
	}

	cmd.Flags().StringVar(&layoutFile, "layout-file", "", "TOML signature layout (default: A4 minibook)")
	cmd.Flags().BoolVar(&asTOML, "toml", false, "print the layout as TOML")

	return cmd
}
