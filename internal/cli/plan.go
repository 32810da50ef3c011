package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var opts engineOptions

	cmd := &cobra.Command{
		Use:   "plan [input.pdf]",
		Short: "Show where each page would be placed, without writing output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd.Context(), args[0], opts)
		},
	}
	opts.register(cmd)

	return cmd
}

func (c *CLI) runPlan(ctx context.Context, input string, opts engineOptions) error {
	logger := loggerFromContext(ctx)

	mb, err := opts.newMiniBook(logger)
	if err != nil {
		return err
	}
	defer mb.Close()

	source, err := mb.ReadSource(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	placements, err := mb.Plan(source)
	if err != nil {
		return fmt.Errorf("plan %s: %w", input, err)
	}

	layout := mb.Layout()
	c.printTitle(fmt.Sprintf("%s (%.0f x %.0f pt)", layout.Name(), layout.SheetWidth(), layout.SheetHeight()))
	fmt.Fprint(c.out, renderPlacements(placements))
	return nil
}
