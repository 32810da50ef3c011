package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-minibook/internal/pdf"
)

// imposeCommand creates the impose command.
func (c *CLI) imposeCommand() *cobra.Command {
	var (
		output string
		force  bool
		opts   engineOptions
	)

	cmd := &cobra.Command{
		Use:   "impose [input.pdf]",
		Short: "Impose an 8-page PDF onto one minibook sheet",
		Long: `Impose an 8-page PDF onto one A4 landscape sheet.

Every page is scaled uniformly to fit its cell, centered, and turned upside
down where the fold requires it. The result is written next to the input as
<name>_minibook.pdf unless -o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImpose(cmd.Context(), args[0], output, force, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>_minibook.pdf)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing output file")
	opts.register(cmd)
	opts.registerCache(cmd)

	return cmd
}

func (c *CLI) runImpose(ctx context.Context, input, output string, force bool, opts engineOptions) error {
	logger := loggerFromContext(ctx)

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + pdf.OutputSuffix
	}
	if filepath.Clean(output) == filepath.Clean(input) {
		return fmt.Errorf("output %s would overwrite the input", output)
	}
	if !force {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("output %s already exists (use --force to overwrite)", output)
		}
	}

	mb, err := opts.newMiniBook(logger)
	if err != nil {
		return err
	}
	defer mb.Close()

	source, err := mb.ReadSource(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	prog := newProgress(logger)
	out, err := mb.Impose(ctx, source)
	if err != nil {
		return fmt.Errorf("impose %s: %w", input, err)
	}
	prog.done("Imposed " + filepath.Base(input))
	logger.Debug("imposition finished", "id", out.ID, "bytes", len(out.Data))

	if err := os.WriteFile(output, out.Data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	c.printSuccess("Minibook complete")
	c.printFile(output)
	c.printKeyValue("Layout", out.Layout.Name())
	c.printKeyValue("ID", out.ID)
	if out.FromCache {
		c.printCached()
	}
	return nil
}
