// Package cli implements the minibook command-line interface.
//
// The commands impose an 8-page PDF onto one foldable sheet, show where each
// page would be placed, and draw the signature layout. Loggers are passed
// through context.Context; --verbose switches to debug level.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-minibook/internal/config"
	"github.com/a3tai/mcp-pdf-minibook/internal/imposition"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdf"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdf/cache"
)

const appName = "minibook"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	out    io.Writer
}

// New creates a CLI that logs to logw and prints results to out.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		out:    out,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Minibook imposes 8-page PDFs onto one foldable sheet",
		Long: `Minibook places the eight pages of a PDF onto a single A4 landscape sheet.
Printed, cut along the middle of the inner four cells and folded, the sheet
becomes a small booklet that reads in order.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.SetOut(c.out)

	root.AddCommand(c.imposeCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.layoutCommand())

	return root
}

// engineOptions are the flags shared by the commands that read a source PDF.
type engineOptions struct {
	layoutFile  string
	maxFileSize int64
	cacheSize   int
	redisAddr   string
}

func (o *engineOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.layoutFile, "layout-file", "", "TOML signature layout (default: A4 minibook)")
	cmd.Flags().Int64Var(&o.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "maximum source size in bytes")
}

func (o *engineOptions) registerCache(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.cacheSize, "cache-size", 0, "imposed sheets kept in memory (0 disables)")
	cmd.Flags().StringVar(&o.redisAddr, "redis-addr", "", "Redis address for a shared result cache")
}

// newMiniBook builds the imposition component for one command run.
func (o *engineOptions) newMiniBook(logger *log.Logger) (*pdf.MiniBook, error) {
	layout, err := imposition.LoadLayout(o.layoutFile)
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}
	logger.Debug("layout loaded", "name", layout.Name(), "pages", layout.PageCount())

	resultCache, err := cache.New(cache.Options{
		Capacity:  o.cacheSize,
		TTL:       config.DefaultCacheTTL,
		RedisAddr: o.redisAddr,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize cache: %w", err)
	}

	validator := pdf.NewValidator(o.maxFileSize, layout.PageCount())
	return pdf.NewMiniBook(validator, layout, resultCache)
}
