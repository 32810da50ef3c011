package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/a3tai/mcp-pdf-minibook/internal/config"
	"github.com/a3tai/mcp-pdf-minibook/internal/httpapi"
	"github.com/a3tai/mcp-pdf-minibook/internal/imposition"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdf"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool list is fixed at startup
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pdfImposeMinibookTool := mcp.NewTool(
		"pdf_impose_minibook",
		mcp.WithDescription("Impose an 8-page PDF onto one A4 landscape sheet that folds into a minibook"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the 8-page source PDF"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the sheet (defaults to <name>_minibook.pdf in the output directory)"),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Replace an existing output file"),
		),
	)
	s.mcpServer.AddTool(pdfImposeMinibookTool, s.handlePDFImposeMinibook)

	pdfPlanMinibookTool := mcp.NewTool(
		"pdf_plan_minibook",
		mcp.WithDescription("Compute slot placements for an 8-page PDF without writing output"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the 8-page source PDF"),
		),
	)
	s.mcpServer.AddTool(pdfPlanMinibookTool, s.handlePDFPlanMinibook)

	pdfMinibookLayoutTool := mcp.NewTool(
		"pdf_minibook_layout",
		mcp.WithDescription("Describe the signature layout: sheet size, grid and slot table"),
	)
	s.mcpServer.AddTool(pdfMinibookLayoutTool, s.handlePDFMinibookLayout)

	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription("Validate if a file is a readable PDF and ready for imposition"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)

	pdfStatsFileTool := mcp.NewTool(
		"pdf_stats_file",
		mcp.WithDescription("Get page count, page sizes and metadata of a PDF file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfStatsFileTool, s.handlePDFStatsFile)

	pdfSearchDirectoryTool := mcp.NewTool(
		"pdf_search_directory",
		mcp.WithDescription("Search for PDF files in a directory with optional fuzzy search"),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
	)
	s.mcpServer.AddTool(pdfSearchDirectoryTool, s.handlePDFSearchDirectory)

	pdfServerInfoTool := mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription("Get server information, the active layout, available tools and usage guidance"),
	)
	s.mcpServer.AddTool(pdfServerInfoTool, s.handlePDFServerInfo)
}

// Handler functions
func (s *Server) handlePDFImposeMinibook(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	req := pdf.PDFImposeMinibookRequest{Path: path}
	if out, ok := args["output_path"].(string); ok {
		req.OutputPath = out
	}
	if overwrite, ok := args["overwrite"].(bool); ok {
		req.Overwrite = overwrite
	}

	result, err := s.pdfService.PDFImposeMinibook(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(imposeErrorText(err)), nil
	}

	return mcp.NewToolResultText(s.formatPDFImposeMinibookResult(result)), nil
}

func (s *Server) handlePDFPlanMinibook(_ context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFPlanMinibook(pdf.PDFPlanMinibookRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(imposeErrorText(err)), nil
	}

	text := fmt.Sprintf("Minibook plan for: %s\n", result.Path)
	text += fmt.Sprintf("Layout: %s (%.1f x %.1f pt)\n\n", result.Layout, result.SheetWidth, result.SheetHeight)
	text += formatPlacements(result.Placements)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handlePDFMinibookLayout(_ context.Context, _ mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	result := s.pdfService.PDFMinibookLayout(pdf.PDFMinibookLayoutRequest{})
	return mcp.NewToolResultText(s.formatPDFMinibookLayoutResult(result)), nil
}

func (s *Server) handlePDFValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFValidateFile(pdf.PDFValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	switch {
	case !result.Valid:
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	case result.MinibookReady:
		responseText = fmt.Sprintf("PDF file %s is valid and ready for minibook imposition (%d pages)",
			result.Path, result.Pages)
	default:
		responseText = fmt.Sprintf("PDF file %s is valid but not minibook ready: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFStatsFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFStatsFile(pdf.PDFStatsFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPDFStatsFileResult(result)), nil
}

func (s *Server) handlePDFSearchDirectory(_ context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.PDFDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	result, err := s.pdfService.PDFSearchDirectory(pdf.PDFSearchDirectoryRequest{
		Directory: directory,
		Query:     query,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatPDFSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.PDFServerInfo(ctx, pdf.PDFServerInfoRequest{}, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPDFServerInfoResult(result)), nil
}

// imposeErrorText adds a hint for the errors a caller can fix
func imposeErrorText(err error) string {
	switch {
	case imposition.IsPageCountMismatch(err):
		return err.Error() + "\n\nHint: the minibook needs exactly 8 pages; add or remove pages and try again."
	case imposition.IsInvalidGeometry(err):
		return err.Error() + "\n\nHint: a page has an empty or unusable page box."
	default:
		return err.Error()
	}
}

// Formatting methods
func (s *Server) formatPDFImposeMinibookResult(result *pdf.PDFImposeMinibookResult) string {
	text := fmt.Sprintf("Minibook written: %s\n", result.OutputPath)
	text += fmt.Sprintf("Imposition ID: %s\n", result.ID)
	text += fmt.Sprintf("Source: %s (%d pages)\n", result.InputPath, result.SourcePages)
	text += fmt.Sprintf("Layout: %s (%.1f x %.1f pt)\n", result.Layout, result.SheetWidth, result.SheetHeight)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	if result.FromCache {
		text += "Served from cache\n"
	}
	if len(result.Placements) > 0 {
		text += "\n" + formatPlacements(result.Placements)
	}
	text += "\nPrint at 100% scale, cut along the middle of the inner four cells and fold."
	return text
}

func formatPlacements(placements []imposition.Placement) string {
	var b strings.Builder
	b.WriteString("Placements:\n")
	for _, p := range placements {
		fmt.Fprintf(&b, "  slot %d: page %d at (%.2f, %.2f) %gx%g, rotation %s, scale %.4f\n",
			p.Slot, p.Source+1, p.Target.X, p.Target.Y, p.Target.Width, p.Target.Height,
			p.Rotation, p.Scale)
	}
	return b.String()
}

func (s *Server) formatPDFMinibookLayoutResult(result *pdf.PDFMinibookLayoutResult) string {
	text := fmt.Sprintf("Layout: %s\n", result.Name)
	text += fmt.Sprintf("Sheet: %.1f x %.1f pt\n", result.SheetWidth, result.SheetHeight)
	text += fmt.Sprintf("Grid: %d columns x %d rows, %d pages\n\n", result.Columns, result.Rows, result.PageCount)

	// top row first, as the sheet is seen when printed
	for row := result.Rows - 1; row >= 0; row-- {
		cells := make([]string, result.Columns)
		for _, slot := range result.Slots {
			if slot.Row != row || slot.Column < 0 || slot.Column >= result.Columns {
				continue
			}
			cell := fmt.Sprintf("%d", slot.Source+1)
			if slot.Rotation != imposition.Rotate0 {
				cell += " (" + slot.Rotation.String() + ")"
			}
			cells[slot.Column] = cell
		}
		text += "| " + strings.Join(cells, " | ") + " |\n"
	}
	return text
}

func (s *Server) formatPDFSearchDirectoryResult(result *pdf.PDFSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatPDFStatsFileResult(result *pdf.PDFStatsFileResult) string {
	text := "PDF File Statistics\n"
	text += fmt.Sprintf("File: %s\n", result.Path)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Minibook ready: %t\n", result.MinibookReady)
	text += fmt.Sprintf("Modified: %s\n", result.ModifiedDate)

	if result.Title != "" {
		text += fmt.Sprintf("Title: %s\n", result.Title)
	}
	if result.Author != "" {
		text += fmt.Sprintf("Author: %s\n", result.Author)
	}
	if result.Subject != "" {
		text += fmt.Sprintf("Subject: %s\n", result.Subject)
	}
	if result.Producer != "" {
		text += fmt.Sprintf("Producer: %s\n", result.Producer)
	}
	if result.CreatedDate != "" {
		text += fmt.Sprintf("Created: %s\n", result.CreatedDate)
	}

	if len(result.PageSizes) > 0 {
		text += "\nPage sizes (pt):\n"
		for _, ps := range result.PageSizes {
			text += fmt.Sprintf("  %d: %.1f x %.1f\n", ps.Page, ps.Width, ps.Height)
		}
	}

	return text
}

func (s *Server) formatPDFServerInfoResult(result *pdf.PDFServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📤 Output Directory: %s\n", result.OutputDirectory)
	text += fmt.Sprintf("📐 Layout: %s\n", result.Layout)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	if cs := result.CacheStats; cs != nil {
		text += fmt.Sprintf("🗄️  Cache: %s, %d entries, %.1f%% hit rate\n", cs.Backend, cs.Size, cs.HitRate)
	}
	text += "\n"

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // keep the listing readable
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in default directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	switch s.config.Mode {
	case config.ModeServer:
		return s.runServerMode(ctx)
	case config.ModeStdio:
		return s.runStdioMode(ctx)
	default:
		return fmt.Errorf("unsupported mode: %s", s.config.Mode)
	}
}

// runStdioMode serves MCP over standard I/O until ctx is done or stdin closes
func (s *Server) runStdioMode(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting minibook MCP server in stdio mode")
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
	}
	return s.serveStdio(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serveStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.Default())

	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the HTTP API until ctx is done
func (s *Server) runServerMode(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address(),
		Handler:           httpapi.NewRouter(s.pdfService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting minibook HTTP API on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown failed: %w", err)
		}
		return nil
	}
}
