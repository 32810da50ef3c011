package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tai/mcp-pdf-minibook/internal/imposition"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdf/cache"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdf/security"
)

// OutputSuffix is appended to the source name when no output path is given
const OutputSuffix = "_minibook.pdf"

// Options configures a Service
type Options struct {
	MaxFileSize     int64
	PDFDirectory    string
	OutputDirectory string // defaults to PDFDirectory
	Layout          *imposition.SignatureLayout
	Cache           cache.Cache
}

// Service orchestrates the PDF components behind the MCP tools and HTTP API
type Service struct {
	maxFileSize int64
	inputs      *security.PathValidator
	outputs     *security.PathValidator
	validator   *Validator
	stats       *Stats
	search      *Search
	minibook    *MiniBook
	serverInfo  *ServerInfo
}

// NewService creates a new PDF service with all components
func NewService(opts Options) (*Service, error) {
	if opts.MaxFileSize <= 0 {
		return nil, fmt.Errorf("maxFileSize must be greater than 0")
	}
	if opts.OutputDirectory == "" {
		opts.OutputDirectory = opts.PDFDirectory
	}
	if opts.Layout == nil {
		opts.Layout = imposition.MiniBookA4()
	}

	inputs, err := security.NewPathValidator(opts.PDFDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	outputs, err := security.NewPathValidator(opts.OutputDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create output path validator: %w", err)
	}

	validator := NewValidator(opts.MaxFileSize, opts.Layout.PageCount())
	minibook, err := NewMiniBook(validator, opts.Layout, opts.Cache)
	if err != nil {
		return nil, err
	}

	s := &Service{
		maxFileSize: opts.MaxFileSize,
		inputs:      inputs,
		outputs:     outputs,
		validator:   validator,
		stats:       NewStats(validator),
		search:      NewSearch(validator),
		minibook:    minibook,
	}
	s.serverInfo = NewServerInfo(s)
	return s, nil
}

// PDFImposeMinibook imposes an 8-page document and writes the sheet to disk
func (s *Service) PDFImposeMinibook(ctx context.Context, req PDFImposeMinibookRequest) (*PDFImposeMinibookResult, error) {
	input, err := s.inputs.NormalizePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	output, err := s.outputPath(input, req.OutputPath)
	if err != nil {
		return nil, err
	}
	if !req.Overwrite {
		if _, err := os.Stat(output); err == nil {
			return nil, fmt.Errorf("output file already exists: %s (set overwrite to replace it)", output)
		}
	}

	source, err := s.minibook.ReadSource(input)
	if err != nil {
		return nil, err
	}

	out, err := s.minibook.Impose(ctx, source)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(output, out.Data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	return &PDFImposeMinibookResult{
		ID:          out.ID,
		InputPath:   input,
		OutputPath:  output,
		Layout:      out.Layout.Name(),
		SheetWidth:  out.Layout.SheetWidth(),
		SheetHeight: out.Layout.SheetHeight(),
		SourcePages: out.Layout.PageCount(),
		Size:        int64(len(out.Data)),
		FromCache:   out.FromCache,
		Placements:  out.Placements,
	}, nil
}

// PDFPlanMinibook computes the placements for a document without writing anything
func (s *Service) PDFPlanMinibook(req PDFPlanMinibookRequest) (*PDFPlanMinibookResult, error) {
	input, err := s.inputs.NormalizePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	source, err := s.minibook.ReadSource(input)
	if err != nil {
		return nil, err
	}

	placements, err := s.minibook.Plan(source)
	if err != nil {
		return nil, err
	}

	layout := s.minibook.Layout()
	return &PDFPlanMinibookResult{
		Path:        input,
		Layout:      layout.Name(),
		SheetWidth:  layout.SheetWidth(),
		SheetHeight: layout.SheetHeight(),
		Placements:  placements,
	}, nil
}

// PDFMinibookLayout describes the active layout
func (s *Service) PDFMinibookLayout(_ PDFMinibookLayoutRequest) *PDFMinibookLayoutResult {
	l := s.minibook.Layout()
	return &PDFMinibookLayoutResult{
		Name:        l.Name(),
		SheetWidth:  l.SheetWidth(),
		SheetHeight: l.SheetHeight(),
		Columns:     l.Columns(),
		Rows:        l.Rows(),
		PageCount:   l.PageCount(),
		Slots:       l.Slots(),
	}
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	path, err := s.inputs.NormalizePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Path = path
	return s.validator.ValidateFile(req)
}

// PDFStatsFile returns detailed statistics about a single PDF file
func (s *Service) PDFStatsFile(req PDFStatsFileRequest) (*PDFStatsFileResult, error) {
	path, err := s.inputs.NormalizePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Path = path
	return s.stats.GetFileStats(req)
}

// PDFSearchDirectory searches for PDF files in a directory
func (s *Service) PDFSearchDirectory(req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.inputs.GetConfiguredDirectory()
	}

	if err := s.inputs.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.search.SearchDirectory(req)
}

// PDFServerInfo returns server information and usage guidance
func (s *Service) PDFServerInfo(ctx context.Context, _ PDFServerInfoRequest, serverName, version string) (*PDFServerInfoResult, error) {
	return s.serverInfo.GetServerInfo(ctx, serverName, version)
}

// ImposeBytes imposes an in-memory document, for callers that stream uploads
func (s *Service) ImposeBytes(ctx context.Context, source []byte) (*MiniBookOutput, error) {
	return s.minibook.Impose(ctx, source)
}

// PlanBytes computes placements for an in-memory document
func (s *Service) PlanBytes(source []byte) ([]imposition.Placement, error) {
	return s.minibook.Plan(source)
}

// Layout returns the active signature layout
func (s *Service) Layout() *imposition.SignatureLayout {
	return s.minibook.Layout()
}

// Close releases resources held by the service
func (s *Service) Close() error {
	return s.minibook.Close()
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// IsValidPDF performs a quick validation check on a file
func (s *Service) IsValidPDF(filePath string) bool {
	return s.validator.IsValidPDF(filePath)
}

// outputPath picks and validates the destination for an imposed sheet
func (s *Service) outputPath(input, requested string) (string, error) {
	output := requested
	if output == "" {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		output = filepath.Join(s.outputs.GetConfiguredDirectory(), base+OutputSuffix)
	} else if !filepath.IsAbs(output) {
		output = filepath.Join(s.outputs.GetConfiguredDirectory(), output)
	}

	output, err := filepath.Abs(output)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}
	if err := s.outputs.ValidatePath(output); err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	if !isPDFName(output) {
		return "", fmt.Errorf("output file must have a .pdf extension: %s", output)
	}
	if output == input {
		return "", errors.New("output path must differ from the input path")
	}
	return output, nil
}
