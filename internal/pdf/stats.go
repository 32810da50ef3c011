package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/a3tai/mcp-pdf-minibook/internal/pdf/render"
	"github.com/ledongthuc/pdf"
)

// Stats handles PDF statistics operations
type Stats struct {
	validator *Validator
}

// NewStats creates a stats analyzer sharing the validator's constraints
func NewStats(validator *Validator) *Stats {
	return &Stats{validator: validator}
}

// GetFileStats returns page count, page sizes and document info of a PDF file
func (s *Stats) GetFileStats(req PDFStatsFileRequest) (*PDFStatsFileResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(req.Path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", req.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := s.validator.ValidateFileInfo(req.Path, fileInfo); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	result := &PDFStatsFileResult{
		Path:         req.Path,
		Size:         fileInfo.Size(),
		Pages:        r.NumPage(),
		ModifiedDate: fileInfo.ModTime().Format("2006-01-02 15:04:05"),
	}
	result.MinibookReady = s.validator.Ready(result.Pages)

	s.extractMetadata(r, result)

	// page sizes come from pdfcpu so they match what the imposer sees
	if doc, err := render.OpenFile(req.Path); err == nil {
		for i := 0; i < doc.PageCount(); i++ {
			w, h, err := doc.PageSize(i)
			if err != nil {
				break
			}
			result.PageSizes = append(result.PageSizes, PageSize{Page: i + 1, Width: w, Height: h})
		}
	}

	return result, nil
}

// extractMetadata reads the document info dictionary
func (s *Stats) extractMetadata(r *pdf.Reader, result *PDFStatsFileResult) {
	// ledongthuc panics on some malformed info dictionaries
	defer func() {
		_ = recover()
	}()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return
	}

	fields := []struct {
		key string
		dst *string
	}{
		{"Title", &result.Title},
		{"Author", &result.Author},
		{"Subject", &result.Subject},
		{"Producer", &result.Producer},
		{"CreationDate", &result.CreatedDate},
	}
	for _, f := range fields {
		if v := info.Key(f.key); !v.IsNull() {
			*f.dst = strings.TrimSpace(v.Text())
		}
	}
}
