package pdf

import (
	"github.com/a3tai/mcp-pdf-minibook/internal/imposition"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdf/cache"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// PDFImposeMinibookRequest represents a request to impose an 8-page PDF onto one sheet
type PDFImposeMinibookRequest struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path,omitempty"`
	Overwrite  bool   `json:"overwrite,omitempty"`
}

// PDFPlanMinibookRequest represents a dry-run request that only computes placements
type PDFPlanMinibookRequest struct {
	Path string `json:"path"`
}

// PDFMinibookLayoutRequest represents a request to describe the active layout
type PDFMinibookLayoutRequest struct{}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFStatsFileRequest represents a request to get stats about a PDF file
type PDFStatsFileRequest struct {
	Path string `json:"path"`
}

// PDFSearchDirectoryRequest represents a request to search for PDF files in a directory
type PDFSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// PDFServerInfoRequest represents a request to get server information and capabilities
type PDFServerInfoRequest struct{}

// Response Types

// PDFImposeMinibookResult describes a written minibook sheet
type PDFImposeMinibookResult struct {
	ID          string                 `json:"id"`
	InputPath   string                 `json:"input_path"`
	OutputPath  string                 `json:"output_path"`
	Layout      string                 `json:"layout"`
	SheetWidth  float64                `json:"sheet_width"`
	SheetHeight float64                `json:"sheet_height"`
	SourcePages int                    `json:"source_pages"`
	Size        int64                  `json:"size"`
	FromCache   bool                   `json:"from_cache"`
	Placements  []imposition.Placement `json:"placements,omitempty"`
}

// PDFPlanMinibookResult lists where every source page would be drawn
type PDFPlanMinibookResult struct {
	Path        string                 `json:"path"`
	Layout      string                 `json:"layout"`
	SheetWidth  float64                `json:"sheet_width"`
	SheetHeight float64                `json:"sheet_height"`
	Placements  []imposition.Placement `json:"placements"`
}

// PDFMinibookLayoutResult describes the signature layout in use
type PDFMinibookLayoutResult struct {
	Name        string            `json:"name"`
	SheetWidth  float64           `json:"sheet_width"`
	SheetHeight float64           `json:"sheet_height"`
	Columns     int               `json:"columns"`
	Rows        int               `json:"rows"`
	PageCount   int               `json:"page_count"`
	Slots       []imposition.Slot `json:"slots"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid         bool   `json:"valid"`
	Path          string `json:"path"`
	Pages         int    `json:"pages,omitempty"`
	MinibookReady bool   `json:"minibook_ready"`
	Message       string `json:"message,omitempty"`
}

// PDFStatsFileResult represents the result of a PDF file stats operation
type PDFStatsFileResult struct {
	Path          string     `json:"path"`
	Size          int64      `json:"size"`
	Pages         int        `json:"pages"`
	PageSizes     []PageSize `json:"page_sizes,omitempty"`
	MinibookReady bool       `json:"minibook_ready"`
	CreatedDate   string     `json:"created_date,omitempty"`
	ModifiedDate  string     `json:"modified_date"`
	Title         string     `json:"title,omitempty"`
	Author        string     `json:"author,omitempty"`
	Subject       string     `json:"subject,omitempty"`
	Producer      string     `json:"producer,omitempty"`
}

// PageSize is the displayed size of one page in points
type PageSize struct {
	Page   int     `json:"page"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PDFSearchDirectoryResult represents the result of a PDF search operation
type PDFSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// PDFServerInfoResult represents server information and usage guidance
type PDFServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	OutputDirectory   string     `json:"output_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	Layout            string     `json:"layout"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
	CacheStats        *cache.Stats `json:"cache_stats,omitempty"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
