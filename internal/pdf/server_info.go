package pdf

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/a3tai/mcp-pdf-minibook/internal/descriptions"
)

// directoryCache keeps recent directory listings for server info
type directoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]directoryEntry
}

type directoryEntry struct {
	files   []FileInfo
	scanned time.Time
}

func newDirectoryCache(ttl time.Duration) *directoryCache {
	return &directoryCache{ttl: ttl, entries: make(map[string]directoryEntry)}
}

func (c *directoryCache) get(dir string) ([]FileInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[dir]
	if !ok || time.Since(e.scanned) > c.ttl {
		return nil, false
	}
	return e.files, true
}

func (c *directoryCache) set(dir string, files []FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[dir] = directoryEntry{files: files, scanned: time.Now()}
}

// ServerInfo assembles the pdf_server_info response
type ServerInfo struct {
	service   *Service
	listings  *directoryCache
	fileLimit int
	timeout   time.Duration
}

// NewServerInfo creates a server info handler with a 5 minute listing cache
func NewServerInfo(service *Service) *ServerInfo {
	return &ServerInfo{
		service:   service,
		listings:  newDirectoryCache(5 * time.Minute),
		fileLimit: 100,
		timeout:   3 * time.Second,
	}
}

// GetServerInfo returns the tool list, usage guidance and the PDFs available
// in the source directory. A slow directory scan yields an empty listing.
func (p *ServerInfo) GetServerInfo(ctx context.Context, serverName, version string) (*PDFServerInfoResult, error) {
	dir := p.service.inputs.GetConfiguredDirectory()

	files, ok := p.listings.get(dir)
	if !ok {
		files = p.scan(ctx, dir)
		p.listings.set(dir, files)
	}
	if files == nil {
		files = []FileInfo{}
	}

	layout := p.service.minibook.Layout()
	return &PDFServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  dir,
		OutputDirectory:   p.service.outputs.GetConfiguredDirectory(),
		MaxFileSize:       p.service.maxFileSize,
		Layout:            layout.Name(),
		AvailableTools:    p.availableTools(),
		DirectoryContents: files,
		UsageGuidance:     p.usageGuidance(),
		CacheStats:        p.service.minibook.CacheStats(),
	}, nil
}

func (p *ServerInfo) scan(ctx context.Context, dir string) []FileInfo {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resultChan := make(chan []FileInfo, 1)
	go func() {
		files, err := p.service.search.FindPDFsInDirectoryLimited(dir, p.fileLimit)
		if err != nil {
			files = nil
		}
		resultChan <- files
	}()

	select {
	case files := <-resultChan:
		return files
	case <-ctx.Done():
		return nil
	}
}

func (p *ServerInfo) availableTools() []ToolInfo {
	pathParam := "path (required): Full path to the PDF file (relative paths resolve against the PDF directory)"
	return []ToolInfo{
		{
			Name:        "pdf_impose_minibook",
			Description: descriptions.GetToolDescription("pdf_impose_minibook"),
			Usage:       "Use this tool to turn an 8-page PDF into a single A4 landscape sheet that folds into a minibook.",
			Parameters:  pathParam + ", output_path (optional), overwrite (optional)",
		},
		{
			Name:        "pdf_plan_minibook",
			Description: descriptions.GetToolDescription("pdf_plan_minibook"),
			Usage:       "Use this tool to preview scale, rotation and position of every page without writing output.",
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_minibook_layout",
			Description: descriptions.GetToolDescription("pdf_minibook_layout"),
			Usage:       "Use this tool to see which source page goes into which slot of the sheet.",
			Parameters:  "No parameters required",
		},
		{
			Name:        "pdf_validate_file",
			Description: descriptions.GetToolDescription("pdf_validate_file"),
			Usage:       "Use this tool to check that a file is a readable PDF with the right page count.",
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_stats_file",
			Description: descriptions.GetToolDescription("pdf_stats_file"),
			Usage:       "Use this tool to get page count, page sizes and document properties of a PDF.",
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_search_directory",
			Description: descriptions.GetToolDescription("pdf_search_directory"),
			Usage:       "Use this tool to find PDF files in the PDF directory. Supports fuzzy search by filename.",
			Parameters:  "directory (optional): Directory to search, query (optional): fuzzy filename query",
		},
		{
			Name:        "pdf_server_info",
			Description: descriptions.GetToolDescription("pdf_server_info"),
			Usage:       "Use this tool to get server configuration and available capabilities.",
			Parameters:  "No parameters required",
		},
	}
}

func (p *ServerInfo) usageGuidance() string {
	layout := p.service.minibook.Layout()
	return fmt.Sprintf(`PDF Minibook Server Usage Guide:

1. FIND A SOURCE DOCUMENT:
   - Use 'pdf_search_directory' to list PDF files
   - Use 'pdf_validate_file' and check 'minibook_ready'

2. PREVIEW:
   - Use 'pdf_minibook_layout' to see the slot table
   - Use 'pdf_plan_minibook' to see where each page will land

3. IMPOSE:
   - Use 'pdf_impose_minibook'; output defaults to <name>_minibook.pdf in the output directory

IMPORTANT NOTES:
- Layout '%s' needs exactly %d source pages
- The server can handle files up to %dMB
- Pages of any size are scaled uniformly and centered; nothing is cropped`,
		layout.Name(), layout.PageCount(), p.service.maxFileSize/(1024*1024))
}
