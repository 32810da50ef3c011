package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-minibook/internal/config"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdf"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdftest"
)

type testEnv struct {
	server *Server
	in     string
	out    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	in := t.TempDir()
	out := t.TempDir()

	cfg := &config.Config{
		Mode:            config.ModeStdio,
		Host:            "127.0.0.1",
		Port:            8080,
		PDFDirectory:    in,
		OutputDirectory: out,
		Version:         "1.0.0",
		ServerName:      "test-server",
		LogLevel:        "info",
		MaxFileSize:     10 * 1024 * 1024,
	}
	pdfService, err := pdf.NewService(pdf.Options{
		MaxFileSize:     cfg.MaxFileSize,
		PDFDirectory:    in,
		OutputDirectory: out,
	})
	require.NoError(t, err)

	server, err := NewServer(cfg, pdfService)
	require.NoError(t, err)
	return &testEnv{server: server, in: in, out: out}
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	pdfService, err := pdf.NewService(pdf.Options{MaxFileSize: 1024, PDFDirectory: t.TempDir()})
	require.NoError(t, err)
	cfg := config.DefaultConfig()

	tests := []struct {
		name        string
		config      *config.Config
		service     *pdf.Service
		expectError bool
	}{
		{"valid", cfg, pdfService, false},
		{"nil service", cfg, nil, true},
		{"nil config", nil, pdfService, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(tt.config, tt.service)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, server)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.config, server.config)
			assert.Same(t, tt.service, server.pdfService)
			assert.NotNil(t, server.mcpServer)
		})
	}
}

func TestServer_HandlePDFImposeMinibook(t *testing.T) {
	env := newTestEnv(t)
	src := pdftest.WriteFile(t, env.in, "zine.pdf", pdftest.MiniBookSource())

	result, err := env.server.handlePDFImposeMinibook(context.Background(), callRequest(map[string]interface{}{
		"path": src,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	text := extractTextFromResult(result)
	want := filepath.Join(env.out, "zine_minibook.pdf")
	assert.Contains(t, text, "Minibook written: "+want)
	assert.Contains(t, text, "Imposition ID: ")
	assert.Contains(t, text, "slot 0: page 8")
	assert.Contains(t, text, "rotation 180°")
	assert.FileExists(t, want)

	// a second run refuses to replace the sheet unless asked to
	result, err = env.server.handlePDFImposeMinibook(context.Background(), callRequest(map[string]interface{}{
		"path": src,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = env.server.handlePDFImposeMinibook(context.Background(), callRequest(map[string]interface{}{
		"path":        src,
		"output_path": "custom.pdf",
		"overwrite":   true,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))
	assert.FileExists(t, filepath.Join(env.out, "custom.pdf"))
}

func TestServer_HandlePDFImposeMinibook_Errors(t *testing.T) {
	env := newTestEnv(t)
	seven := pdftest.WriteFile(t, env.in, "seven.pdf", pdftest.Build("Seven", pdftest.A4(7)))

	tests := []struct {
		name     string
		args     map[string]interface{}
		contains string
	}{
		{"missing path", map[string]interface{}{}, "path"},
		{"wrong page count", map[string]interface{}{"path": seven}, "exactly 8 pages"},
		{"outside directory", map[string]interface{}{"path": "/etc/passwd.pdf"}, "security validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.server.handlePDFImposeMinibook(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, extractTextFromResult(result), tt.contains)
		})
	}

	entries, err := os.ReadDir(env.out)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed impositions must not write output")
}

func TestServer_HandlePDFPlanMinibook(t *testing.T) {
	env := newTestEnv(t)
	src := pdftest.WriteFile(t, env.in, "zine.pdf", pdftest.MiniBookSource())

	result, err := env.server.handlePDFPlanMinibook(context.Background(), callRequest(map[string]interface{}{
		"path": src,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Minibook plan for: "+src)
	assert.Contains(t, text, "scale 0.3533")
	assert.Contains(t, text, "slot 7: page 5")

	entries, err := os.ReadDir(env.out)
	require.NoError(t, err)
	assert.Empty(t, entries, "planning must not write output")
}

func TestServer_HandlePDFMinibookLayout(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.server.handlePDFMinibookLayout(context.Background(), callRequest(nil))
	require.NoError(t, err)

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Layout: minibook-a4")
	assert.Contains(t, text, "4 columns x 2 rows, 8 pages")
	assert.Contains(t, text, "| 8 (180°) | 1 | 2 | 7 (180°) |")
	assert.Contains(t, text, "| 6 (180°) | 3 | 4 | 5 |")
}

func TestServer_HandlePDFValidateFile(t *testing.T) {
	env := newTestEnv(t)
	ready := pdftest.WriteFile(t, env.in, "ready.pdf", pdftest.MiniBookSource())
	short := pdftest.WriteFile(t, env.in, "short.pdf", pdftest.Build("Short", pdftest.A4(3)))
	broken := pdftest.WriteFile(t, env.in, "broken.pdf", make([]byte, 1024))

	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{"ready", ready, "ready for minibook imposition (8 pages)"},
		{"wrong page count", short, "valid but not minibook ready"},
		{"not a pdf", broken, "PDF validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.server.handlePDFValidateFile(context.Background(), callRequest(map[string]interface{}{
				"path": tt.path,
			}))
			require.NoError(t, err)
			assert.Contains(t, extractTextFromResult(result), tt.contains)
		})
	}
}

func TestServer_HandlePDFStatsFile(t *testing.T) {
	env := newTestEnv(t)
	src := pdftest.WriteFile(t, env.in, "zine.pdf", pdftest.MiniBookSource())

	result, err := env.server.handlePDFStatsFile(context.Background(), callRequest(map[string]interface{}{
		"path": src,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Pages: 8")
	assert.Contains(t, text, "Minibook ready: true")
	assert.Contains(t, text, "Title: Minibook Source")
	assert.Contains(t, text, "1: 595.0 x 842.0")
}

func TestServer_HandlePDFSearchDirectory(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"doc1.pdf", "doc2.pdf", "report.txt"} {
		pdftest.WriteFile(t, env.in, name, make([]byte, 1024))
	}

	tests := []struct {
		name     string
		args     map[string]interface{}
		contains string
	}{
		{"explicit directory", map[string]interface{}{"directory": env.in}, "Found 2 PDF file(s)"},
		{"default directory", map[string]interface{}{}, "Found 2 PDF file(s)"},
		{"query", map[string]interface{}{"query": "doc1"}, "Found 1 PDF file(s)"},
		{"no match", map[string]interface{}{"query": "nothing"}, "No PDF files found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.server.handlePDFSearchDirectory(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			assert.Contains(t, extractTextFromResult(result), tt.contains)
		})
	}
}

func TestServer_HandlePDFServerInfo(t *testing.T) {
	env := newTestEnv(t)
	pdftest.WriteFile(t, env.in, "zine.pdf", pdftest.MiniBookSource())

	result, err := env.server.handlePDFServerInfo(context.Background(), callRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := extractTextFromResult(result)
	assert.Contains(t, text, "test-server v1.0.0")
	assert.Contains(t, text, "Output Directory: "+env.out)
	assert.Contains(t, text, "Layout: minibook-a4")
	assert.Contains(t, text, "zine.pdf")
	for _, tool := range []string{
		"pdf_impose_minibook", "pdf_plan_minibook", "pdf_minibook_layout",
		"pdf_validate_file", "pdf_stats_file", "pdf_search_directory", "pdf_server_info",
	} {
		assert.Contains(t, text, "• "+tool)
	}
}

func TestServer_InvalidArguments(t *testing.T) {
	env := newTestEnv(t)
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"impose":   env.server.handlePDFImposeMinibook,
		"plan":     env.server.handlePDFPlanMinibook,
		"validate": env.server.handlePDFValidateFile,
		"stats":    env.server.handlePDFStatsFile,
	}

	for name, handle := range handlers {
		t.Run(name, func(t *testing.T) {
			result, err := handle(context.Background(), callRequest(map[string]interface{}{"path": 42}))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

// Helper function to extract text from CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
