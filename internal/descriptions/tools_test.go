package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	tests := []struct {
		name     string
		contains string
	}{
		{"pdf_impose_minibook", "A4 landscape"},
		{"pdf_plan_minibook", "without writing"},
		{"pdf_minibook_layout", "slot table"},
		{"pdf_validate_file", "minibook"},
		{"pdf_stats_file", "page sizes"},
		{"pdf_search_directory", "fuzzy"},
		{"pdf_server_info", "cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := GetToolDescription(tt.name)
			assert.Contains(t, desc, tt.contains)
			assert.Contains(t, desc, "**When to use:**")
			assert.Contains(t, desc, "**Best practices:**")
		})
	}

	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_read_file"))
}

func TestGetAllToolNames(t *testing.T) {
	names := GetAllToolNames()
	assert.Len(t, names, len(ToolDescriptions))
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "pdf_impose_minibook")
}
