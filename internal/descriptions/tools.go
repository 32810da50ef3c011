package descriptions

import "sort"

// Comprehensive tool descriptions with practical examples and use cases

const (
	// Imposition Tools
	PDFImposeMinibookDescription = `Impose an 8-page PDF onto a single A4 landscape sheet that folds into a pocket minibook.

**When to use:** You have exactly eight pages (a zine, a cheat sheet, a pocket guide) and want one printable sheet that becomes a booklet after one cut and a few folds.

**Why it's useful:** Places every page in its fold position, scales it uniformly to fit its cell, turns the top-row outer cells upside down and centers each page, so the printed sheet reads in order once folded.

**Examples:**
• Pocket zine: "Impose zine.pdf as a minibook"
• Custom output: "Impose guide.pdf into printable/guide-sheet.pdf"
• Re-run: "Impose notes.pdf again and overwrite the previous sheet"

**Common workflows:**
1. Print Prep: pdf_validate_file → check minibook_ready → pdf_impose_minibook → print at 100% scale
2. Review First: pdf_plan_minibook → inspect placements → pdf_impose_minibook
3. Batch: pdf_search_directory → validate each result → impose the ready ones

**Best practices:** The source must have exactly eight pages. Existing outputs are never replaced unless overwrite is true. Print without "fit to page" so the fold lines stay on the cell borders.`

	PDFPlanMinibookDescription = `Compute where each page of an 8-page PDF would land on the minibook sheet without writing anything.

**When to use:** Need to check scale, rotation and centering before producing output, or debug a sheet that printed unexpectedly.

**Why it's useful:** Returns per-slot placements (source page, target cell, rotation, scale, offsets and the full affine transform) so layout problems are visible before any file is written.

**Examples:**
• Dry run: "Plan the minibook for zine.pdf"
• Mixed sizes: "Show how the letter-size page 7 of handout.pdf fits its cell"

**Common workflows:**
1. Preview: pdf_plan_minibook → review scales → pdf_impose_minibook
2. Troubleshooting: pdf_stats_file → compare page sizes → pdf_plan_minibook

**Best practices:** Pages with different sizes get different scales; a small scale on one slot usually means that page has an unusual aspect ratio.`

	PDFMinibookLayoutDescription = `Describe the signature layout used for imposition: sheet size, grid and the slot table.

**When to use:** Need to know which source page goes in which cell, which cells are rotated, or which layout file the server was started with.

**Why it's useful:** Makes the fold pattern explicit so printed sheets can be checked by hand and custom layouts can be verified.

**Examples:**
• Reading order: "Which page sits in the top-left cell of the minibook?"
• Custom layout check: "Show the layout the server is using"

**Common workflows:**
1. Folding Instructions: pdf_minibook_layout → explain the cut and fold sequence
2. Layout Development: edit layout TOML → restart server → pdf_minibook_layout

**Best practices:** The top row of the default layout reads 8, 1, 2, 7 and the bottom row 6, 3, 4, 5; pages 8 and 7 on top and 6 at bottom-left are upside down, while page 5 at bottom-right is upright.`

	PDFValidateFileDescription = `Verify PDF file integrity and check whether it can be imposed as a minibook.

**When to use:** Before imposing, especially with files from unknown sources, after downloads, or when troubleshooting.

**Why it's useful:** Catches corrupted or oversized files early and reports whether the page count matches the layout, preventing wasted processing time and confusing errors.

**Examples:**
• Pre-flight check: "Validate zine.pdf before imposing it"
• Batch validation: "Check all PDFs in drafts/ are ready for printing"
• Troubleshooting: "Validate problematic.pdf to see why imposition failed"

**Common workflows:**
1. Safe Processing: pdf_validate_file → if minibook_ready → pdf_impose_minibook
2. Quality Control: Search directory → Validate each file → Report problem files

**Best practices:** Always validate unknown files first; a valid PDF with the wrong page count is reported as valid but not minibook ready.`

	PDFStatsFileDescription = `Get document statistics: size, page count, page sizes and metadata.

**When to use:** Need to understand a document before imposing it, check for mixed page sizes, or read its title and author.

**Why it's useful:** Shows the displayed size of every page after rotation and crop, which is what the imposition engine scales into each cell.

**Examples:**
• Size check: "Show page sizes of handout.pdf"
• Metadata: "Who authored zine.pdf and when was it created?"

**Common workflows:**
1. Pre-imposition: pdf_stats_file → spot odd page sizes → pdf_plan_minibook
2. Cataloging: Search directory → Get stats for each file → Build inventory

**Best practices:** Page sizes are reported in PDF points (1/72 inch).`

	PDFSearchDirectoryDescription = `Find PDF files in the configured directory with optional fuzzy matching on file names.

**When to use:** Looking for source documents to impose, or locating earlier minibook outputs.

**Why it's useful:** Matches words in any order against file names, skipping hidden directories, so files are found without exact names.

**Examples:**
• Find sources: "Search for zine PDFs"
• Find outputs: "List files matching minibook"
• Browse: "Show all PDFs in the directory"

**Common workflows:**
1. Discovery: pdf_search_directory → pdf_validate_file → pdf_impose_minibook
2. Cleanup: Search for "_minibook" → review outputs

**Best practices:** Results are limited to keep responses small; narrow the query when a directory holds many files.`

	PDFServerInfoDescription = `Get server capabilities, the active layout, directories, cache statistics and usage guidance.

**When to use:** Starting a session, checking the configured directories, or learning which tools are available.

**Why it's useful:** Summarizes everything needed to start imposing: where sources are read from, where sheets are written, which layout is active and how many pages it needs.

**Examples:**
• Session start: "What can this server do?"
• Configuration: "Where are minibooks written?"

**Common workflows:**
1. Onboarding: pdf_server_info → pdf_search_directory → pdf_impose_minibook
2. Operations: pdf_server_info → check cache hit rate

**Best practices:** Call once at the start of a session; directory listings are cached for a few minutes.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"pdf_impose_minibook":  PDFImposeMinibookDescription,
	"pdf_plan_minibook":    PDFPlanMinibookDescription,
	"pdf_minibook_layout":  PDFMinibookLayoutDescription,
	"pdf_validate_file":    PDFValidateFileDescription,
	"pdf_stats_file":       PDFStatsFileDescription,
	"pdf_search_directory": PDFSearchDirectoryDescription,
	"pdf_server_info":      PDFServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all described tools in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
