package pdf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/mcp-pdf-minibook/internal/pdftest"
)

func TestValidator_ValidateFile(t *testing.T) {
	validator := NewValidator(1024*1024, 8)
	dir := t.TempDir()

	eight := pdftest.WriteFile(t, dir, "eight.pdf", pdftest.MiniBookSource())
	seven := pdftest.WriteFile(t, dir, "seven.pdf", pdftest.Build("seven", pdftest.A4(7)))
	garbage := pdftest.WriteFile(t, dir, "garbage.pdf", []byte("this is not a pdf"))
	empty := pdftest.WriteFile(t, dir, "empty.pdf", nil)
	text := pdftest.WriteFile(t, dir, "notes.txt", []byte("notes"))
	large := pdftest.WriteFile(t, dir, "large.pdf", make([]byte, 2*1024*1024))

	tests := []struct {
		name        string
		path        string
		expectValid bool
		expectReady bool
		expectPages int
		msgContains string
	}{
		{name: "empty path", path: "", msgContains: "empty"},
		{name: "non-existent file", path: filepath.Join(dir, "missing.pdf"), msgContains: "does not exist"},
		{name: "directory", path: dir, msgContains: "directory"},
		{name: "wrong extension", path: text, msgContains: "not a PDF"},
		{name: "empty file", path: empty, msgContains: "empty"},
		{name: "too large", path: large, msgContains: "too large"},
		{name: "garbage", path: garbage, msgContains: "invalid PDF"},
		{name: "seven pages", path: seven, expectValid: true, expectPages: 7, msgContains: "exactly 8"},
		{name: "eight pages", path: eight, expectValid: true, expectReady: true, expectPages: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.ValidateFile(PDFValidateFileRequest{Path: tt.path})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Valid != tt.expectValid {
				t.Errorf("expected Valid=%v but got %v (%s)", tt.expectValid, result.Valid, result.Message)
			}
			if result.MinibookReady != tt.expectReady {
				t.Errorf("expected MinibookReady=%v but got %v", tt.expectReady, result.MinibookReady)
			}
			if result.Pages != tt.expectPages {
				t.Errorf("expected %d pages but got %d", tt.expectPages, result.Pages)
			}
			if tt.msgContains != "" && !strings.Contains(result.Message, tt.msgContains) {
				t.Errorf("expected message containing %q, got %q", tt.msgContains, result.Message)
			}
		})
	}
}

func TestValidator_IsValidPDF(t *testing.T) {
	validator := NewValidator(1024*1024, 8)
	dir := t.TempDir()

	if validator.IsValidPDF(filepath.Join(dir, "missing.pdf")) {
		t.Error("missing file reported as valid")
	}

	path := pdftest.WriteFile(t, dir, "book.pdf", pdftest.MiniBookSource())
	if !validator.IsValidPDF(path) {
		t.Error("generated document reported as invalid")
	}
}

func TestValidator_ValidateBytes(t *testing.T) {
	validator := NewValidator(64, 8)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrInvalidDocument},
		{"no header", []byte("hello world"), ErrInvalidDocument},
		{"header", []byte("%PDF-1.4\n"), nil},
		{"header after junk", []byte("\x00\x00%PDF-1.7\n"), nil},
		{"too large", append([]byte("%PDF-1.4\n"), make([]byte, 64)...), ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateBytes(tt.data)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateBytes() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateBytes() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_ValidateFileInfo(t *testing.T) {
	validator := NewValidator(10, 0)
	dir := t.TempDir()

	small := pdftest.WriteFile(t, dir, "small.PDF", []byte("12345"))
	info, err := os.Stat(small)
	if err != nil {
		t.Fatal(err)
	}
	if err := validator.ValidateFileInfo(small, info); err != nil {
		t.Errorf("upper-case extension rejected: %v", err)
	}

	if !validator.Ready(3) {
		t.Error("requiredPages 0 should accept any page count")
	}
}
