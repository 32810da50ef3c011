package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrInvalidDocument marks input that is not a readable PDF
	ErrInvalidDocument = errors.New("invalid PDF document")
	// ErrFileTooLarge marks input above the configured size limit
	ErrFileTooLarge = errors.New("file too large")
)

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize   int64
	requiredPages int
}

// NewValidator creates a validator. requiredPages is the page count a
// document needs to be imposed; 0 skips the readiness check.
func NewValidator(maxFileSize int64, requiredPages int) *Validator {
	return &Validator{
		maxFileSize:   maxFileSize,
		requiredPages: requiredPages,
	}
}

// ValidateFile checks that the file is a readable PDF and reports whether it
// has the page count the layout needs.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	pages, err := v.validatePDFFile(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	result.Valid = true
	result.Pages = pages
	result.MinibookReady = v.Ready(pages)
	if !result.MinibookReady {
		result.Message = fmt.Sprintf("document has %d pages, imposition needs exactly %d", pages, v.requiredPages)
	}
	return result, nil
}

// Ready reports whether a document with the given page count can be imposed
func (v *Validator) Ready(pages int) bool {
	return v.requiredPages == 0 || pages == v.requiredPages
}

// validatePDFFile checks the file on disk and returns its page count
func (v *Validator) validatePDFFile(filePath string) (int, error) {
	if filePath == "" {
		return 0, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return 0, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return 0, fmt.Errorf("cannot access file: %w", err)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return 0, err
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("invalid PDF file: %w", err)
	}
	defer f.Close()

	return r.NumPage(), nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	_, err := v.validatePDFFile(filePath)
	return err == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !isPDFName(filePath) {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	return v.checkSize(fileInfo.Size())
}

// ValidateBytes checks an in-memory upload before it is parsed
func (v *Validator) ValidateBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: document is empty", ErrInvalidDocument)
	}
	if err := v.checkSize(int64(len(data))); err != nil {
		return err
	}
	// the header may be preceded by junk, but must appear in the first 1KB
	if !bytes.Contains(data[:min(len(data), 1024)], []byte("%PDF-")) {
		return fmt.Errorf("%w: document has no PDF header", ErrInvalidDocument)
	}
	return nil
}

func (v *Validator) checkSize(size int64) error {
	if v.maxFileSize > 0 && size > v.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, size, v.maxFileSize)
	}
	return nil
}

func isPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
