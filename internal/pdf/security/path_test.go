package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathValidator(t *testing.T) {
	_, err := NewPathValidator("")
	assert.Error(t, err)

	v, err := NewPathValidator("/non/existent/path")
	require.NoError(t, err)
	assert.Equal(t, "/non/existent/path", v.GetConfiguredDirectory())

	// until the root exists every path is accepted
	assert.NoError(t, v.ValidatePath("/etc/passwd"))
}

func TestPathValidator_ValidatePath(t *testing.T) {
	root := t.TempDir()
	subDir := filepath.Join(root, "subdir")
	require.NoError(t, os.Mkdir(subDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "valid.pdf"), []byte("test"), 0o644))

	outside := t.TempDir()
	link := filepath.Join(root, "escape")
	require.NoError(t, os.Symlink(outside, link))

	v, err := NewPathValidator(root)
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{"empty path", "", true},
		{"root itself", root, false},
		{"file in root", filepath.Join(root, "valid.pdf"), false},
		{"missing output file", filepath.Join(subDir, "out_minibook.pdf"), false},
		{"missing nested output", filepath.Join(root, "new", "dir", "out.pdf"), false},
		{"outside directory", "/etc/passwd", true},
		{"dot-dot traversal", filepath.Join(root, "..", "other.pdf"), true},
		{"sibling with common prefix", root + "-evil/file.pdf", true},
		{"symlink escape", filepath.Join(link, "file.pdf"), true},
		{"null byte", filepath.Join(root, "a\x00.pdf"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePath(tt.path)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPathValidator_NormalizePath(t *testing.T) {
	root := t.TempDir()
	v, err := NewPathValidator(root)
	require.NoError(t, err)

	got, err := v.NormalizePath("book.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "book.pdf"), got)

	_, err = v.NormalizePath("../book.pdf")
	assert.Error(t, err)

	_, err = v.NormalizePath("")
	assert.Error(t, err)
}

func TestPathValidator_ValidateDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	v, err := NewPathValidator(root)
	require.NoError(t, err)

	assert.NoError(t, v.ValidateDirectory(root))
	assert.NoError(t, v.ValidateDirectory(filepath.Join(root, "later")))
	assert.Error(t, v.ValidateDirectory(file))
	assert.Error(t, v.ValidateDirectory(os.TempDir()))
}
