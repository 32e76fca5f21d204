package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// AcceptedExtensions are the document types the service is known to handle.
// They are advisory: other files may still be submitted.
var AcceptedExtensions = []string{".pdf", ".docx", ".txt"}

// File is a document chosen for analysis
type File struct {
	Name    string
	Content []byte
}

// Size returns the content length in bytes
func (f File) Size() int {
	return len(f.Content)
}

// Extension returns the lower-cased file extension
func (f File) Extension() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Advised reports whether the file has one of the accepted extensions
func (f File) Advised() bool {
	return slices.Contains(AcceptedExtensions, f.Extension())
}

// OpenFile reads a document from disk
func OpenFile(path string) (File, error) {
	if strings.TrimSpace(path) == "" {
		return File{}, fmt.Errorf("file path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	content, err := os.ReadFile(path) // #nosec G304 - user selected document
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return File{Name: filepath.Base(path), Content: content}, nil
}
