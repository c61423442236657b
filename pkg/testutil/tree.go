package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/picoforge/picoforge/pkg/project"
)

// FileTree represents a directory structure for testing. String values are
// file contents; nested FileTree values are subdirectories.
type FileTree map[string]interface{}

// WriteFileTree recursively materializes a file tree under basePath.
func WriteFileTree(t *testing.T, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			// It's a file
			if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
				t.Fatalf("Failed to create directory for %s: %v", fullPath, err)
			}
			if err := os.WriteFile(fullPath, []byte(v), 0644); err != nil {
				t.Fatalf("Failed to write file %s: %v", fullPath, err)
			}
		case FileTree:
			// It's a directory
			if err := os.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", fullPath, err)
			}
			WriteFileTree(t, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

// ProjectTree creates a marked project root named name under a temp
// directory, materializes tree inside it, and returns the root path.
// The directory is cleaned up when the test completes.
func ProjectTree(t *testing.T, name string, tree FileTree) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatalf("Failed to create project root %s: %v", root, err)
	}

	CreateFile(t, root, project.MarkerFile, "")
	WriteFileTree(t, root, tree)

	return root
}
