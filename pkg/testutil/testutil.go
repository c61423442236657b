package testutil

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// CreateFile writes content to dir/name, creating parent directories on
// the way, and returns the absolute path.
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("cannot create parents of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("cannot write %s: %v", path, err)
	}
	return path
}

// CreateDir makes parent/name (and any missing parents) and returns it.
func CreateDir(t *testing.T, parent, name string) string {
	t.Helper()

	path := filepath.Join(parent, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("cannot create directory %s: %v", path, err)
	}
	return path
}

// WriteScript writes an executable shell script into dir and returns its
// path. Tests use it to stand in for external tools such as mpy-cross.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("cannot write script %s: %v", path, err)
	}
	return path
}

// FileExists reports whether path names a regular file.
func FileExists(t *testing.T, path string) bool {
	t.Helper()

	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ReadFile returns the content of path, failing the test when unreadable.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read %s: %v", path, err)
	}
	return string(content)
}

// AssertFileContent fails the test unless path holds exactly expected.
func AssertFileContent(t *testing.T, path, expected string) {
	t.Helper()

	if !FileExists(t, path) {
		t.Fatalf("expected file %s to exist", path)
	}
	if actual := ReadFile(t, path); actual != expected {
		t.Errorf("content of %s:\n  got  %q\n  want %q", path, actual, expected)
	}
}

// AssertNoFile fails the test when path exists in any form.
func AssertNoFile(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("%s should not exist", path)
	}
}

// ListFiles returns the slash-separated relative paths of every regular
// file under root. WalkDir visits entries in lexical order, so the result
// is already sorted.
func ListFiles(t *testing.T, root string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("cannot walk %s: %v", root, err)
	}
	return files
}

// Checksum returns the lowercase hex SHA256 of content. The package index
// addresses file content by this digest, so tests use it to predict blob
// URLs.
func Checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", sum)
}

// SkipOnWindows skips tests that rely on shell scripts or POSIX paths.
func SkipOnWindows(t *testing.T) {
	t.Helper()

	if os.PathSeparator == '\\' {
		t.Skip("Test not supported on Windows")
	}
}
