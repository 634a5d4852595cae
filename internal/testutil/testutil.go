// Package testutil provides test helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/opmodel/apimpub/internal/artifact"
)

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// TreeRoot is the root of trees built by MemTree.
const TreeRoot = "/artifacts"

// MemTree builds an in-memory artifact tree rooted at TreeRoot. Keys are
// slash-separated paths relative to the root.
func MemTree(t *testing.T, files map[string]string) artifact.Tree {
	t.Helper()
	fs := memfs.New()
	for name, content := range files {
		if err := util.WriteFile(fs, "/"+name, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return artifact.Tree{Root: TreeRoot, FS: fs}
}

// TreePath returns the absolute path of a file in a MemTree.
func TreePath(parts ...string) string {
	return filepath.Join(append([]string{TreeRoot}, parts...)...)
}
