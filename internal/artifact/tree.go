package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Tree is an artifact directory backed by a billy filesystem rooted at Root.
// Paths handed out and accepted by a Tree are absolute OS paths under Root.
type Tree struct {
	// Root is the absolute, cleaned artifact directory.
	Root string

	// FS is rooted at Root.
	FS billy.Filesystem
}

// NewTree opens the artifact directory at dir on the local filesystem.
func NewTree(dir string) (Tree, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Tree{}, fmt.Errorf("resolving artifact directory %q: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Tree{}, fmt.Errorf("opening artifact directory: %w", err)
	}
	if !info.IsDir() {
		return Tree{}, fmt.Errorf("artifact path %q is not a directory", abs)
	}

	return Tree{Root: abs, FS: osfs.New(abs)}, nil
}

// Files enumerates every regular file below the root, sorted.
func (t Tree) Files() ([]string, error) {
	var files []string

	err := util.Walk(t.FS, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		files = append(files, t.abs(path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing artifact files under %s: %w", t.Root, err)
	}

	sort.Strings(files)
	return files, nil
}

// ReadFile reads a file below the root. Missing files yield an error
// matching fs.ErrNotExist.
func (t Tree) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := t.rel(path)
	if err != nil {
		return nil, err
	}
	return util.ReadFile(t.FS, rel)
}

// abs turns a slash-separated filesystem path into an OS path under Root.
func (t Tree) abs(fsPath string) string {
	return filepath.Join(t.Root, filepath.FromSlash(fsPath))
}

// rel turns an OS path under Root into an absolute slash-separated
// filesystem path.
func (t Tree) rel(path string) (string, error) {
	rel, err := filepath.Rel(t.Root, path)
	if err != nil {
		return "", fmt.Errorf("path %q is outside artifact directory %s: %w", path, t.Root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside artifact directory %s", path, t.Root)
	}
	return "/" + filepath.ToSlash(rel), nil
}
