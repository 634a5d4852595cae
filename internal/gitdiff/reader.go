package gitdiff

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// CommitReader reads artifact files as they are at one commit.
type CommitReader struct {
	// Root is the artifact directory inside the working tree.
	Root string

	// Commit is the revision files are read at.
	Commit string
}

// ReadFile returns the content of path at the reader's commit. Files absent
// from the commit yield an error matching fs.ErrNotExist.
func (r CommitReader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	rel, err := filepath.Rel(r.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("path %q is outside artifact directory %s", path, r.Root)
	}

	out, err := run(ctx, r.Root, "show", r.Commit+":./"+filepath.ToSlash(rel))
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && missingPath(cmdErr.Stderr) {
			return nil, fmt.Errorf("reading %s at %s: %w", rel, r.Commit, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("reading %s at %s: %w", rel, r.Commit, err)
	}
	return out, nil
}

func missingPath(stderr string) bool {
	return strings.Contains(stderr, "does not exist") || strings.Contains(stderr, "exists on disk, but not in")
}
