// Package gitdiff narrows a publish run to the files touched by one commit.
package gitdiff

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	oerrors "github.com/opmodel/apimpub/internal/errors"
)

// ChangeKind classifies a changed path.
type ChangeKind string

// Change kinds, keyed by git's name-status letters.
const (
	Added       ChangeKind = "Added"
	Copied      ChangeKind = "Copied"
	Deleted     ChangeKind = "Deleted"
	Modified    ChangeKind = "Modified"
	Renamed     ChangeKind = "Renamed"
	TypeChanged ChangeKind = "TypeChanged"
	Unmerged    ChangeKind = "Unmerged"
	Unknown     ChangeKind = "Unknown"
	Broken      ChangeKind = "Broken"
)

var statusLetters = map[byte]ChangeKind{
	'A': Added,
	'C': Copied,
	'D': Deleted,
	'M': Modified,
	'R': Renamed,
	'T': TypeChanged,
	'U': Unmerged,
	'X': Unknown,
	'B': Broken,
}

// Result maps change kinds to absolute paths in diff output order.
type Result struct {
	Changes map[ChangeKind][]string

	// RenamedFrom holds the source paths of renames. They no longer exist
	// after the commit.
	RenamedFrom []string
}

// Paths returns the paths classified as kind.
func (r Result) Paths(kind ChangeKind) []string {
	return r.Changes[kind]
}

// DeletedFiles returns deleted paths and rename sources, sorted.
func (r Result) DeletedFiles() []string {
	s := sets.New(r.Changes[Deleted]...)
	s.Insert(r.RenamedFrom...)
	return sets.List(s)
}

// ChangedFiles returns every path that exists after the commit, sorted.
func (r Result) ChangedFiles() []string {
	s := sets.New[string]()
	for kind, paths := range r.Changes {
		if kind == Deleted {
			continue
		}
		s.Insert(paths...)
	}
	return sets.List(s)
}

// Len returns the number of classified lines.
func (r Result) Len() int {
	n := 0
	for _, paths := range r.Changes {
		n += len(paths)
	}
	return n
}

// Diff lists the files changed by commit relative to its first parent,
// restricted to root. Any git failure is returned; a commit without a
// parent fails too. An unknown commit matches errors.ErrNotFound.
func Diff(ctx context.Context, commit, root string) (Result, error) {
	stdout, err := run(ctx, root, "diff-tree", "--no-commit-id", "--name-status", "--relative", "-r", commit+"^", commit)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && unknownRevision(cmdErr.Stderr) {
			return Result{}, oerrors.NewNotFoundError(
				fmt.Sprintf("commit %s or its parent not found: %s", commit, cmdErr.Stderr),
				root,
				"check --commit; shallow clones need the parent commit fetched",
			)
		}
		return Result{}, fmt.Errorf("computing changes of commit %s in %s: %w", commit, root, err)
	}
	return Parse(bytes.NewReader(stdout), root)
}

// Parse classifies name-status output. Lines with an unrecognized status are
// skipped; paths are joined onto root.
func Parse(r io.Reader, root string) (Result, error) {
	res := Result{Changes: make(map[ChangeKind][]string)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		kind, ok := statusLetters[line[0]]
		if !ok {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		paths := make([]string, 0, len(fields)-1)
		for _, f := range fields[1:] {
			paths = append(paths, filepath.Join(root, filepath.FromSlash(unquote(f))))
		}

		switch {
		case (kind == Renamed || kind == Copied) && len(paths) == 2:
			if kind == Renamed {
				res.RenamedFrom = append(res.RenamedFrom, paths[0])
			}
			res.Changes[kind] = append(res.Changes[kind], paths[1])
		default:
			res.Changes[kind] = append(res.Changes[kind], paths[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("reading diff output: %w", err)
	}
	return res, nil
}

// unquote decodes git's C-style quoting of unusual paths.
func unquote(p string) string {
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		if s, err := strconv.Unquote(p); err == nil {
			return s
		}
	}
	return p
}

// run executes git in dir and returns stdout. Failures carry git's stderr.
func run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("git %s: %w", args[0], err)
		}
		return nil, &CommandError{Args: args, Stderr: msg, Err: err}
	}
	return stdout.Bytes(), nil
}

func unknownRevision(stderr string) bool {
	for _, s := range []string{"unknown revision", "bad revision", "bad object", "invalid object name"} {
		if strings.Contains(stderr, s) {
			return true
		}
	}
	return false
}

// CommandError is a failed git invocation.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.Args, " "), e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
