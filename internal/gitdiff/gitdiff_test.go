package gitdiff

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/apimpub/internal/errors"
)

func TestParse(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "repo")

	tests := []struct {
		name        string
		input       string
		want        map[ChangeKind][]string
		renamedFrom []string
	}{
		{
			name:  "delete",
			input: "D\tfoo/bar.json\n",
			want:  map[ChangeKind][]string{Deleted: {filepath.Join(root, "foo", "bar.json")}},
		},
		{
			name:  "unrecognized letter is dropped",
			input: "Z\tfoo/bar.json\nM\tbackends/b1/backendInformation.json\n",
			want:  map[ChangeKind][]string{Modified: {filepath.Join(root, "backends", "b1", "backendInformation.json")}},
		},
		{
			name:        "rename carries source and destination",
			input:       "R100\tbackends/old/backendInformation.json\tbackends/new/backendInformation.json\n",
			want:        map[ChangeKind][]string{Renamed: {filepath.Join(root, "backends", "new", "backendInformation.json")}},
			renamedFrom: []string{filepath.Join(root, "backends", "old", "backendInformation.json")},
		},
		{
			name:  "copy keeps source",
			input: "C75\ta.json\tb.json\n",
			want:  map[ChangeKind][]string{Copied: {filepath.Join(root, "b.json")}},
		},
		{
			name:  "quoted path",
			input: "A\t\"named values/caf\\303\\251/namedValueInformation.json\"\n",
			want:  map[ChangeKind][]string{Added: {filepath.Join(root, "named values", "café", "namedValueInformation.json")}},
		},
		{
			name:  "all letters",
			input: "A\ta\nC\tc\nD\td\nM\tm\nR\tr\nT\tt\nU\tu\nX\tx\nB\tb\n",
			want: map[ChangeKind][]string{
				Added: {filepath.Join(root, "a")}, Copied: {filepath.Join(root, "c")},
				Deleted: {filepath.Join(root, "d")}, Modified: {filepath.Join(root, "m")},
				Renamed: {filepath.Join(root, "r")}, TypeChanged: {filepath.Join(root, "t")},
				Unmerged: {filepath.Join(root, "u")}, Unknown: {filepath.Join(root, "x")},
				Broken: {filepath.Join(root, "b")},
			},
		},
		{
			name:  "blank and malformed lines",
			input: "\nM\n\r\nM\tok\r\n",
			want:  map[ChangeKind][]string{Modified: {filepath.Join(root, "ok")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(strings.NewReader(tt.input), root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Changes)
			assert.Equal(t, tt.renamedFrom, res.RenamedFrom)
		})
	}
}

func TestResult_DeletedAndChangedFiles(t *testing.T) {
	res, err := Parse(strings.NewReader(
		"D\tz.json\nR100\told.json\tnew.json\nM\tm.json\nA\ta.json\n"), "/r")
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join("/r", "old.json"), filepath.Join("/r", "z.json")}, res.DeletedFiles())
	assert.Equal(t, []string{filepath.Join("/r", "a.json"), filepath.Join("/r", "m.json"), filepath.Join("/r", "new.json")}, res.ChangedFiles())
	assert.Equal(t, 4, res.Len())
	assert.Len(t, res.Paths(Modified), 1)
}

// gitRepo creates a repository with two commits and returns its directory
// and the second commit id.
func gitRepo(t *testing.T) (string, string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	git := func(args ...string) string {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
		return strings.TrimSpace(string(out))
	}
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	git("init", "-q")
	write("backends/b1/backendInformation.json", `{"properties":{"url":"http://a"}}`)
	write("loggers/l1/loggerInformation.json", `{}`)
	git("add", "-A")
	git("commit", "-q", "-m", "first")

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "backends")))
	write("loggers/l1/loggerInformation.json", `{"properties":{}}`)
	write("tags/t1/tagInformation.json", `{}`)
	git("add", "-A")
	git("commit", "-q", "-m", "second")

	return dir, git("rev-parse", "HEAD")
}

func TestDiff(t *testing.T) {
	dir, commit := gitRepo(t)

	res, err := Diff(context.Background(), commit, dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "backends", "b1", "backendInformation.json")}, res.DeletedFiles())
	assert.Equal(t, []string{
		filepath.Join(dir, "loggers", "l1", "loggerInformation.json"),
		filepath.Join(dir, "tags", "t1", "tagInformation.json"),
	}, res.ChangedFiles())
}

func TestDiff_Failure(t *testing.T) {
	dir, _ := gitRepo(t)

	t.Run("unknown commit", func(t *testing.T) {
		_, err := Diff(context.Background(), "no-such-commit", dir)
		require.Error(t, err)
		assert.ErrorIs(t, err, oerrors.ErrNotFound)
		assert.Contains(t, err.Error(), "no-such-commit")
		assert.Contains(t, err.Error(), dir)
		assert.Contains(t, err.Error(), "unknown revision")
	})

	t.Run("not a repository", func(t *testing.T) {
		outside := t.TempDir()
		_, err := Diff(context.Background(), "HEAD", outside)
		require.Error(t, err)
		assert.NotErrorIs(t, err, oerrors.ErrNotFound)
		assert.Contains(t, err.Error(), outside)
	})
}

func TestCommitReader(t *testing.T) {
	dir, commit := gitRepo(t)
	r := CommitReader{Root: dir, Commit: commit}

	data, err := r.ReadFile(context.Background(), filepath.Join(dir, "loggers", "l1", "loggerInformation.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"properties":{}}`, string(data))

	prev := CommitReader{Root: dir, Commit: commit + "^"}
	data, err = prev.ReadFile(context.Background(), filepath.Join(dir, "backends", "b1", "backendInformation.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"properties":{"url":"http://a"}}`, string(data))

	_, err = r.ReadFile(context.Background(), filepath.Join(dir, "backends", "b1", "backendInformation.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = r.ReadFile(context.Background(), filepath.Join(dir, "..", "elsewhere.json"))
	assert.Error(t, err)
}
