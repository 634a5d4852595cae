package cmdutil

import (
	"context"
	"errors"
	"io/fs"

	"github.com/opmodel/apimpub/internal/artifact"
	oerrors "github.com/opmodel/apimpub/internal/errors"
	"github.com/opmodel/apimpub/internal/output"
	"github.com/opmodel/apimpub/internal/overlay"
	"github.com/opmodel/apimpub/internal/publish"
	"github.com/opmodel/apimpub/internal/version"
)

// LoadInput opens the artifact directory and the overlay named by f and
// builds the full or commit input they select.
func LoadInput(ctx context.Context, f *SourceFlags) (publish.Input, error) {
	if err := f.Validate(); err != nil {
		return publish.Input{}, exitError(err)
	}

	tree, err := artifact.NewTree(f.Dir)
	if err != nil {
		return publish.Input{}, exitError(err)
	}

	doc, err := overlay.Load(f.Overlay)
	if err != nil {
		return publish.Input{}, exitError(err)
	}
	output.Debug("inputs loaded", "dir", tree.Root, "overlay", f.Overlay, "overlayKeys", len(doc))

	if f.Commit == "" {
		in, err := publish.FullInput(tree, doc)
		if err != nil {
			return publish.Input{}, exitError(err)
		}
		return in, nil
	}

	git := version.DetectGit()
	if git.Found && !git.Compatible {
		output.Warn("git binary version mismatch", "binary", git.Version, "message", git.Message)
	}

	in, err := publish.CommitInput(ctx, tree, f.Commit, doc)
	if err != nil {
		return publish.Input{}, exitError(err)
	}
	return in, nil
}

// exitError attaches an exit code to err. Missing files map to not found.
func exitError(err error) error {
	var exitErr *oerrors.ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	code := oerrors.ExitCodeFromError(err)
	if code == oerrors.ExitGeneralError && errors.Is(err, fs.ErrNotExist) {
		code = oerrors.ExitNotFound
	}
	return &oerrors.ExitError{Code: code, Err: err}
}
