package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/ohler55/ojg/jp"

	"github.com/opmodel/apimpub/internal/artifact"
	oerrors "github.com/opmodel/apimpub/internal/errors"
	"github.com/opmodel/apimpub/internal/merge"
	"github.com/opmodel/apimpub/internal/output"
	"github.com/opmodel/apimpub/internal/overlay"
)

// Source is the input of one kind computation.
type Source struct {
	// Root is the artifact directory.
	Root string

	// Files are the candidate files, absolute and below Root.
	Files []string

	// Reader reads the candidate files.
	Reader artifact.Reader

	// Overlay is the configuration overlay document. May be nil.
	Overlay map[string]any

	// OverlayOnly lets kinds that allow it synthesize artifacts from overlay
	// entries without a file. Set for full-tree runs only.
	OverlayOnly bool
}

// Skipped is an artifact a guard refused to put.
type Skipped struct {
	Names  artifact.Names
	Reason string
}

// Computed is the put side of one kind.
type Computed struct {
	// Puts are the artifacts to put, in discovery order.
	Puts []artifact.Artifact

	// Skipped are artifacts refused by the kind's guard.
	Skipped []Skipped

	// LinkScopes are the parents of link kinds whose remote links are
	// reconciled against Puts.
	LinkScopes []artifact.Names
}

// ComputePuts joins the located artifacts of d with their overlay entries.
// File-only artifacts are used as read; overlay-only entries produce
// artifacts only for kinds allowing it when src.OverlayOnly is set. Sibling
// kinds are needed to strip nested overlay arrays from entries.
func ComputePuts(ctx context.Context, d artifact.Descriptor, src Source, kinds []artifact.Descriptor) (Computed, error) {
	var table *overlay.Table
	if d.HasOverlay() {
		table = overlay.ForKind(src.Overlay, d, overlayChildren(d, kinds)...)
	}

	var out Computed
	located := artifact.Locate(src.Files, src.Root, d, true)
	seen := make(map[string]bool, len(located))

	for _, loc := range located {
		if err := ctx.Err(); err != nil {
			return Computed{}, err
		}

		path := loc.InformationFile(d)
		data, err := src.Reader.ReadFile(ctx, path)
		if errors.Is(err, fs.ErrNotExist) {
			// Only an auxiliary file is present.
			output.Debug("no information file, skipping", "kind", d.Kind, "name", loc.Names.String(), "path", path)
			continue
		}
		if err != nil {
			return Computed{}, fmt.Errorf("reading %s: %w", path, err)
		}
		seen[loc.Names.Key()] = true

		if d.Shape == artifact.ShapeLink {
			names, err := linkNames(data)
			if err != nil {
				return Computed{}, invalidFile(path, err)
			}
			out.LinkScopes = append(out.LinkScopes, loc.Names)
			for _, name := range names {
				out.Puts = append(out.Puts, artifact.Artifact{
					Kind:     d.Kind,
					Names:    append(slices.Clone(loc.Names), name),
					Document: cloneBody(d.LinkBody),
					Path:     path,
				})
			}
			continue
		}

		var doc map[string]any
		switch d.Shape {
		case artifact.ShapePolicy:
			doc = policyDocument(string(data))
		default:
			doc, err = decodeObject(data)
			if err != nil {
				return Computed{}, invalidFile(path, err)
			}
		}

		if d.Decorate != nil {
			doc, err = d.Decorate(ctx, src.Reader, loc, doc)
			if err != nil {
				return Computed{}, fmt.Errorf("preparing %s %s: %w", d.Kind, loc.Names, err)
			}
		}

		a := artifact.Artifact{
			Kind:         d.Kind,
			Names:        loc.Names,
			Document:     doc,
			FileDocument: doc,
			Path:         path,
		}
		if table != nil {
			if body, ok := table.Get(loc.Names); ok {
				a.Document = merge.Merge(doc, body)
				a.Overlaid = true
			}
		}
		out.add(d, a)
	}

	if table != nil && d.AllowOverlayOnly && src.OverlayOnly {
		for _, names := range table.Names() {
			if seen[names.Key()] {
				continue
			}
			body, _ := table.Get(names)
			out.add(d, artifact.Artifact{
				Kind:     d.Kind,
				Names:    names,
				Document: merge.Merge(nil, body),
				Overlaid: true,
			})
		}
	}

	return out, nil
}

func (c *Computed) add(d artifact.Descriptor, a artifact.Artifact) {
	if a.Document == nil {
		a.Document = map[string]any{}
	}
	if d.Guard != nil {
		if reason := d.Guard(a); reason != "" {
			c.Skipped = append(c.Skipped, Skipped{Names: a.Names, Reason: reason})
			return
		}
	}
	c.Puts = append(c.Puts, a)
}

// ComputeDeletes returns the names of d's resources whose information files
// are among files. The overlay plays no part. For link kinds the names are
// the parents whose links are all removed.
func ComputeDeletes(d artifact.Descriptor, files []string, root string) []artifact.Names {
	located := artifact.Locate(files, root, d, false)
	names := make([]artifact.Names, 0, len(located))
	for _, loc := range located {
		names = append(names, loc.Names)
	}
	return names
}

func decodeObject(data []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	switch doc := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return doc, nil
	default:
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
}

var linkNamePath = jp.MustParseString("$[*].name")

// linkNames reads a link file: a JSON array of objects with a string name.
func linkNames(data []byte) ([]string, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	if _, ok := v.([]any); !ok {
		return nil, fmt.Errorf("expected a JSON array, got %T", v)
	}

	var names []string
	for _, n := range linkNamePath.Get(v) {
		if s, ok := n.(string); ok && s != "" && !slices.Contains(names, s) {
			names = append(names, s)
		}
	}
	return names, nil
}

func invalidFile(path string, err error) error {
	return oerrors.NewValidationError(err.Error(), path, "", "information files hold one JSON document")
}

func cloneBody(body map[string]any) map[string]any {
	return merge.Merge(map[string]any{}, body)
}
