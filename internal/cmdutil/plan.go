package cmdutil

import (
	"fmt"
	"io"

	"github.com/opmodel/apimpub/internal/artifact"
	"github.com/opmodel/apimpub/internal/output"
	"github.com/opmodel/apimpub/internal/publish"
)

// PlanView is the rendered form of a plan. Kinds without work are left out.
type PlanView struct {
	Mode    string     `json:"mode" yaml:"mode"`
	Commit  string     `json:"commit,omitempty" yaml:"commit,omitempty"`
	Digest  string     `json:"digest" yaml:"digest"`
	Deletes []KindView `json:"deletes" yaml:"deletes"`
	Puts    []KindView `json:"puts" yaml:"puts"`
}

// KindView is the work of one kind in one phase.
type KindView struct {
	Kind       string     `json:"kind" yaml:"kind"`
	Names      []string   `json:"names,omitempty" yaml:"names,omitempty"`
	Overlaid   []string   `json:"overlaid,omitempty" yaml:"overlaid,omitempty"`
	Skipped    []SkipView `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	LinkScopes []string   `json:"linkScopes,omitempty" yaml:"linkScopes,omitempty"`
}

// SkipView is one artifact refused by a guard.
type SkipView struct {
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason" yaml:"reason"`
}

// NewPlanView converts plan for rendering.
func NewPlanView(plan *publish.Plan) PlanView {
	view := PlanView{
		Mode:    string(plan.Mode),
		Commit:  plan.Commit,
		Digest:  plan.Digest(),
		Deletes: []KindView{},
		Puts:    []KindView{},
	}

	for _, kp := range plan.Deletes {
		if len(kp.Deletes) == 0 {
			continue
		}
		view.Deletes = append(view.Deletes, KindView{Kind: string(kp.Kind()), Names: namesOf(kp.Deletes)})
	}

	for _, kp := range plan.Puts {
		if kp.Empty() {
			continue
		}
		kv := KindView{Kind: string(kp.Kind()), LinkScopes: namesOf(kp.LinkScopes)}
		for _, a := range kp.Puts {
			kv.Names = append(kv.Names, a.Names.String())
			if a.Overlaid {
				kv.Overlaid = append(kv.Overlaid, a.Names.String())
			}
		}
		for _, s := range kp.Skipped {
			kv.Skipped = append(kv.Skipped, SkipView{Name: s.Names.String(), Reason: s.Reason})
		}
		view.Puts = append(view.Puts, kv)
	}

	return view
}

func namesOf(all []artifact.Names) []string {
	if len(all) == 0 {
		return nil
	}
	out := make([]string, 0, len(all))
	for _, n := range all {
		out = append(out, n.String())
	}
	return out
}

// Len counts the planned calls and skips of the view.
func (v PlanView) Len() int {
	n := 0
	for _, k := range v.Deletes {
		n += len(k.Names)
	}
	for _, k := range v.Puts {
		n += len(k.Names) + len(k.Skipped) + len(k.LinkScopes)
	}
	return n
}

// RenderPlan writes plan to w in format.
func RenderPlan(w io.Writer, plan *publish.Plan, format output.Format) error {
	view := NewPlanView(plan)
	if format != output.FormatTable {
		return output.WriteStructured(w, format, view)
	}

	if view.Len() == 0 {
		_, err := fmt.Fprintln(w, "No changes.")
		return err
	}

	tbl := output.NewTable("PHASE", "KIND", "NAME", "STATUS").WithStatusColumn(3)
	for _, k := range view.Deletes {
		for _, name := range k.Names {
			tbl.Row(string(publish.PhaseDelete), k.Kind, name, output.StatusPlannedDelete)
		}
	}
	for _, k := range view.Puts {
		for _, name := range k.Names {
			tbl.Row(string(publish.PhasePut), k.Kind, name, output.StatusPlanned)
		}
		for _, scope := range k.LinkScopes {
			tbl.Row(string(publish.PhasePut), k.Kind, scope+"/*", "reconcile")
		}
		for _, s := range k.Skipped {
			tbl.Row(string(publish.PhasePut), k.Kind, s.Name, output.StatusSkipped+": "+s.Reason)
		}
	}
	_, err := fmt.Fprintln(w, tbl.String())
	return err
}

// RenderOverlayDiffs writes, for every overlaid artifact of plan, the
// difference between the file document and the document that is sent.
// Overlay-only artifacts are diffed against an empty document.
func RenderOverlayDiffs(w io.Writer, plan *publish.Plan) error {
	for _, kp := range plan.Puts {
		for _, a := range kp.Puts {
			if !a.Overlaid {
				continue
			}
			from := a.FileDocument
			fromName := a.Path
			if from == nil {
				from = map[string]any{}
				fromName = "(overlay only)"
			}

			diff, err := output.DiffDocuments(fromName, from, "overlay", a.Document)
			if err != nil {
				return fmt.Errorf("diffing %s %s: %w", a.Kind, a.Names, err)
			}
			if diff == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s\n%s\n", output.FormatResourceLine(string(a.Kind), a.Names.String(), "overlaid"), diff); err != nil {
				return err
			}
		}
	}
	return nil
}
