// Package publish reconciles an artifact directory with an API-management
// service.
//
// Every resource kind is described by an artifact.Descriptor; one generic
// engine computes the puts and deletes of each kind and a Publisher runs the
// kinds in the order declared by pkg/weights. Deletes run in the exact reverse
// order, before any put. Inside a kind all calls run concurrently and the
// first failure aborts the run; completed calls are not rolled back.
package publish

import (
	"context"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/opmodel/apimpub/internal/artifact"
	"github.com/opmodel/apimpub/internal/gitdiff"
	"github.com/opmodel/apimpub/internal/output"
	"github.com/opmodel/apimpub/internal/overlay"
	"github.com/opmodel/apimpub/internal/remote"
	"github.com/opmodel/apimpub/pkg/weights"
)

// Mode selects which files a run considers.
type Mode string

const (
	// ModeFull publishes the whole artifact directory.
	ModeFull Mode = "full"

	// ModeCommit publishes the files changed by one commit.
	ModeCommit Mode = "commit"
)

// Phase is one half of a run.
type Phase string

const (
	PhaseDelete Phase = "delete"
	PhasePut    Phase = "put"
)

// Input is everything a plan is computed from.
type Input struct {
	Mode Mode

	// Root is the artifact directory.
	Root string

	// PutFiles are the files considered for puts.
	PutFiles []string

	// DeleteFiles are the files whose resources are deleted (commit mode).
	DeleteFiles []string

	// Reader reads PutFiles.
	Reader artifact.Reader

	// Overlay is the configuration overlay document.
	Overlay map[string]any

	// Commit is the published commit in commit mode.
	Commit string
}

// FullInput publishes every file of tree.
func FullInput(tree artifact.Tree, overlayDoc map[string]any) (Input, error) {
	files, err := tree.Files()
	if err != nil {
		return Input{}, err
	}
	return Input{
		Mode:     ModeFull,
		Root:     tree.Root,
		PutFiles: files,
		Reader:   tree,
		Overlay:  overlayDoc,
	}, nil
}

// CommitInput publishes the files commit changed below tree's root, read as
// they are at the commit.
func CommitInput(ctx context.Context, tree artifact.Tree, commit string, overlayDoc map[string]any) (Input, error) {
	diff, err := gitdiff.Diff(ctx, commit, tree.Root)
	if err != nil {
		return Input{}, err
	}
	output.Debug("commit changes", "commit", commit, "files", diff.Len())

	return Input{
		Mode:        ModeCommit,
		Root:        tree.Root,
		PutFiles:    diff.ChangedFiles(),
		DeleteFiles: diff.DeletedFiles(),
		Reader:      gitdiff.CommitReader{Root: tree.Root, Commit: commit},
		Overlay:     overlayDoc,
		Commit:      commit,
	}, nil
}

// KindPlan is the work of one kind in one phase.
type KindPlan struct {
	Descriptor artifact.Descriptor

	Puts       []artifact.Artifact
	Skipped    []Skipped
	LinkScopes []artifact.Names

	Deletes []artifact.Names
}

// Kind returns the planned kind.
func (kp KindPlan) Kind() artifact.Kind {
	return kp.Descriptor.Kind
}

// Empty reports whether the kind has nothing to do.
func (kp KindPlan) Empty() bool {
	return len(kp.Puts) == 0 && len(kp.Skipped) == 0 && len(kp.LinkScopes) == 0 && len(kp.Deletes) == 0
}

// Plan is the computed work of a run. Deletes are in delete order and Puts
// in put order; every kind appears in both.
type Plan struct {
	Mode    Mode
	Commit  string
	Deletes []KindPlan
	Puts    []KindPlan
}

// Options configures a Publisher.
type Options struct {
	// Prune deletes remote resources missing from the tree in full mode.
	Prune bool

	// DryRun logs calls instead of sending them.
	DryRun bool

	// Concurrency limits parallel calls inside one kind. <= 0 is unlimited.
	Concurrency int

	// ListProgress wraps remote listings done while planning a prune, e.g.
	// to show a spinner. Optional.
	ListProgress func(title string, fn func() error) error
}

// Publisher plans and applies runs against one gateway.
type Publisher struct {
	gateway remote.Gateway
	kinds   []artifact.Descriptor
	opts    Options
}

// New creates a Publisher over every known kind. gw may be nil when only
// plans without pruning are computed.
func New(gw remote.Gateway, opts Options) *Publisher {
	return &Publisher{gateway: gw, kinds: Kinds(), opts: opts}
}

// Plan computes the deletes and puts of a run.
func (p *Publisher) Plan(ctx context.Context, in Input) (*Plan, error) {
	plan := &Plan{Mode: in.Mode, Commit: in.Commit}

	deleteOrder := append([]artifact.Descriptor(nil), p.kinds...)
	weights.SortByKindReverse(deleteOrder, func(d artifact.Descriptor) string { return string(d.Kind) })

	for _, d := range deleteOrder {
		kp := KindPlan{Descriptor: d}
		switch {
		case in.Mode == ModeCommit:
			kp.Deletes = ComputeDeletes(d, in.DeleteFiles, in.Root)
		case p.opts.Prune && d.Prunable:
			stale, err := p.stale(ctx, d, in)
			if err != nil {
				return nil, err
			}
			kp.Deletes = stale
		}
		plan.Deletes = append(plan.Deletes, kp)
	}

	src := Source{
		Root:        in.Root,
		Files:       in.PutFiles,
		Reader:      in.Reader,
		Overlay:     in.Overlay,
		OverlayOnly: in.Mode == ModeFull,
	}
	for _, d := range p.kinds {
		computed, err := ComputePuts(ctx, d, src, p.kinds)
		if err != nil {
			return nil, err
		}
		plan.Puts = append(plan.Puts, KindPlan{
			Descriptor: d,
			Puts:       computed.Puts,
			Skipped:    computed.Skipped,
			LinkScopes: computed.LinkScopes,
		})
	}

	return plan, nil
}

// stale lists d's remote collection and returns the names the tree no
// longer declares.
func (p *Publisher) stale(ctx context.Context, d artifact.Descriptor, in Input) ([]artifact.Names, error) {
	if p.gateway == nil {
		return nil, fmt.Errorf("pruning %s requires a gateway", d.Kind)
	}

	var remoteNames []string
	list := func() error {
		var err error
		remoteNames, err = listNames(ctx, p.gateway, d.Collection(nil))
		return err
	}
	var err error
	if p.opts.ListProgress != nil {
		err = p.opts.ListProgress(fmt.Sprintf("listing remote %s resources", d.Kind), list)
	} else {
		err = list()
	}
	if err != nil {
		return nil, fmt.Errorf("listing remote %s resources: %w", d.Kind, err)
	}

	desired := sets.New[string]()
	for _, names := range ComputeDeletes(d, in.PutFiles, in.Root) {
		desired.Insert(names.Last())
	}
	if d.AllowOverlayOnly && d.HasOverlay() {
		// Overlay-only entries are published in full mode, so they are not stale.
		for _, e := range overlayNames(in.Overlay, d) {
			desired.Insert(e)
		}
	}

	var stale []artifact.Names
	for _, name := range ComputeStale(remoteNames, desired) {
		if d.Stage != nil && d.Stage(artifact.Names{name}) > 0 {
			// Revisions go with the resource they revise.
			continue
		}
		stale = append(stale, artifact.Names{name})
	}
	return stale, nil
}

func overlayNames(doc map[string]any, d artifact.Descriptor) []string {
	var names []string
	for _, n := range overlay.ForKind(doc, d).Names() {
		names = append(names, n.Last())
	}
	return names
}

// ComputeStale returns the remote names absent from desired, in remote order.
func ComputeStale(remoteNames []string, desired sets.Set[string]) []string {
	stale := []string{}
	for _, name := range remoteNames {
		if !desired.Has(name) {
			stale = append(stale, name)
		}
	}
	return stale
}

// Result is the outcome of an applied plan.
type Result struct {
	Phases []PhaseResult
}

// PhaseResult lists the kinds of one phase in the order they ran.
type PhaseResult struct {
	Phase Phase
	Kinds []KindResult
}

// KindResult is the outcome of one kind.
type KindResult struct {
	Kind  artifact.Kind
	Stats Stats
}

// Totals sums the stats of every kind.
func (r *Result) Totals() Stats {
	var total Stats
	for _, ph := range r.Phases {
		for _, k := range ph.Kinds {
			total.add(k.Stats)
		}
	}
	return total
}

// Summary renders the totals on one line.
func (r *Result) Summary() string {
	t := r.Totals()
	parts := []string{
		fmt.Sprintf("%d put", t.Put),
		fmt.Sprintf("%d deleted", t.Deleted),
	}
	if t.Absent > 0 {
		parts = append(parts, fmt.Sprintf("%d already absent", t.Absent))
	}
	if t.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", t.Skipped))
	}
	return strings.Join(parts, ", ")
}

// Apply runs the delete phase, then the put phase. The first failing kind
// stops the run; the partial result is returned with the error.
func (p *Publisher) Apply(ctx context.Context, plan *Plan) (*Result, error) {
	syncer := NewSynchronizer(p.gateway, p.opts.Concurrency, p.opts.DryRun)
	res := &Result{}

	deletes := PhaseResult{Phase: PhaseDelete}
	for _, kp := range plan.Deletes {
		output.Debug("delete phase", "kind", kp.Kind(), "resources", len(kp.Deletes))
		stats, err := syncer.Delete(ctx, kp)
		deletes.Kinds = append(deletes.Kinds, KindResult{Kind: kp.Kind(), Stats: stats})
		if err != nil {
			res.Phases = append(res.Phases, deletes)
			return res, err
		}
	}
	res.Phases = append(res.Phases, deletes)

	puts := PhaseResult{Phase: PhasePut}
	for _, kp := range plan.Puts {
		output.Debug("put phase", "kind", kp.Kind(), "resources", len(kp.Puts))
		stats, err := syncer.Put(ctx, kp)
		puts.Kinds = append(puts.Kinds, KindResult{Kind: kp.Kind(), Stats: stats})
		if err != nil {
			res.Phases = append(res.Phases, puts)
			return res, err
		}
	}
	res.Phases = append(res.Phases, puts)

	return res, nil
}

// Run plans and applies in one go.
func (p *Publisher) Run(ctx context.Context, in Input) (*Result, error) {
	plan, err := p.Plan(ctx, in)
	if err != nil {
		return nil, err
	}
	return p.Apply(ctx, plan)
}
