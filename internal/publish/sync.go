package publish

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/opmodel/apimpub/internal/artifact"
	oerrors "github.com/opmodel/apimpub/internal/errors"
	"github.com/opmodel/apimpub/internal/output"
	"github.com/opmodel/apimpub/internal/remote"
)

// Stats counts the outcome of one kind.
type Stats struct {
	Put     int
	Deleted int
	Absent  int
	Skipped int
}

func (s *Stats) add(o Stats) {
	s.Put += o.Put
	s.Deleted += o.Deleted
	s.Absent += o.Absent
	s.Skipped += o.Skipped
}

type counters struct {
	put, deleted, absent, skipped atomic.Int64
}

func (c *counters) stats() Stats {
	return Stats{
		Put:     int(c.put.Load()),
		Deleted: int(c.deleted.Load()),
		Absent:  int(c.absent.Load()),
		Skipped: int(c.skipped.Load()),
	}
}

// Synchronizer sends one kind's puts and deletes to the gateway. Calls of one
// batch run concurrently; the first failure cancels the rest of the batch.
type Synchronizer struct {
	gateway     remote.Gateway
	concurrency int
	dryRun      bool
}

// NewSynchronizer creates a Synchronizer. concurrency <= 0 means unlimited.
// In dry-run mode calls are logged instead of sent.
func NewSynchronizer(gw remote.Gateway, concurrency int, dryRun bool) *Synchronizer {
	return &Synchronizer{gateway: gw, concurrency: concurrency, dryRun: dryRun}
}

func (s *Synchronizer) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	return g, gctx
}

// Put puts every artifact of kp, stage by stage, then reconciles link scopes.
func (s *Synchronizer) Put(ctx context.Context, kp KindPlan) (Stats, error) {
	d := kp.Descriptor
	kindLog := output.KindLogger(string(d.Kind))
	var c counters

	for _, sk := range kp.Skipped {
		kindLog.Warn(fmt.Sprintf("skipping %s: %s", sk.Names, sk.Reason))
		c.skipped.Add(1)
	}

	for _, batch := range stages(d, kp.Puts) {
		g, gctx := s.group(ctx)
		for _, a := range batch {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				uri := d.URI(a.Names)
				if s.dryRun {
					kindLog.Info(output.FormatResourceLine(string(d.Kind), a.Names.String(), output.StatusPlanned))
					c.put.Add(1)
					return nil
				}
				kindLog.Debug("putting", "name", a.Names.String(), "uri", uri)
				if err := s.gateway.Put(gctx, uri, a.Document); err != nil {
					kindLog.Error(output.FormatResourceLine(string(d.Kind), a.Names.String(), output.StatusFailed), "op", "put", "err", err)
					return fmt.Errorf("putting %s %s: %w", d.Kind, a.Names, err)
				}
				kindLog.Info(output.FormatResourceLine(string(d.Kind), a.Names.String(), output.StatusApplied))
				c.put.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return c.stats(), err
		}
	}

	if len(kp.LinkScopes) > 0 {
		desired := make(map[string]sets.Set[string], len(kp.LinkScopes))
		for _, scope := range kp.LinkScopes {
			desired[scope.Key()] = sets.New[string]()
		}
		for _, a := range kp.Puts {
			if set, ok := desired[a.Names.Scope().Key()]; ok {
				set.Insert(a.Names.Last())
			}
		}

		g, gctx := s.group(ctx)
		for _, scope := range kp.LinkScopes {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return s.pruneLinks(gctx, d, scope, desired[scope.Key()], &c)
			})
		}
		if err := g.Wait(); err != nil {
			return c.stats(), err
		}
	}

	return c.stats(), nil
}

// Delete deletes every resource named in kp. For link kinds every remote link
// under each named parent is deleted.
func (s *Synchronizer) Delete(ctx context.Context, kp KindPlan) (Stats, error) {
	d := kp.Descriptor
	var c counters

	g, gctx := s.group(ctx)
	for _, names := range kp.Deletes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if d.Shape == artifact.ShapeLink {
				return s.pruneLinks(gctx, d, names, nil, &c)
			}
			return s.delete(gctx, d, names, &c)
		})
	}
	err := g.Wait()
	return c.stats(), err
}

// pruneLinks deletes the remote links under scope that are not in keep.
func (s *Synchronizer) pruneLinks(ctx context.Context, d artifact.Descriptor, scope artifact.Names, keep sets.Set[string], c *counters) error {
	if s.gateway == nil {
		return nil
	}
	remoteNames, err := listNames(ctx, s.gateway, d.Collection(scope))
	if err != nil {
		return fmt.Errorf("listing %s of %s: %w", d.Kind, scope, err)
	}

	for _, name := range remoteNames {
		if keep.Has(name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.delete(ctx, d, append(slices.Clone(scope), name), c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synchronizer) delete(ctx context.Context, d artifact.Descriptor, names artifact.Names, c *counters) error {
	kindLog := output.KindLogger(string(d.Kind))
	uri := d.URI(names)

	if s.dryRun {
		kindLog.Info(output.FormatResourceLine(string(d.Kind), names.String(), output.StatusPlannedDelete))
		c.deleted.Add(1)
		return nil
	}

	kindLog.Debug("deleting", "name", names.String(), "uri", uri)
	err := s.gateway.Delete(ctx, uri)
	switch {
	case errors.Is(err, oerrors.ErrNotFound):
		kindLog.Info(output.FormatResourceLine(string(d.Kind), names.String(), output.StatusAbsent))
		c.absent.Add(1)
		return nil
	case err != nil:
		kindLog.Error(output.FormatResourceLine(string(d.Kind), names.String(), output.StatusFailed), "op", "delete", "err", err)
		return fmt.Errorf("deleting %s %s: %w", d.Kind, names, err)
	}
	kindLog.Info(output.FormatResourceLine(string(d.Kind), names.String(), output.StatusDeleted))
	c.deleted.Add(1)
	return nil
}

// listNames returns the names of a remote collection. A missing collection
// (its parent is gone) is empty.
func listNames(ctx context.Context, gw remote.Gateway, uri string) ([]string, error) {
	items, err := remote.Collect(gw.List(ctx, uri))
	if errors.Is(err, oerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		if name, ok := item["name"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// stages splits puts into sequential batches by the kind's Stage hook.
func stages(d artifact.Descriptor, puts []artifact.Artifact) [][]artifact.Artifact {
	if d.Stage == nil || len(puts) == 0 {
		return [][]artifact.Artifact{puts}
	}

	byStage := make(map[int][]artifact.Artifact)
	for _, a := range puts {
		n := d.Stage(a.Names)
		byStage[n] = append(byStage[n], a)
	}

	keys := make([]int, 0, len(byStage))
	for k := range byStage {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	batches := make([][]artifact.Artifact, 0, len(keys))
	for _, k := range keys {
		batches = append(batches, byStage[k])
	}
	return batches
}
