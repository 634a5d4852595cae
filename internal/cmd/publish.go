package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opmodel/apimpub/internal/cmdutil"
	"github.com/opmodel/apimpub/internal/output"
	"github.com/opmodel/apimpub/internal/publish"
	"github.com/opmodel/apimpub/internal/remote"
)

// NewPublishCmd creates the publish command.
func NewPublishCmd(gc *GlobalConfig) *cobra.Command {
	var (
		sf     cmdutil.SourceFlags
		svc    cmdutil.ServiceFlags
		tf     cmdutil.TuningFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the artifact directory to the service",
		Long: `Publish the artifact directory to the API-management service.

Resources are deleted first, in reverse dependency order, then put in
dependency order (named values and backends before the APIs and products
using them). Inside one kind all calls run in parallel; the first failure
stops the run.

Without --commit every resource in the directory is put. With --commit
only the resources whose files the commit changed are put and those whose
information files it deleted are removed from the service.

Examples:
  # Publish everything, merging the production overlay
  apimpub publish --dir ./artifacts --overlay overlay.prod.yaml

  # Publish what the last commit changed
  apimpub publish --dir ./artifacts --commit HEAD

  # Also delete remote resources that no longer exist locally
  apimpub publish --dir ./artifacts --prune

  # Log what would be sent without calling the service
  apimpub publish --dir ./artifacts --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, gc, &sf, dryRun)
		},
	}

	sf.AddTo(cmd)
	svc.AddTo(cmd)
	tf.AddTo(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Log the planned calls instead of sending them")

	return cmd
}

func runPublish(cmd *cobra.Command, gc *GlobalConfig, sf *cmdutil.SourceFlags, dryRun bool) error {
	ctx := cmd.Context()
	start := time.Now()

	in, err := cmdutil.LoadInput(ctx, sf)
	if err != nil {
		return cmdutil.Fail("loading artifacts", err)
	}

	var gw remote.Gateway
	if cmdutil.NeedsGateway(gc.Config, dryRun, sf.Prune) {
		client, err := cmdutil.NewGateway(ctx, gc.Config)
		if err != nil {
			return cmdutil.Fail("connecting to service", err)
		}
		gw = client
	}

	pub := publish.New(gw, publish.Options{
		Prune:        sf.Prune,
		DryRun:       dryRun,
		Concurrency:  gc.Config.Publish.Concurrency,
		ListProgress: cmdutil.ListProgress(ctx),
	})

	output.Info("publishing", "dir", in.Root, "mode", in.Mode, "commit", in.Commit, "dryRun", dryRun)

	plan, err := pub.Plan(ctx, in)
	if err != nil {
		return cmdutil.Fail("planning publish", cmdutil.RemoteError(err, gc.Config))
	}
	output.Debug("plan computed", "digest", plan.Digest())

	res, err := pub.Apply(ctx, plan)
	if err != nil {
		if res != nil {
			output.Info("partial result", "summary", res.Summary())
		}
		return cmdutil.Fail("publish failed", cmdutil.RemoteError(err, gc.Config))
	}

	output.Debug("publish finished", "duration", time.Since(start).Round(time.Millisecond))

	msg := "published: " + res.Summary()
	if dryRun {
		msg = "dry run: " + res.Summary()
	}
	fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark(msg))
	return nil
}
