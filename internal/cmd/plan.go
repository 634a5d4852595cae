package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/apimpub/internal/cmdutil"
	oerrors "github.com/opmodel/apimpub/internal/errors"
	"github.com/opmodel/apimpub/internal/output"
	"github.com/opmodel/apimpub/internal/publish"
	"github.com/opmodel/apimpub/internal/remote"
)

// NewPlanCmd creates the plan command.
func NewPlanCmd(gc *GlobalConfig) *cobra.Command {
	var (
		sf          cmdutil.SourceFlags
		svc         cmdutil.ServiceFlags
		outputFlag  string
		showOverlay bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what publish would do",
		Long: `Compute the deletes and puts a publish with the same flags would send,
without calling put or delete on the service.

The service is only contacted when --prune needs to list remote
collections.

Examples:
  # Show the plan as a table
  apimpub plan --dir ./artifacts --overlay overlay.prod.yaml

  # Machine-readable plan of one commit
  apimpub plan --dir ./artifacts --commit HEAD -o json

  # Show what the overlay changes in every document
  apimpub plan --dir ./artifacts --overlay overlay.prod.yaml --show-overlay`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, gc, &sf, outputFlag, showOverlay)
		},
	}

	sf.AddTo(cmd)
	svc.AddTo(cmd)
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "table",
		"Output format: "+strings.Join(output.ValidFormats(), ", "))
	cmd.Flags().BoolVar(&showOverlay, "show-overlay", false,
		"Show the difference the overlay makes to every overlaid document")

	return cmd
}

func runPlan(cmd *cobra.Command, gc *GlobalConfig, sf *cmdutil.SourceFlags, outputFlag string, showOverlay bool) error {
	ctx := cmd.Context()

	format, ok := output.ParseFormat(outputFlag)
	if !ok {
		err := oerrors.NewValidationError(
			fmt.Sprintf("unknown output format %q", outputFlag), "", "output",
			"use one of: "+strings.Join(output.ValidFormats(), ", "),
		)
		return cmdutil.Fail("invalid flags", err)
	}

	in, err := cmdutil.LoadInput(ctx, sf)
	if err != nil {
		return cmdutil.Fail("loading artifacts", err)
	}

	var gw remote.Gateway
	if sf.Prune {
		client, err := cmdutil.NewGateway(ctx, gc.Config)
		if err != nil {
			return cmdutil.Fail("connecting to service", err)
		}
		gw = client
	}

	pub := publish.New(gw, publish.Options{
		Prune:        sf.Prune,
		Concurrency:  gc.Config.Publish.Concurrency,
		ListProgress: cmdutil.ListProgress(ctx),
	})

	plan, err := pub.Plan(ctx, in)
	if err != nil {
		return cmdutil.Fail("computing plan", cmdutil.RemoteError(err, gc.Config))
	}

	out := cmd.OutOrStdout()
	if err := cmdutil.RenderPlan(out, plan, format); err != nil {
		return cmdutil.Fail("rendering plan", err)
	}
	if showOverlay {
		if err := cmdutil.RenderOverlayDiffs(out, plan); err != nil {
			return cmdutil.Fail("rendering overlay diffs", err)
		}
	}
	return nil
}
