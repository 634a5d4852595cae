package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/apimpub/internal/cmdutil"
	oerrors "github.com/opmodel/apimpub/internal/errors"
	"github.com/opmodel/apimpub/internal/output"
	"github.com/opmodel/apimpub/internal/overlay"
	"github.com/opmodel/apimpub/internal/publish"
)

// NewOverlayCmd creates the overlay command group.
func NewOverlayCmd(gc *GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "Overlay document tools",
	}

	cmd.AddCommand(NewOverlayVetCmd(gc))

	return cmd
}

// NewOverlayVetCmd creates the overlay vet command.
func NewOverlayVetCmd(_ *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet <file>",
		Short: "Validate an overlay document",
		Long: `Validate the shape of an overlay document.

Publishing silently ignores overlay entries that are not objects or have no
string name. This command reports each of them, and warns about properties
no resource kind reads.

Examples:
  apimpub overlay vet overlay.prod.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runOverlayVet,
	}
}

func runOverlayVet(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	doc, err := overlay.Load(path)
	if err != nil {
		return cmdutil.Fail("loading overlay", err)
	}
	fmt.Fprintln(out, output.FormatVetCheck("Overlay parsed", path))

	vetter, err := overlay.NewVetter()
	if err != nil {
		return cmdutil.Fail("loading overlay schema", err)
	}

	findings := vetter.Vet(doc, publish.OverlayPaths(publish.Kinds()))

	errCount := 0
	for _, f := range findings {
		switch f.Severity {
		case overlay.SeverityError:
			errCount++
			fmt.Fprintln(out, output.FormatCross(f.String()))
		default:
			output.Warn(f.Message, "path", f.Path)
		}
	}

	if errCount > 0 {
		err := oerrors.NewValidationError(
			fmt.Sprintf("%d overlay entries would be ignored", errCount), path, "",
			"every entry must be an object with a non-empty string name",
		)
		return cmdutil.Fail("overlay invalid", err)
	}

	detail := ""
	if len(findings) > 0 {
		detail = fmt.Sprintf("%d warnings", len(findings))
	}
	fmt.Fprintln(out, output.FormatVetCheck("Overlay entries valid", detail))
	return nil
}
