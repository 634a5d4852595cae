package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/opmodel/apimpub/internal/cmdutil"
	"github.com/opmodel/apimpub/internal/config"
	oerrors "github.com/opmodel/apimpub/internal/errors"
	"github.com/opmodel/apimpub/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(gc *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate the apimpub configuration.

Checks performed:
  1. Config file exists at the resolved path
  2. Config file only uses known keys with well-formed values
  3. The configuration resolved from flags, environment and file is valid

The config path is resolved using precedence:
  --config flag > APIMPUB_CONFIG env > ~/.apimpub/config.yaml

Examples:
  # Validate default configuration
  apimpub config vet

  # Validate custom config path
  apimpub config vet --config /path/to/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigVet(cmd, gc)
		},
	}
}

func runConfigVet(cmd *cobra.Command, gc *GlobalConfig) error {
	out := cmd.OutOrStdout()

	path, err := configPath(gc)
	if err != nil {
		return err
	}
	output.Debug("validating config", "path", path)

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if !exists {
		return oerrors.NewNotFoundError("configuration file not found", path,
			"Run 'apimpub config init' to create default configuration")
	}
	fmt.Fprintln(out, output.FormatVetCheck("Config file found", path))

	validator, err := config.NewValidator()
	if err != nil {
		return err
	}

	if err := validator.ValidateFile(path); err != nil {
		return reportValidation(out, "config file invalid", path, err)
	}
	fmt.Fprintln(out, output.FormatVetCheck("Config file valid", ""))

	if gc != nil && gc.Config != nil {
		if err := validator.Validate(gc.Config); err != nil {
			return reportValidation(out, "resolved configuration invalid", path, err)
		}
		fmt.Fprintln(out, output.FormatVetCheck("Resolved configuration valid", "flags, env and file"))
	}

	return nil
}

func reportValidation(out io.Writer, msg, path string, err error) error {
	var errs config.ValidationErrors
	if !errors.As(err, &errs) {
		return cmdutil.Fail(msg, err)
	}
	for _, e := range errs {
		fmt.Fprintln(out, output.FormatCross(e.Error()))
	}
	return cmdutil.Fail(msg, oerrors.NewValidationError(
		fmt.Sprintf("%d invalid values", len(errs)), path, "", "fix the values listed above",
	))
}
