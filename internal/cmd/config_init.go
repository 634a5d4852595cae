package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/opmodel/apimpub/internal/config"
	oerrors "github.com/opmodel/apimpub/internal/errors"
)

const configHeader = `# apimpub configuration.
#
# Every key can be overridden by an APIMPUB_* environment variable or a flag.
# Identify the service either by service.url or by subscriptionId,
# resourceGroup and name. Authenticate with auth.token or with tenantId,
# clientId and clientSecret.
`

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(gc *GlobalConfig) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Initialize the apimpub configuration.

Writes a config file with every default value to the resolved config path
(--config > APIMPUB_CONFIG > ~/.apimpub/config.yaml). The file is only
readable by the current user since it may hold a client secret.

Examples:
  # Initialize configuration
  apimpub config init

  # Overwrite existing configuration
  apimpub config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, gc, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false,
		"Overwrite existing configuration")

	return cmd
}

func runConfigInit(cmd *cobra.Command, gc *GlobalConfig, force bool) error {
	path, err := configPath(gc)
	if err != nil {
		return err
	}

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if exists && !force {
		return oerrors.NewValidationError("configuration already exists", path, "",
			"Use --force to overwrite existing configuration.")
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return fmt.Errorf("encoding default configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return oerrors.Wrap(oerrors.ErrPermission, "could not create "+filepath.Dir(path))
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o600); err != nil {
		return oerrors.Wrap(oerrors.ErrPermission, "could not write "+path)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration initialized at "+path)
	fmt.Fprintln(out, "Validate with: apimpub config vet")
	return nil
}

// configPath returns the resolved config path, resolving it when the
// command runs without the root command.
func configPath(gc *GlobalConfig) (string, error) {
	if gc != nil && gc.ConfigPath != "" {
		return gc.ConfigPath, nil
	}
	res, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{})
	if err != nil {
		return "", oerrors.Wrap(oerrors.ErrNotFound, "could not determine home directory")
	}
	return config.ExpandPath(res.ConfigPath)
}
