// Package cmd provides CLI command implementations.
package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/opmodel/apimpub/internal/cmdutil"
	"github.com/opmodel/apimpub/internal/config"
	oerrors "github.com/opmodel/apimpub/internal/errors"
	"github.com/opmodel/apimpub/internal/output"
	"github.com/opmodel/apimpub/internal/version"
)

// GlobalConfig holds CLI-wide configuration resolved during
// PersistentPreRunE. It is passed explicitly into every sub-command
// constructor.
type GlobalConfig struct {
	// Config is the resolved configuration.
	Config *config.Config

	// ConfigPath is the resolved --config path and where it came from.
	ConfigPath   string
	ConfigSource config.ConfigSource

	Verbose bool
}

// NewRootCmd creates the root command for apimpub.
func NewRootCmd() *cobra.Command {
	gc := &GlobalConfig{}

	var (
		configFlag     string
		timestampsFlag bool
	)

	rootCmd := &cobra.Command{
		Use:   "apimpub",
		Short: "API management publisher",
		Long: `apimpub publishes a file-based description of an API-management service
(APIs, products, backends, policies and their links) to the service's
management API, merging an environment overlay into every document.

Files are read from an artifact directory. A full publish puts every
resource found there; a commit publish puts what one commit changed and
deletes what it removed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd, gc, configFlag)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: APIMPUB_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&gc.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output (env: APIMPUB_LOG_TIMESTAMPS)")

	rootCmd.AddCommand(NewPublishCmd(gc))
	rootCmd.AddCommand(NewPlanCmd(gc))
	rootCmd.AddCommand(NewOverlayCmd(gc))
	rootCmd.AddCommand(NewConfigCmd(gc))
	rootCmd.AddCommand(NewVersionCmd(gc))

	return rootCmd
}

// initializeGlobals loads .env and the configuration, then sets up logging.
// Explicit flags, including the --timestamps flag, take part in resolution.
func initializeGlobals(cmd *cobra.Command, gc *GlobalConfig, configFlag string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cmdutil.Fail("loading .env", oerrors.Wrap(oerrors.ErrValidation, err.Error()))
	}

	pathResult, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{FlagValue: configFlag})
	if err != nil {
		return cmdutil.Fail("resolving config path", oerrors.Wrap(oerrors.ErrNotFound, err.Error()))
	}

	loaded, err := config.NewLoader().Load(pathResult.ConfigPath, cmdutil.FlagOverrides(cmd))
	if err != nil {
		return cmdutil.Fail("loading configuration", err)
	}

	gc.Config = loaded.Config
	gc.ConfigPath = loaded.Path
	gc.ConfigSource = pathResult.Source

	output.SetupLogging(output.LogConfig{
		Verbose:    gc.Verbose,
		Timestamps: loaded.Config.Log.Timestamps,
	})

	info := version.Get()
	output.Debug("initializing CLI",
		"version", info.Version,
		"config", loaded.Path,
		"source", pathResult.Source,
		"found", loaded.FileFound,
	)
	config.LogResolvedValues(loaded.Values)

	return nil
}
