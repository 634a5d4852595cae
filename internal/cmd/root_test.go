package cmd

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/apimpub/internal/cmdutil"
	"github.com/opmodel/apimpub/internal/config"
	"github.com/opmodel/apimpub/internal/testutil"
)

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()

	assert.Equal(t, "apimpub", root.Use)
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"publish", "plan", "overlay", "config", "version"})

	for _, name := range []string{"config", "verbose", "timestamps"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "v", root.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestInitializeGlobals(t *testing.T) {
	t.Run("flag over env over file", func(t *testing.T) {
		isolate(t)
		path := testutil.WriteFile(t, t.TempDir(), "config.yaml", `
service:
  name: file-apim
  resourceGroup: file-rg
publish:
  concurrency: 3
`)
		t.Setenv("APIMPUB_RESOURCE_GROUP", "env-rg")
		t.Setenv("APIMPUB_CONCURRENCY", "5")

		var svc cmdutil.ServiceFlags
		cmd := &cobra.Command{Use: "test"}
		svc.AddTo(cmd)
		require.NoError(t, cmd.ParseFlags([]string{"--service-name", "flag-apim"}))

		gc := &GlobalConfig{}
		require.NoError(t, initializeGlobals(cmd, gc, path))

		assert.Equal(t, "flag-apim", gc.Config.Service.Name)
		assert.Equal(t, "env-rg", gc.Config.Service.ResourceGroup)
		assert.Equal(t, 5, gc.Config.Publish.Concurrency)
		assert.Equal(t, path, gc.ConfigPath)
		assert.Equal(t, config.SourceFlag, gc.ConfigSource)
	})

	t.Run("default path", func(t *testing.T) {
		home, _ := isolate(t)

		gc := &GlobalConfig{}
		require.NoError(t, initializeGlobals(&cobra.Command{Use: "test"}, gc, ""))

		assert.Equal(t, filepath.Join(home, ".apimpub", "config.yaml"), gc.ConfigPath)
		assert.Equal(t, config.SourceDefault, gc.ConfigSource)
		assert.Equal(t, config.DefaultConcurrency, gc.Config.Publish.Concurrency)
	})

	t.Run("invalid file", func(t *testing.T) {
		isolate(t)
		path := testutil.WriteFile(t, t.TempDir(), "config.yaml", "service: [unclosed")

		err := initializeGlobals(&cobra.Command{Use: "test"}, &GlobalConfig{}, path)
		assert.Error(t, err)
	})
}

func TestRoot_PlanEndToEnd(t *testing.T) {
	home, _ := isolate(t)
	dir, overlayPath := artifactDir(t)

	root := NewRootCmd()
	out, err := execute(t, root, "--timestamps=false", "plan", "--dir", dir, "--overlay", overlayPath, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "kind: Backend")

	// config init through the root writes to the resolved default path
	_, err = execute(t, NewRootCmd(), "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, ".apimpub", "config.yaml"))
}
