package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/apimpub/internal/config"
	oerrors "github.com/opmodel/apimpub/internal/errors"
)

func TestNewConfigCmd(t *testing.T) {
	cmd := NewConfigCmd(&GlobalConfig{})

	assert.Equal(t, "config", cmd.Use)
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"init", "vet"}, names)
}

func TestConfigInit_CreatesFile(t *testing.T) {
	home, _ := isolate(t)

	out, err := execute(t, NewConfigInitCmd(&GlobalConfig{}))
	require.NoError(t, err)

	configFile := filepath.Join(home, ".apimpub", "config.yaml")
	assert.FileExists(t, configFile)
	assert.Contains(t, out, configFile)

	dirInfo, err := os.Stat(filepath.Dir(configFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	fileInfo, err := os.Stat(configFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fileInfo.Mode().Perm())

	loaded, err := config.NewLoader().Load(configFile, nil)
	require.NoError(t, err)
	assert.True(t, loaded.FileFound)
	assert.Equal(t, config.DefaultConfig().Service.APIVersion, loaded.Config.Service.APIVersion)
}

func TestConfigInit_ExistingConfig(t *testing.T) {
	isolate(t)

	_, err := execute(t, NewConfigInitCmd(&GlobalConfig{}))
	require.NoError(t, err)

	_, err = execute(t, NewConfigInitCmd(&GlobalConfig{}))
	assert.ErrorIs(t, err, oerrors.ErrValidation)

	_, err = execute(t, NewConfigInitCmd(&GlobalConfig{}), "--force")
	assert.NoError(t, err)
}

func TestConfigInit_ResolvedPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "apimpub.yaml")

	_, err := execute(t, NewConfigInitCmd(&GlobalConfig{ConfigPath: path}))
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestConfigVet(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		isolate(t)
		_, err := execute(t, NewConfigVetCmd(&GlobalConfig{}))
		assert.ErrorIs(t, err, oerrors.ErrNotFound)
	})

	t.Run("initialized file", func(t *testing.T) {
		isolate(t)
		_, err := execute(t, NewConfigInitCmd(&GlobalConfig{}))
		require.NoError(t, err)

		out, err := execute(t, NewConfigVetCmd(&GlobalConfig{Config: config.DefaultConfig()}))
		require.NoError(t, err)
		assert.Contains(t, out, "Config file found")
		assert.Contains(t, out, "Config file valid")
		assert.Contains(t, out, "Resolved configuration valid")
	})

	t.Run("unknown key", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("service:\n  nmae: apim\n"), 0o600))

		out, err := execute(t, NewConfigVetCmd(&GlobalConfig{ConfigPath: path}))
		assert.Equal(t, oerrors.ExitValidationError, exitCode(t, err))
		assert.Contains(t, out, "nmae")
	})

	t.Run("invalid resolved value", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("service:\n  name: apim\n"), 0o600))

		cfg := config.DefaultConfig()
		cfg.Service.SubscriptionID = "not-a-guid"

		out, err := execute(t, NewConfigVetCmd(&GlobalConfig{ConfigPath: path, Config: cfg}))
		assert.Equal(t, oerrors.ExitValidationError, exitCode(t, err))
		assert.Contains(t, out, "service.subscriptionId")
	})
}
