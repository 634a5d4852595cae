package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	paths, err := DefaultPaths()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".apimpub"), paths.HomeDir)
	assert.Equal(t, filepath.Join(home, ".apimpub", "config.yaml"), paths.ConfigFile)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cases := map[string]string{
		"":                       "",
		"/etc/apimpub.yaml":      "/etc/apimpub.yaml",
		"overlays/prod.yaml":     "overlays/prod.yaml",
		"~":                      home,
		"~/.apimpub/config.yaml": filepath.Join(home, ".apimpub", "config.yaml"),
		"~ops/config.yaml":       "~ops/config.yaml",
		"/srv/~/config.yaml":     "/srv/~/config.yaml",
	}

	for in, want := range cases {
		got, err := ExpandPath(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestGetConfigFile(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv("APIMPUB_CONFIG", "/env/config.yaml")
		path, err := GetConfigFile()
		require.NoError(t, err)
		assert.Equal(t, "/env/config.yaml", path)
	})

	t.Run("default under home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("APIMPUB_CONFIG", "")

		path, err := GetConfigFile()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".apimpub", "config.yaml"), path)
	})
}
