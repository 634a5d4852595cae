package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/apimpub/internal/version"
)

func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd(&GlobalConfig{})

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestVersionCmd_Execute(t *testing.T) {
	out, err := execute(t, NewVersionCmd(&GlobalConfig{}))
	require.NoError(t, err)

	assert.Contains(t, out, "apimpub:")
	assert.Contains(t, out, version.Version)
	assert.Contains(t, out, version.CUESDKVersion)
	assert.Contains(t, out, "Git:")
}
