package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	require.NotEmpty(t, info.GoVersion, "GoVersion should be populated")
	require.NotEmpty(t, info.CUESDKVersion, "CUESDKVersion should be populated")
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:       "v1.0.0",
		GitCommit:     "abc123",
		BuildDate:     "2026-01-29",
		GoVersion:     "go1.25",
		CUESDKVersion: "v0.15.0",
	}

	str := info.String()

	assert.Contains(t, str, "v1.0.0")
	assert.Contains(t, str, "abc123")
	assert.Contains(t, str, "2026-01-29")
	assert.Contains(t, str, "go1.25")
	assert.Contains(t, str, "v0.15.0")
}

func TestGitVersionCompatible(t *testing.T) {
	tests := []struct {
		version string
		want    bool
		message string
	}{
		{"v2.43.0", true, "compatible"},
		{"2.0", true, "compatible"},
		{"v3.1.0", true, "compatible"},
		{"v1.9.5", false, "incompatible - older than " + MinGitVersion},
		{"garbage", false, "incompatible - invalid version format"},
		{"v2", false, "incompatible - invalid version format"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, GitVersionCompatible(tt.version))
			assert.Equal(t, tt.message, CompatibilityMessage(tt.version))
		})
	}
}

func TestExtractVersion(t *testing.T) {
	v, err := extractVersion("git version 2.43.0\n")
	require.NoError(t, err)
	assert.Equal(t, "v2.43.0", v)

	v, err = extractVersion("git version 2.39.3 (Apple Git-146)")
	require.NoError(t, err)
	assert.Equal(t, "v2.39.3", v)

	_, err = extractVersion("not git")
	assert.Error(t, err)
}

func TestGitBinaryInfoString(t *testing.T) {
	assert.Contains(t, GitBinaryInfo{}.String(), "not found")

	info := GitBinaryInfo{Version: "v1.8.0", Path: "/usr/bin/git", Found: true, Message: "incompatible - older than v2.0.0"}
	assert.Contains(t, info.String(), "incompatible - older than v2.0.0")
	assert.Contains(t, info.String(), "/usr/bin/git")

	full := FullVersionString(Info{Version: "v1.0.0"}, GitBinaryInfo{Version: "v2.43.0", Path: "/usr/bin/git", Found: true, Compatible: true})
	assert.Contains(t, full, "v1.0.0")
	assert.Contains(t, full, "Git:")
	assert.Contains(t, full, "v2.43.0 (compatible)")
}
