// Package version provides version information for apimpub.
package version

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// CUESDKVersion is the version of the CUE SDK the overlay and config
// schemas are evaluated with.
const CUESDKVersion = "v0.15.4"

// MinGitVersion is the oldest git binary commit mode is tested against.
const MinGitVersion = "v2.0.0"

// Info contains version information.
type Info struct {
	Version       string `json:"version"`
	GitCommit     string `json:"gitCommit"`
	BuildDate     string `json:"buildDate"`
	GoVersion     string `json:"goVersion"`
	CUESDKVersion string `json:"cueSDKVersion"`
}

// GitBinaryInfo describes the git binary used by commit mode.
type GitBinaryInfo struct {
	Version    string `json:"version"`
	Path       string `json:"path"`
	Compatible bool   `json:"compatible"`
	Found      bool   `json:"found"`

	// Message provides additional information about compatibility.
	Message string `json:"message,omitempty"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:       Version,
		GitCommit:     GitCommit,
		BuildDate:     BuildDate,
		GoVersion:     runtime.Version(),
		CUESDKVersion: CUESDKVersion,
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("apimpub:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s\n\nCUE:\n  SDK Version: %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion, i.CUESDKVersion)
}

// GitVersionCompatible reports whether binaryVersion is at least
// MinGitVersion, comparing MAJOR.MINOR.
func GitVersionCompatible(binaryVersion string) bool {
	have, ok := majorMinor(binaryVersion)
	if !ok {
		return false
	}
	want, _ := majorMinor(MinGitVersion)
	if have[0] != want[0] {
		return have[0] > want[0]
	}
	return have[1] >= want[1]
}

// CompatibilityMessage explains the result of GitVersionCompatible.
func CompatibilityMessage(binaryVersion string) string {
	if _, ok := majorMinor(binaryVersion); !ok {
		return "incompatible - invalid version format"
	}
	if GitVersionCompatible(binaryVersion) {
		return "compatible"
	}
	return "incompatible - older than " + MinGitVersion
}

func majorMinor(v string) ([2]int, bool) {
	parts := strings.Split(strings.TrimPrefix(v, "v"), ".")
	if len(parts) < 2 {
		return [2]int{}, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return [2]int{}, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return [2]int{}, false
	}
	return [2]int{major, minor}, true
}

// String returns a human-readable git binary info string.
func (g GitBinaryInfo) String() string {
	if !g.Found {
		return "  Binary Version: not found\n  Binary Path:    -"
	}

	compat := "compatible"
	if !g.Compatible {
		compat = g.Message
	}

	return fmt.Sprintf("  Binary Version: %s (%s)\n  Binary Path:    %s",
		g.Version, compat, g.Path)
}

// FullVersionString returns complete version information including the git
// binary.
func FullVersionString(info Info, git GitBinaryInfo) string {
	return fmt.Sprintf("%s\n\nGit:\n%s", info.String(), git.String())
}
