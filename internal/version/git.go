package version

import (
	"bytes"
	"os/exec"
	"regexp"
	"strings"
)

// gitVersionRegex matches git version output like "git version 2.43.0".
var gitVersionRegex = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// DetectGit finds the git binary on PATH and checks its version.
func DetectGit() GitBinaryInfo {
	path, err := exec.LookPath("git")
	if err != nil {
		return GitBinaryInfo{Message: "git binary not found in PATH"}
	}

	cmd := exec.Command(path, "version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return GitBinaryInfo{
			Path:    path,
			Found:   true,
			Message: "failed to get git version: " + err.Error(),
		}
	}

	version, err := extractVersion(out.String())
	if err != nil {
		return GitBinaryInfo{Path: path, Found: true, Message: err.Error()}
	}

	return GitBinaryInfo{
		Version:    version,
		Path:       path,
		Found:      true,
		Compatible: GitVersionCompatible(version),
		Message:    CompatibilityMessage(version),
	}
}

// extractVersion pulls the version number out of `git version` output.
func extractVersion(output string) (string, error) {
	match := gitVersionRegex.FindString(output)
	if match == "" {
		return "", &versionParseError{output: output}
	}
	return "v" + strings.TrimPrefix(match, "v"), nil
}

type versionParseError struct {
	output string
}

func (e *versionParseError) Error() string {
	return "failed to parse git version from output: " + strings.TrimSpace(e.output)
}
