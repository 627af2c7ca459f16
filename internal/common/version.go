package common

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Version variables injected at build time via ldflags
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is the build metadata reported by /api/version and the CLI.
type VersionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// GetVersion returns the semantic version string
func GetVersion() string { return Version }

// GetBuild returns the build timestamp
func GetBuild() string { return Build }

// GetGitCommit returns the short git commit hash
func GetGitCommit() string { return GitCommit }

// GetVersionInfo returns all build metadata.
func GetVersionInfo() VersionInfo {
	return VersionInfo{Version: Version, Build: Build, Commit: GitCommit}
}

// GetFullVersion returns a formatted version string with all build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GitCommit)
}

// LoadVersionFromFile reads "key: value" lines from a .version file next to
// the binary. Values only replace the ldflags defaults.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	loadVersionFile(filepath.Join(filepath.Dir(exe), ".version"))
}

func loadVersionFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		switch strings.TrimSpace(key) {
		case "version":
			if Version == "dev" {
				Version = val
			}
		case "build":
			if Build == "unknown" {
				Build = val
			}
		case "commit":
			if GitCommit == "unknown" {
				GitCommit = val
			}
		}
	}
}
