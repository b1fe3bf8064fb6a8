// Package version provides build-time metadata for the specwatch binary.
// Version, GitCommit, and BuildDate are injected at compile time via -ldflags;
// binaries built with `go install` fall back to the embedded build info.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time values injected via -ldflags.
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Where the version fields came from.
const (
	SourceLdflags   = "ldflags"
	SourceBuildInfo = "buildinfo"
	SourceDefault   = "default"
)

// Info holds the build metadata for the binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
	// Source is one of SourceLdflags, SourceBuildInfo or SourceDefault.
	Source string `json:"source"`
	// Modified reports uncommitted changes in the build's working tree.
	Modified bool `json:"modified,omitempty"`
}

// GetInfo returns the current build information.
func GetInfo() Info {
	info := Info{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Source:    SourceLdflags,
	}

	if version == "dev" {
		info.Source = SourceDefault
		fromBuildInfo(&info)
	}

	info.GitCommit = shortCommit(info.GitCommit)

	return info
}

// fromBuildInfo fills fields still at their ldflags defaults from the module
// and VCS data the Go toolchain embeds.
func fromBuildInfo(info *Info) {
	bi, ok := readBuildInfo()
	if !ok {
		return
	}

	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
		info.Source = SourceBuildInfo
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "none" {
				info.GitCommit = s.Value
				info.Source = SourceBuildInfo
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

// String returns a human-readable single-line version string.
func (i Info) String() string {
	commit := i.GitCommit
	if i.Modified {
		commit += "+dirty"
	}

	return fmt.Sprintf("specwatch %s (commit: %s, built: %s, %s %s)",
		i.Version, commit, i.BuildDate, i.GoVersion, i.Platform)
}

// JSON returns the version info as indented JSON.
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling version info: %w", err)
	}

	return string(data), nil
}

// shortCommit truncates a commit SHA to 7 characters.
func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}

	return commit
}
