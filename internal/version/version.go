// Package version reports build information for dungeondraw.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Project constants
const (
	GitHubUser  = "devnullvoid"
	ProjectName = "dungeondraw"
	License     = "MIT License"
)

// Set at build time via -ldflags.
var (
	version   = "dev"
	buildDate = "unknown"
	commit    = "unknown"
)

// BuildInfo contains build-time information
type BuildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	Commit    string `json:"commit"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the ldflags values, filling a dev build's gaps from
// the module and VCS data the go tool embeds.
func GetBuildInfo() *BuildInfo {
	info := &BuildInfo{
		Version:   version,
		BuildDate: buildDate,
		Commit:    commit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	if info.Version != "dev" {
		return info
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = strings.TrimPrefix(v, "v")
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && len(setting.Value) >= 7 {
				info.Commit = setting.Value[:7]
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = setting.Value
			}
		}
	}

	return info
}

// GetVersionString returns "v<version>".
func GetVersionString() string {
	return "v" + GetBuildInfo().Version
}

// GetFullVersionString returns "v<version> (<commit>)".
func GetFullVersionString() string {
	info := GetBuildInfo()
	return fmt.Sprintf("v%s (%s)", info.Version, info.Commit)
}

// GetBuildDate parses the build date.
func GetBuildDate() (time.Time, error) {
	info := GetBuildInfo()
	if info.BuildDate == "unknown" {
		return time.Time{}, fmt.Errorf("build date not available")
	}
	return time.Parse(time.RFC3339, info.BuildDate)
}

// IsDevBuild reports whether no version was injected at build time.
func IsDevBuild() bool {
	return version == "dev"
}

// GetGitHubURL returns the repository URL.
func GetGitHubURL() string {
	return fmt.Sprintf("https://github.com/%s/%s", GitHubUser, ProjectName)
}
