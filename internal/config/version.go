package config

import "fmt"

// Version information (set via -ldflags during build).
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// ServiceName identifies the binary in version output and outbound requests.
const ServiceName = "vire-markets"

// VersionInfo is the build identity reported by /api/version, the
// get_version tool and the -version flag.
type VersionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"git_commit"`
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%s %s (build: %s, commit: %s)", ServiceName, v.Version, v.Build, v.Commit)
}

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// GetVersionInfo returns the build identity.
func GetVersionInfo() VersionInfo {
	return VersionInfo{Version: Version, Build: Build, Commit: GitCommit}
}

// UserAgent is sent with every request to the analytics backend, so its
// logs can tell dashboard versions apart.
func UserAgent() string {
	return ServiceName + "/" + Version
}
