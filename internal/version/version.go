package version

import (
	"fmt"
	"runtime/debug"
)

const modulePath = "github.com/dinghy6/sabnzbd-scripts"

var (
	// Set via -ldflags at build time
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Get returns the version, falling back to the module version recorded in
// the build info for `go install` builds.
func Get() string {
	if Version != "dev" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	if info.Main.Path == modulePath && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			return dep.Version
		}
	}
	return Version
}

// String returns the version with commit and build date
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Get(), Commit, Date)
}
