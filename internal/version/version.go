// Package version carries build metadata stamped in via -ldflags.
package version

import "fmt"

var (
	// Version is the skim engine release, "dev" for local builds.
	Version = "dev"
	// GitSHA is the git commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String renders the build metadata on one line for logs and -version.
func String() string {
	return fmt.Sprintf("hfskim %s (commit %s, built %s)", Version, GitSHA, BuildTime)
}
