// Package version carries build metadata injected with -ldflags.
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String renders the metadata on one line for `stencilbench version`.
func String() string {
	return fmt.Sprintf("stencilbench %s (commit %s, built %s)", Version, GitSHA, BuildTime)
}
