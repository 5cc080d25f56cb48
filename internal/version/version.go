// Package version provides build version information for the application.
// This is a separate package to avoid import cycles between cli and desktop packages.
package version

import "runtime"

// Version is the build version string, set by ldflags during build.
// Format: vX.Y.Z or vX.Y.Z-dev for development builds.
var Version = "v2.1.0"

// BuildTime is the build timestamp, set by ldflags during build.
var BuildTime = "unknown"

// Platform returns the host platform in the form the renderer expects
// ("win32", "darwin", "linux").
func Platform() string {
	if runtime.GOOS == "windows" {
		return "win32"
	}
	return runtime.GOOS
}
