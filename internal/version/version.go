// Package version exposes build-time metadata stamped into the gvi binary
// via ldflags. gvi stamps itself: the release pipeline runs
// `gvi inject --format ldflags --var Version --ldflags-package <this pkg>`.
package version

import "runtime/debug"

const (
	defaultVersion   = "dev"
	defaultBuildDate = "unknown"
)

var (
	// Version is the git-derived version associated with this build.
	Version = defaultVersion
	// BuildDate is the UTC timestamp when the binary was built.
	BuildDate = defaultBuildDate
)

func init() {
	if Version != defaultVersion {
		return
	}
	// Unstamped builds (go install, go run) still get a usable version from
	// the module build info when one is recorded.
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		Version = v
	}
}

// Summary returns a human-readable description of the build metadata.
func Summary() string {
	return Version + " (built " + BuildDate + ")"
}
