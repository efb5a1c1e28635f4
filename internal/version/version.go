// Package version carries build metadata injected at link time.
package version

var (
	// Version is the current tool version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String returns the version with its git SHA.
func String() string {
	return Version + " (" + GitSHA + ")"
}
