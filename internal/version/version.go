// Package version exposes build metadata injected via -ldflags.
package version

// Version is the semantic version of the build, set at link time.
var Version = "dev"

// Commit is the git commit hash of the build, set at link time.
var Commit = "unknown"
