// Package version holds build-time version information.
package version

// Version is the botway version, overridden at build time via
// -ldflags "-X github.com/soyeahso/botway/internal/version.Version=...".
var Version = "0.1.0-dev"

// Commit is the git commit the binary was built from.
var Commit = "unknown"
