// Package buildinfo holds version metadata stamped into release binaries.
package buildinfo

// Set via -ldflags at release time; empty in local builds, where the
// version command falls back to module build info.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
