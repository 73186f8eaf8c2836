// Package version holds build metadata injected via ldflags, e.g.
//
//	-ldflags "-X github.com/kailas-cloud/mindvault/internal/version.Version=v0.3.0"
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String is the one-line build summary printed by `mindvault version`.
func String() string {
	return fmt.Sprintf("mindvault %s (commit %s, built %s)", Version, Commit, Date)
}
