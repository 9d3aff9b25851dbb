// Package version reports the build identity set with -ldflags "-X".
package version

import "fmt"

//nolint:revive,gochecknoglobals // overwritten by the linker
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String is the human-readable build identity, e.g. "v1.2.0 (abc1234, 2026-01-02)".
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, shortCommit(), Date)
}

// UserAgent identifies tdsqa to the docs site, the forum and the LLM proxy.
func UserAgent() string {
	return "tdsqa/" + Version + " (+https://github.com/kailas-cloud/tdsqa)"
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
