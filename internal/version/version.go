package version

import (
	_ "embed"
	"fmt"
	"runtime"
	"strings"
)

//go:embed VERSION
var versionFile string

// Build-time variables set via ldflags
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// planFormat is bumped whenever the JSON plan layout changes.
const planFormat = "1.0.0"

// Version returns the current version of gribble
func Version() string {
	return strings.TrimSpace(versionFile)
}

// App returns the version recorded in generated plans.
func App() string {
	return Version()
}

// PlanFormat returns the version of the JSON plan layout.
func PlanFormat() string {
	return planFormat
}

// GetGitCommit returns the git commit hash
func GetGitCommit() string {
	return GitCommit
}

// GetBuildDate returns the git commit date
func GetBuildDate() string {
	return BuildDate
}

// Platform returns the OS/architecture combination
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// String is the one-line description printed by the version command.
func String() string {
	return fmt.Sprintf("gribble v%s (%s, built %s) %s", Version(), GetGitCommit(), GetBuildDate(), Platform())
}
