package version

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ToolName is the name reported in exports and by the version command.
const ToolName = "compmap"

// Version information - these can be overridden at build time using ldflags
var (
	// Version is the semantic version of compmap
	Version = "v0.3.0-beta"

	// GitCommit is the git commit hash (set at build time)
	GitCommit = "unknown"

	// GitBranch is the git branch (set at build time)
	GitBranch = "unknown"

	// BuildTime is when the binary was built (set at build time)
	BuildTime = "unknown"
)

// BuildInfo contains build and version information
type BuildInfo struct {
	Version     string    `json:"version" yaml:"version"`
	GitCommit   string    `json:"git_commit" yaml:"git_commit"`
	GitBranch   string    `json:"git_branch" yaml:"git_branch"`
	BuildTime   string    `json:"build_time" yaml:"build_time"`
	GoVersion   string    `json:"go_version" yaml:"go_version"`
	Platform    string    `json:"platform" yaml:"platform"`
	CompileTime time.Time `json:"compile_time" yaml:"compile_time"`
}

// GetBuildInfo returns build information
func GetBuildInfo() *BuildInfo {
	compileTime, err := time.Parse(time.RFC3339, BuildTime)
	if err != nil {
		// Development builds carry no build time.
		compileTime = time.Now()
	}

	return &BuildInfo{
		Version:     Version,
		GitCommit:   GitCommit,
		GitBranch:   GitBranch,
		BuildTime:   BuildTime,
		GoVersion:   runtime.Version(),
		Platform:    fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		CompileTime: compileTime,
	}
}

// GetVersion returns the semantic version string
func GetVersion() string {
	return Version
}

// GetVersionWithCommit returns version with git commit info
func GetVersionWithCommit() string {
	if GitCommit != "unknown" && len(GitCommit) >= 7 {
		return fmt.Sprintf("%s (%s)", Version, GitCommit[:7])
	}
	return Version
}

// GetFullVersionString returns a comprehensive version string for CLI display
func GetFullVersionString() string {
	info := GetBuildInfo()
	channel := "stable"
	if IsPrerelease() {
		channel = "pre-release"
	}
	return fmt.Sprintf("%s %s (%s)\nBuilt: %s\nCommit: %s\nBranch: %s\nGo: %s\nPlatform: %s",
		ToolName,
		info.Version,
		channel,
		info.BuildTime,
		info.GitCommit,
		info.GitBranch,
		info.GoVersion,
		info.Platform,
	)
}

// IsPrerelease returns true for alpha, beta and release-candidate versions.
func IsPrerelease() bool {
	v := strings.ToLower(Version)
	return strings.Contains(v, "alpha") || strings.Contains(v, "beta") || strings.Contains(v, "-rc")
}
