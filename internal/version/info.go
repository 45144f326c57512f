// Package version exposes build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// The following variables can be overridden at build time using -ldflags, e.g.
// -X github.com/zelena-gryadka/gryadka/internal/version.Version=v1.2.0
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
	BuildArch = ""
)

// Info contains metadata about the compiled binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	BuildArch string `json:"arch"`
	GoVersion string `json:"go_version"`
}

// Get returns build metadata, normalizing defaults where necessary.
func Get() Info {
	arch := strings.TrimSpace(BuildArch)
	if arch == "" {
		arch = runtime.GOOS + "/" + runtime.GOARCH
	}

	return Info{
		Version:   fallback(Version, "dev"),
		Commit:    fallback(Commit, "unknown"),
		BuildDate: fallback(BuildDate, "unknown"),
		BuildArch: arch,
		GoVersion: runtime.Version(),
	}
}

// String is the one-line form printed by `gryadka version --short`.
func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}

	return fmt.Sprintf("gryadka %s (%s, %s)", i.Version, commit, i.BuildArch)
}

// UserAgent identifies this build to the catalog API.
func UserAgent() string {
	info := Get()

	return fmt.Sprintf("gryadka/%s (%s)", info.Version, info.BuildArch)
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}

	return value
}
