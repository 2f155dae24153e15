// Package version reports build information set through ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Name is the product name used in banners and the client user agent.
const Name = "timecode"

// Set at build time with -ldflags "-X github.com/zsiec/timecode/pkg/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
	OS        = runtime.GOOS
	Arch      = runtime.GOARCH
)

// Info is the payload of /version and `tc version`.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

func GetInfo() Info {
	return Info{
		Name:      Name,
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        OS,
		Arch:      Arch,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s, os/arch: %s/%s)",
		i.Name, i.Version, i.GitCommit, i.BuildTime, i.GoVersion, i.OS, i.Arch)
}

func (i Info) Short() string {
	return fmt.Sprintf("%s %s", i.Name, i.Version)
}

// UserAgent is sent by the HTTP client.
func UserAgent() string {
	return fmt.Sprintf("%s-client/%s (%s/%s)", Name, Version, OS, Arch)
}
