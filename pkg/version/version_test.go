package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, "timecode", info.Name)
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GitCommit, info.GitCommit)
	assert.Equal(t, BuildTime, info.BuildTime)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
}

func TestInfoStrings(t *testing.T) {
	info := Info{
		Name:      Name,
		Version:   "1.0.0",
		GitCommit: "abc123",
		BuildTime: "2024-01-01",
		GoVersion: "go1.23",
		OS:        "linux",
		Arch:      "amd64",
	}

	str := info.String()
	assert.True(t, strings.HasPrefix(str, "timecode 1.0.0"))
	assert.Contains(t, str, "commit: abc123")
	assert.Contains(t, str, "built: 2024-01-01")
	assert.Contains(t, str, "go: go1.23")
	assert.Contains(t, str, "os/arch: linux/amd64")

	assert.Equal(t, "timecode 1.0.0", info.Short())
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	assert.True(t, strings.HasPrefix(ua, "timecode-client/"+Version))
	assert.Contains(t, ua, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionVariables(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, GitCommit)
	assert.NotEmpty(t, BuildTime)
	assert.True(t, strings.HasPrefix(GoVersion, "go"))
}
