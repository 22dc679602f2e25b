// Package version reports the build of the running binary. Release builds
// set the variables with ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/resumeai/internal/version.Version=1.4.0 -X ...Commit=abc1234"
//
// Other builds fall back to the VCS stamp the Go toolchain embeds.
package version

import (
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	Version = "0.0.0-dev"
	Commit  = ""
	Date    = ""
	Dirty   = ""
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Dirty     bool   `json:"dirty"`
	GoVersion string `json:"go_version"`
}

var (
	vcsOnce sync.Once
	vcs     map[string]string
)

func vcsSettings() map[string]string {
	vcsOnce.Do(func() {
		vcs = map[string]string{}
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				vcs[s.Key] = s.Value
			}
		}
	})
	return vcs
}

// Get returns the build info, preferring ldflags values over the VCS stamp.
func Get() Info {
	return resolve(vcsSettings())
}

func resolve(stamp map[string]string) Info {
	info := Info{
		Version:   Version,
		Commit:    firstNonEmpty(Commit, stamp["vcs.revision"], "unknown"),
		Date:      firstNonEmpty(Date, stamp["vcs.time"], "unknown"),
		Dirty:     firstNonEmpty(Dirty, stamp["vcs.modified"]) == "true",
		GoVersion: runtime.Version(),
	}
	if len(info.Commit) > 12 {
		info.Commit = info.Commit[:12]
	}
	return info
}

// Short is the version plus a "-dirty" suffix for modified trees. It is what
// the API advertises in headers and the OpenAPI document.
func (i Info) Short() string {
	if i.Dirty {
		return i.Version + "-dirty"
	}
	return i.Version
}

// UserAgent is sent on outbound provider requests.
func UserAgent() string {
	return "resumeai/" + Get().Short()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
